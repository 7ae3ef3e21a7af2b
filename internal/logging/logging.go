package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process-wide application logger. Request logs stay with the
// fiber middleware and SQL logs with gorm; this one carries service events.
var Logger = logrus.New()

var once sync.Once

// Init configures the logger. With an empty filePath logs go to stdout only,
// otherwise they are duplicated into a size-rotated file.
func Init(filePath string, level string) {
	once.Do(func() {
		Logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
		Logger.SetLevel(parseLevel(level))

		var output io.Writer = os.Stdout
		if strings.TrimSpace(filePath) != "" {
			output = io.MultiWriter(os.Stdout, &lumberjack.Logger{
				Filename:   filePath,
				MaxSize:    10,
				MaxBackups: 3,
				MaxAge:     28,
				Compress:   true,
			})
		}
		Logger.SetOutput(output)
	})
}

func parseLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.TrimSpace(strings.ToLower(level)))
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}
