package main

import (
	"flag"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/worklens/internal/db"
	"github.com/terraincognita07/worklens/internal/importer"
	"github.com/terraincognita07/worklens/internal/logging"
)

func main() {
	dbPath := flag.String("db", filepath.Join("data", "worklens.db"), "sqlite database path")
	dir := flag.String("dir", ".", "directory holding projects.csv, users.csv and tasks.csv")
	dryRun := flag.Bool("dry-run", false, "parse and count without writing")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	logging.Init(filepath.Join("logs", "worklens-import.log"), *logLevel)

	database, err := db.OpenSQLite(*dbPath)
	if err != nil {
		logrus.WithError(err).Fatal("database init failed")
	}

	summaries, err := importer.New(database, *dryRun).Run(*dir)
	for _, summary := range summaries {
		fmt.Println(summary)
	}
	if err != nil {
		logrus.WithError(err).Fatal("import failed")
	}
	if *dryRun {
		fmt.Println("dry run, nothing written")
	}
}
