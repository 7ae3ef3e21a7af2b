package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/worklens/internal/api"
	"github.com/terraincognita07/worklens/internal/db"
	"github.com/terraincognita07/worklens/internal/logging"
	"github.com/terraincognita07/worklens/internal/services"
)

func main() {
	// Missing .env is fine, the environment may be set directly.
	_ = godotenv.Load()

	dbPath := getEnv("DB_PATH", filepath.Join("data", "worklens.db"))
	port := getEnv("PORT", "8080")
	secretKey := getEnv("SECRET_KEY", "change_me_in_production")
	tokenTTL := getDurationEnv("TOKEN_TTL", 30*time.Minute)
	logPath := getEnv("LOG_PATH", filepath.Join("logs", "worklens.log"))
	logLevel := getEnv("LOG_LEVEL", "info")

	adminUsername := getEnv("BOOTSTRAP_ADMIN_USERNAME", "admin")
	adminPassword := getEnv("BOOTSTRAP_ADMIN_PASSWORD", "admin_password")
	adminFullName := getEnv("BOOTSTRAP_ADMIN_FULL_NAME", "Admin User")

	logging.Init(logPath, logLevel)

	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		logrus.WithError(err).Fatal("database init failed")
	}

	authService := services.NewAuthService(db.NewRepositories(database).Users)
	created, err := authService.EnsureBootstrapAdmin(adminUsername, adminPassword, adminFullName)
	if err != nil {
		logrus.WithError(err).Fatal("bootstrap admin failed")
	}
	if created {
		logrus.WithField("username", adminUsername).Info("bootstrap admin created")
	}

	handler := api.NewHandler(database, []byte(secretKey), tokenTTL)

	app := fiber.New(fiber.Config{
		AppName:               "Worklens",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(compress.New())

	api.RegisterRoutes(app, handler)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logrus.WithError(err).Error("server shutdown failed")
		}
	}()

	logrus.WithFields(logrus.Fields{"port": port, "db": dbPath}).Info("worklens listening")
	if err := app.Listen(":" + port); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		logrus.WithField("key", key).Warnf("invalid duration %q, using default", value)
		return fallback
	}
	return parsed
}
