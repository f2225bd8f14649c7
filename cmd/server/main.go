package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/internal-chat/backend/internal/config"
	"github.com/internal-chat/backend/internal/database"
	"github.com/internal-chat/backend/internal/handlers"
	"github.com/internal-chat/backend/internal/logging"
	"github.com/internal-chat/backend/internal/middleware"
	"github.com/internal-chat/backend/internal/routes"
	"github.com/internal-chat/backend/internal/scheduler"
	"github.com/internal-chat/backend/internal/services"
	"github.com/internal-chat/backend/internal/store"
	"github.com/internal-chat/backend/internal/token"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		pgLogHandler,
	)))

	// Stores
	accountStore := store.NewAccountStore(database.DB)
	sessionLedger := store.NewSessionLedger(database.DB, cfg.JWTRefreshExpiry)
	blacklist := store.NewBlacklistRegistry(database.DB)
	oneTimeTokens := store.NewOneTimeTokenStore(database.DB)
	systemLogs := store.NewSystemLogStore(database.DB)

	// Services
	codec := token.NewCodec(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	mailer := services.NewEmailService(cfg)
	authService := services.NewAuthService(
		accountStore, sessionLedger, blacklist, oneTimeTokens,
		codec, mailer, cfg.VerifyEmailTokenTTL, cfg.ResetPasswordTokenTTL,
	)
	googleClient := services.NewGoogleOAuth2Client(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)
	googleAuthService := services.NewGoogleAuthService(accountStore, authService, googleClient)

	// Daily purge sweep across the token stores and the error-log table
	sweeperDone := make(chan struct{})
	sweeper := scheduler.NewSweeper(sessionLedger, blacklist, oneTimeTokens, systemLogs)
	sweeper.Start(sweeperDone)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, cfg)
	googleHandler := handlers.NewGoogleAuthHandler(googleAuthService, cfg)
	userHandler := handlers.NewUserHandler(accountStore)
	adminHandler := handlers.NewAdminHandler(accountStore, sessionLedger, blacklist)
	healthHandler := handlers.NewHealthHandler()

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, blacklist, authHandler, googleHandler, userHandler, adminHandler, healthHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(sweeperDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
