package main

import (
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/config"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/database"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/logging"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/routes"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/services"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/store"
	"github.com/go-co-op/gocron/v2"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}

	var (
		entityStore  store.Store
		db           *gorm.DB
		pgLogHandler *logging.PGHandler
		cleanup      gocron.Scheduler
	)

	if cfg.UsesPostgres() {
		if cfg.DBPassword == "" {
			slog.Error("DB_PASSWORD environment variable is required")
			os.Exit(1)
		}

		var err error
		db, err = database.Connect(cfg)
		if err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		if err := database.Migrate(db); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}

		// PostgreSQL log handler (ERROR+ async batch)
		pgLogHandler = logging.NewPGHandler(db)
		logging.WithStore(pgLogHandler)
		cleanup, err = logging.StartCleanup(db, cfg.LogRetentionDays)
		if err != nil {
			slog.Error("log cleanup scheduler failed", "error", err)
			os.Exit(1)
		}

		entityStore = store.NewGormStore(db)
	} else {
		slog.Warn("using in-memory store, data is lost on restart", "driver", cfg.StoreDriver)
		entityStore = store.NewMemoryStore()
	}

	// Services
	gate := services.NewAccessGate(entityStore)
	authService := services.NewAuthService(entityStore, cfg)
	clientService := services.NewClientService(entityStore, gate, cfg.StoreTimeout)
	productService := services.NewProductService(entityStore, gate, cfg.StoreTimeout)
	orderService := services.NewOrderService(entityStore, gate, cfg.StoreTimeout)
	profileService := services.NewProfileService(entityStore, gate, cfg.StoreTimeout)

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

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${locals:requestid} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())
	app.Use(metrics.Middleware())

	routes.Setup(app, cfg, gate, routes.Handlers{
		Auth:     handlers.NewAuthHandler(authService),
		Health:   handlers.NewHealthHandler(entityStore),
		Clients:  handlers.NewClientHandler(clientService),
		Products: handlers.NewProductHandler(productService),
		Orders:   handlers.NewOrderHandler(orderService),
		Profiles: handlers.NewProfileHandler(profileService),
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "store", cfg.StoreDriver)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if cleanup != nil {
		if err := cleanup.Shutdown(); err != nil {
			slog.Error("log cleanup shutdown error", "error", err)
		}
	}
	if pgLogHandler != nil {
		pgLogHandler.Stop()
	}
	sentry.Flush(2 * time.Second)

	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				slog.Error("database close error", "error", err)
			}
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.Locals("requestid"),
			"error", err.Error(),
		)
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
