package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/config"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/database"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/gateway"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/logging"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/repository"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/routes"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/services"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/session"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/storage"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	logging.Setup(cfg.LogLevel)

	if cfg.LocalAPISecret == "" {
		cfg.LocalAPISecret = randomSecret()
		slog.Info("LOCAL_API_SECRET not set; generated one for this process")
	}
	if !cfg.GatewayConfigured() {
		slog.Warn("SUPABASE_URL or SUPABASE_ANON_KEY missing; only demo login is available")
	}

	// Local database (only when sessions are kept in postgres)
	var (
		db           *gorm.DB
		pgLogHandler *logging.PGHandler
	)
	cleanupDone := make(chan struct{})
	if cfg.UsesDatabase() {
		if cfg.DBPassword == "" {
			slog.Error("DB_PASSWORD environment variable is required for SESSION_STORAGE=postgres")
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
		pgLogHandler = logging.NewPGHandler(db, 5*time.Second)
		logging.Setup(cfg.LogLevel, pgLogHandler)

		// Log cleanup (30-day retention)
		logging.StartCleanup(db, cleanupDone)
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	metricsHandler, clientMetrics := setupMetrics()

	// Session storage
	sealer, err := storage.NewSealer(cfg.SessionEncryptionKey)
	if err != nil {
		slog.Error("invalid SESSION_ENCRYPTION_KEY", "error", err)
		os.Exit(1)
	}
	sessionStorage, closeStorage, err := openSessionStorage(cfg, db, sealer)
	if err != nil {
		slog.Error("session storage unavailable", "backend", cfg.SessionStorage, "error", err)
		os.Exit(1)
	}

	// Data sources and the session store
	opts := session.Options{
		Fixture:  repository.NewFixture(cfg.DemoLatency, nil),
		Storage:  sessionStorage,
		Observer: clientMetrics,
	}
	if cfg.GatewayConfigured() {
		client := gateway.New(gateway.Options{
			BaseURL:  cfg.GatewayURL,
			AnonKey:  cfg.GatewayAnonKey,
			Timeout:  cfg.GatewayTimeout,
			Observer: clientMetrics,
		})
		opts.Auth = client
		opts.Live = repository.NewLive(client)
	}
	store := session.New(opts)
	store.Subscribe(tagSentryUser)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := store.CheckSession(ctx); err != nil {
		slog.Warn("stored session dropped", "error", err)
	}
	cancel()

	issuer := session.NewTokenIssuer(cfg.LocalAPISecret, cfg.LocalTokenExpiry)

	// Services
	authService := services.NewAuthService(store, issuer)
	doctorService := services.NewDoctorService(store)
	appointmentService := services.NewAppointmentService(store, time.Now)
	scheduleService := services.NewScheduleService(store)
	prescriptionService := services.NewPrescriptionService(store)
	profileService := services.NewProfileService(store)
	pushService := services.NewPushService(store, cfg.Platform)

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

	app.Get("/metrics", adaptor.HTTPHandler(metricsHandler))

	// Routes
	routes.Setup(app, store, issuer, routes.Handlers{
		Session:     handlers.NewSessionHandler(authService, store),
		Health:      handlers.NewHealthHandler(store, cfg, db),
		Doctor:      handlers.NewDoctorHandler(doctorService),
		Appointment: handlers.NewAppointmentHandler(appointmentService, prescriptionService),
		Schedule:    handlers.NewScheduleHandler(scheduleService),
		Profile:     handlers.NewProfileHandler(profileService, pushService),
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "storage", cfg.SessionStorage)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	if pgLogHandler != nil {
		pgLogHandler.Stop()
	}
	sentry.Flush(2 * time.Second)
	closeStorage()

	// Close database connections
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				slog.Error("database close error", "error", err)
			}
		}
	}

	slog.Info("server stopped")
}

// setupMetrics registers client metrics on a private registry and returns the
// handler that exposes it.
func setupMetrics() (http.Handler, *metrics.ClientMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewClientMetrics(reg)
}

// openSessionStorage picks the persisted-session backend named by
// SESSION_STORAGE. The returned func releases it.
func openSessionStorage(cfg *config.Config, db *gorm.DB, sealer *storage.Sealer) (storage.Store, func(), error) {
	switch cfg.SessionStorage {
	case "memory", "":
		return storage.NewMemoryStore(sealer), func() {}, nil
	case "postgres":
		if db == nil {
			return nil, nil, errors.New("postgres session storage needs a database")
		}
		return storage.NewGormStore(db, cfg.SessionStorageKey, sealer), func() {}, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return storage.NewRedisStore(client, cfg.SessionStorageKey, sealer), func() {
			if err := client.Close(); err != nil {
				slog.Error("redis close error", "error", err)
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown SESSION_STORAGE %q (want memory, postgres or redis)", cfg.SessionStorage)
	}
}

// tagSentryUser keeps the Sentry scope on the signed-in user.
func tagSentryUser(snap session.Snapshot) {
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		if snap.User == nil {
			scope.SetUser(sentry.User{})
			scope.SetTag("role", "")
			return
		}
		scope.SetUser(sentry.User{ID: snap.User.ID, Email: snap.User.Email})
		scope.SetTag("role", string(snap.Role()))
		scope.SetTag("mode", string(snap.Mode()))
	})
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
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
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
