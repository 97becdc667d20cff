package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/flowdoc/clinic-platform/internal/api/router"
	"github.com/flowdoc/clinic-platform/internal/appointments"
	"github.com/flowdoc/clinic-platform/internal/cache"
	"github.com/flowdoc/clinic-platform/internal/calendar"
	appconfig "github.com/flowdoc/clinic-platform/internal/config"
	"github.com/flowdoc/clinic-platform/internal/observability/metrics"
	"github.com/flowdoc/clinic-platform/internal/patients"
	"github.com/flowdoc/clinic-platform/pkg/logging"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Repositories: Postgres when configured, in-memory otherwise so the
	// server stays usable for local development and demos.
	var (
		patientRepo patients.Repository
		apptRepo    appointments.Repository
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			logger.Error("database unreachable", "error", err)
			os.Exit(1)
		}
		patientRepo = patients.NewPostgresRepository(pool, cfg.RecordNumberSuffix)
		apptRepo = appointments.NewPostgresRepository(pool)
		logger.Info("using postgres store")
	} else {
		memPatients := patients.NewInMemoryRepository(cfg.RecordNumberSuffix)
		patientRepo = memPatients
		apptRepo = appointments.NewInMemoryRepository(memPatients)
		logger.Warn("DATABASE_URL not set, using in-memory store")
	}

	// Optional Redis snapshot cache.
	var apptCache *cache.AppointmentCache
	if cfg.RedisAddr != "" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		client := redis.NewClient(opts)
		defer func() { _ = client.Close() }()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, running without cache", "error", err)
		} else {
			apptCache = cache.NewAppointmentCache(client, cfg.CacheTTL)
			logger.Info("appointment cache enabled", "ttl", cfg.CacheTTL)
		}
	}

	windowStart, err := appointments.MinutesOfDay(cfg.CalendarDayStart)
	if err != nil {
		logger.Warn("invalid CALENDAR_DAY_START, using 08:00", "value", cfg.CalendarDayStart)
		windowStart = calendar.DefaultWindowStartMinutes
	}

	controller := calendar.NewController(calendar.Config{
		Store: &calendar.RepositoryStore{
			Patients:     patientRepo,
			Appointments: apptRepo,
		},
		Cache:              apptCache,
		Metrics:            metrics.NewCalendarMetrics(nil),
		Logger:             logger,
		ClinicianID:        cfg.ClinicianID,
		StoreTimeout:       cfg.StoreTimeout,
		WindowStartMinutes: windowStart,
		InitialView:        calendar.ViewType(cfg.DefaultViewType),
	})
	if err := controller.Load(ctx); err != nil {
		// Not fatal: the store may come up later, a refresh recovers.
		logger.Warn("initial calendar load failed", "error", err)
	}

	r := router.New(&router.Config{
		Logger:             logger,
		PatientsHandler:    patients.NewHandler(patientRepo, logger),
		CalendarHandler:    calendar.NewHandler(controller, logger),
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
