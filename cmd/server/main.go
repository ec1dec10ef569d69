package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/fixora/resourcesvc/application/port/outbound"
	"github.com/fixora/resourcesvc/application/usecase/crud"
	"github.com/fixora/resourcesvc/application/usecase/resource_management"
	"github.com/fixora/resourcesvc/domain/entity"
	"github.com/fixora/resourcesvc/infrastructure/adapter/memory"
	"github.com/fixora/resourcesvc/infrastructure/adapter/postgres"
	"github.com/fixora/resourcesvc/infrastructure/config"
	"github.com/fixora/resourcesvc/infrastructure/http/handler"
	"github.com/fixora/resourcesvc/infrastructure/http/middleware"
	"github.com/fixora/resourcesvc/infrastructure/http/server"
	"github.com/fixora/resourcesvc/infrastructure/http/validator"
	"github.com/fixora/resourcesvc/infrastructure/service/jwt"
	"github.com/fixora/resourcesvc/infrastructure/service/logger"
	"github.com/fixora/resourcesvc/infrastructure/service/metrics"
	"github.com/fixora/resourcesvc/infrastructure/service/ratelimit"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	structuredLogger := logger.NewStructuredLogger(logger.LoggerConfig{
		Level:            cfg.LogLevel,
		Format:           cfg.LogFormat,
		EnableRequestLog: cfg.LogEnableRequestLog,
		ServiceName:      "resourcesvc",
	})
	structuredLogger.Info(ctx, "Application starting", map[string]interface{}{
		"env":            cfg.Environment,
		"storage_driver": cfg.StorageDriver,
	})

	var (
		reg      *prometheus.Registry
		appStats *metrics.Metrics
	)
	if cfg.MetricsEnabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		appStats = metrics.NewMetrics(reg)
	}

	// Storage
	var (
		repo   outbound.Repository[*entity.Resource]
		pinger handler.Pinger
	)
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		repo = memory.NewRepository((*entity.Resource).Clone)
		structuredLogger.Warn(ctx, "Using in-memory storage, data is lost on restart", nil)
	default:
		db, err := postgres.Open(ctx, postgres.DBConfig{
			URL:             cfg.DatabaseURL,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
		})
		if err != nil {
			structuredLogger.Error(ctx, "Failed to connect to database", err, nil)
			os.Exit(1)
		}
		defer db.Close()
		structuredLogger.Info(ctx, "Database connection established", nil)

		if cfg.AutoMigrate {
			if err := runMigrations(db, cfg.MigrationsPath); err != nil {
				structuredLogger.Error(ctx, "Failed to apply migrations", err, map[string]interface{}{"path": cfg.MigrationsPath})
				os.Exit(1)
			}
			structuredLogger.Info(ctx, "Migrations applied", map[string]interface{}{"path": cfg.MigrationsPath})
		}

		repo = postgres.NewResourceRepository(db)
		pinger = db
		if appStats != nil {
			go reportPoolStats(ctx, db, appStats)
		}
	}

	// Rate limiting (Redis-backed or noop based on config)
	var rateLimitService ratelimit.RateLimitService
	rs, err := ratelimit.NewRateLimitService(ratelimit.RateLimitConfig{
		Enabled:       cfg.RateLimitEnabled,
		RedisURL:      cfg.RedisURL,
		Requests:      cfg.RateLimitRequests,
		Window:        cfg.RateLimitWindow,
		BlockDuration: cfg.RateLimitBlockDuration,
	}, structuredLogger)
	if err != nil {
		structuredLogger.Error(ctx, "Failed to initialize rate limit service, continuing without it", err, nil)
	} else {
		rateLimitService = rs
	}

	tokenService, err := jwt.NewJWTService(cfg)
	if err != nil {
		structuredLogger.Error(ctx, "Failed to initialize JWT service", err, nil)
		os.Exit(1)
	}

	// Use cases
	resourceService := crud.NewService[*entity.Resource](repo, crud.Options{
		DefaultPageSize: cfg.DefaultPageSize,
		MaxPageSize:     cfg.MaxPageSize,
	})
	var recorder resource_management.OperationRecorder
	if appStats != nil {
		recorder = appStats
	}
	resourceUseCase := resource_management.NewResourceManagementUseCase(
		resourceService,
		validator.New(),
		structuredLogger,
		recorder,
	)

	deps := server.Dependencies{
		ResourceUseCase: resourceUseCase,
		TokenService:    tokenService,
		RateLimiter:     rateLimitService,
		Logger:          structuredLogger,
		Metrics:         appStats,
		DB:              pinger,
	}
	if reg != nil {
		deps.Gatherer = reg
	}

	srv := server.New(server.Config{
		Addr:                 cfg.Addr(),
		ReadTimeout:          15 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		CORSEnabled:          cfg.CORSEnabled,
		CORSAllowedOrigins:   cfg.CORSAllowedOrigins,
		CORSAllowCredentials: cfg.CORSAllowCredentials,
		EnableRequestLog:     cfg.LogEnableRequestLog,
		RateLimit: middleware.RateLimitConfig{
			Requests:      cfg.RateLimitRequests,
			Window:        cfg.RateLimitWindow,
			BlockDuration: cfg.RateLimitBlockDuration,
		},
	}, deps)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		structuredLogger.Info(ctx, "Shutdown signal received", map[string]interface{}{"signal": sig.String()})
	case err := <-errCh:
		if err != nil {
			structuredLogger.Error(ctx, "HTTP server stopped unexpectedly", err, nil)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(ctx, "Graceful shutdown failed", err, nil)
	}
	structuredLogger.Info(ctx, "Server stopped", nil)
}

func reportPoolStats(ctx context.Context, db *sql.DB, m *metrics.Metrics) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		m.UpdateDatabaseConnections(db.Stats().OpenConnections)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func runMigrations(db *sql.DB, path string) error {
	migrator, err := postgres.NewMigrator(db, path)
	if err != nil {
		return err
	}
	return migrator.Up()
}
