package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	identityapp "github.com/datascientist-hue/live-dashboard/internal/application/identity"
	"github.com/datascientist-hue/live-dashboard/internal/application/reporting"
	"github.com/datascientist-hue/live-dashboard/internal/infrastructure/auth"
	"github.com/datascientist-hue/live-dashboard/internal/infrastructure/cache"
	"github.com/datascientist-hue/live-dashboard/internal/infrastructure/config"
	"github.com/datascientist-hue/live-dashboard/internal/infrastructure/fetch"
	"github.com/datascientist-hue/live-dashboard/internal/infrastructure/ingest"
	"github.com/datascientist-hue/live-dashboard/internal/infrastructure/logger"
	"github.com/datascientist-hue/live-dashboard/internal/infrastructure/persistence"
	"github.com/datascientist-hue/live-dashboard/internal/infrastructure/scheduler"
	"github.com/datascientist-hue/live-dashboard/internal/interfaces/http/handler"
	"github.com/datascientist-hue/live-dashboard/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting live dashboard",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Credential store
	db, err := persistence.NewDatabase(cfg.Store.Path)
	if err != nil {
		log.Fatal("Failed to open credential store", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing credential store", zap.Error(err))
		}
	}()

	accountRepo := persistence.NewGormAccountRepository(db.DB)

	// Sessions
	jwtService := auth.NewJWTService(cfg.JWT)
	var revoker auth.TokenRevoker
	if cfg.Redis.Host != "" {
		redisRevoker, err := auth.NewRedisTokenRevoker(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() { _ = redisRevoker.Close() }()
		revoker = redisRevoker
		log.Info("Using Redis token revocation store", zap.String("host", cfg.Redis.Host))
	} else {
		revoker = auth.NewMemoryTokenRevoker()
	}

	// Services
	authService := identityapp.NewAuthService(accountRepo, jwtService, revoker, log)
	accountService := identityapp.NewAccountService(accountRepo, log)

	if cfg.Bootstrap.Password == "" {
		log.Warn("No bootstrap password configured, skipping super admin creation")
	} else {
		bootstrapCtx, cancelBootstrap := context.WithTimeout(context.Background(), 10*time.Second)
		if err := accountService.EnsureSuperAdmin(bootstrapCtx, cfg.Bootstrap.Username, cfg.Bootstrap.Password); err != nil {
			cancelBootstrap()
			log.Fatal("Failed to bootstrap super admin", zap.Error(err))
		}
		cancelBootstrap()
	}

	dashboard := reporting.NewDashboardService(
		buildFetcher(cfg, primaryDataset, log),
		buildFetcher(cfg, mappingDataset, log),
		ingest.NewNormalizer(log, ingest.WithRetentionDays(cfg.Dataset.RetentionDays)),
		cache.NewSnapshotCache(cfg.Dataset.CacheTTL),
		log,
	)

	// Background refresh
	if cfg.Dataset.RefreshSchedule != "" {
		refresher := scheduler.NewRefreshScheduler(dashboard, 5*time.Minute, log)
		if err := refresher.Start(cfg.Dataset.RefreshSchedule); err != nil {
			log.Fatal("Failed to start refresh scheduler", zap.Error(err))
		}
		defer refresher.Stop()
	}

	engine := router.Setup(cfg.App.Env, router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Account:   handler.NewAccountHandler(accountService),
		Dashboard: handler.NewDashboardHandler(dashboard),
	}, jwtService, revoker, log)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

type datasetKind int

const (
	primaryDataset datasetKind = iota
	mappingDataset
)

// buildFetcher constructs the configured fetcher for the primary dataset or
// the optional category mapping. Returns nil when no mapping is configured.
func buildFetcher(cfg *config.Config, kind datasetKind, log *zap.Logger) fetch.Fetcher {
	var inner fetch.Fetcher

	switch cfg.Dataset.Source {
	case "s3":
		key := cfg.Dataset.Key
		if kind == mappingDataset {
			key = cfg.Dataset.MappingKey
		}
		if key == "" {
			return nil
		}
		client, err := fetch.NewS3Client(context.Background(), cfg.Dataset.Region)
		if err != nil {
			log.Fatal("Failed to build S3 client", zap.Error(err))
		}
		inner = fetch.NewS3Fetcher(client, cfg.Dataset.Bucket, key)
	default:
		path := cfg.Dataset.Path
		if kind == mappingDataset {
			path = cfg.Dataset.MappingPath
		}
		if path == "" {
			return nil
		}
		inner = fetch.NewFileFetcher(path)
	}

	return fetch.NewRetryingFetcher(inner, cfg.Dataset.RetryAttempts, cfg.Dataset.RetryBackoff, log)
}
