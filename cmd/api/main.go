// Package main is the entry point for the catalog-metadata-service API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"catalog-metadata-service/internal/app/service"
	"catalog-metadata-service/internal/config"
	"catalog-metadata-service/internal/domain"
	"catalog-metadata-service/internal/infra/cache"
	"catalog-metadata-service/internal/infra/mdblist"
	"catalog-metadata-service/internal/infra/tmdb"
	"catalog-metadata-service/internal/job"
	"catalog-metadata-service/internal/logger"
	"catalog-metadata-service/internal/transport/httpserver"
	"catalog-metadata-service/internal/validator"
	"catalog-metadata-service/pkg/batch"
	"catalog-metadata-service/pkg/locker"
	"catalog-metadata-service/pkg/retry"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(
		logger.Config{
			Level:  cfg.Logger.Level,
			Format: cfg.Logger.Format,
			Output: cfg.Logger.Output,
		},
		logger.SentryConfig{
			Enabled:     cfg.Sentry.Enabled,
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		},
	)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting catalog-metadata-service",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
		zap.String("cache_backend", cfg.Cache.Backend),
	)

	// Connect to Redis when the cache or the scheduler needs it
	var redisClient *redis.Client
	if cfg.Cache.Backend == "redis" || cfg.Cache.Backend == "postgres" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal("failed to connect to Redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()
		log.Info("connected to Redis",
			zap.String("host", cfg.Redis.Host),
			zap.Int("port", cfg.Redis.Port),
		)
	}

	// Select the cache backend
	var (
		backend domain.Cache
		sweep   cache.Sweeper
		db      *gorm.DB
	)
	switch cfg.Cache.Backend {
	case "memory":
		backend = cache.NewMemoryBackend()
	case "redis":
		backend = cache.NewRedisBackend(redisClient, log.Logger, cfg.Cache.KeyPrefix)
	case "postgres":
		db, err = cache.NewConnection(
			cache.PostgresConfig{
				Host:         cfg.Database.Host,
				Port:         cfg.Database.Port,
				Name:         cfg.Database.Name,
				User:         cfg.Database.User,
				Password:     cfg.Database.Password,
				SSLMode:      cfg.Database.SSLMode,
				MaxOpenConns: cfg.Database.MaxOpenConns,
				MaxIdleConns: cfg.Database.MaxIdleConns,
				MaxLifetime:  cfg.Database.MaxLifetime,
			},
			log.Logger,
		)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		defer func() { _ = cache.Close(db) }()

		pg := cache.NewPostgresBackend(db, log.Logger, cfg.Cache.Table)
		backend = pg
		sweep = pg
	case "none", "":
		log.Info("caching disabled")
	default:
		log.Fatal("unknown cache backend", zap.String("backend", cfg.Cache.Backend))
	}
	store := cache.NewStore(backend, log.Logger)

	// Create upstream clients
	tmdbClient := tmdb.New(
		tmdb.Config{
			BaseURL: cfg.TMDB.BaseURL,
			APIKey:  cfg.TMDB.APIKey,
			Timeout: cfg.TMDB.Timeout,
			CB: tmdb.CBConfig{
				MaxRequests:  cfg.TMDB.CB.MaxRequests,
				Interval:     cfg.TMDB.CB.Interval,
				Timeout:      cfg.TMDB.CB.Timeout,
				FailureRatio: cfg.TMDB.CB.FailureRatio,
			},
		},
		log.Logger,
	)
	listClient := mdblist.New(
		mdblist.Config{
			BaseURL: cfg.MDBList.BaseURL,
			APIKey:  cfg.MDBList.APIKey,
			Timeout: cfg.MDBList.Timeout,
		},
		log.Logger,
	)

	// Create services
	genreSvc := service.NewGenreService(tmdbClient, store, cfg.Cache.GenreTTL, log.Logger)
	resolver := tmdb.NewResolver(tmdbClient, genreSvc, log.Logger)
	catalogSvc := service.NewCatalogService(
		tmdbClient,
		listClient,
		resolver,
		genreSvc,
		store,
		service.Options{
			CatalogTTL:  cfg.Cache.CatalogTTL,
			AgeRating:   cfg.Catalog.AgeRating,
			WatchRegion: cfg.Catalog.WatchRegion,
			Lists:       cfg.MDBList.Lists,
			Retry: retry.Config{
				MaxRetries: cfg.TMDB.Retry.MaxRetries,
				BaseDelay:  cfg.TMDB.Retry.BaseDelay,
			},
			Enrich: batch.Options{
				BatchSize: cfg.Catalog.EnrichBatch,
				Delay:     cfg.Catalog.EnrichDelay,
			},
		},
		log.Logger,
	)

	// Create validator
	v := validator.New()

	// Create HTTP server
	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Port:      cfg.App.Port,
			BodyLimit: 1024 * 1024, // 1MB
			Debug:     cfg.App.Debug,
		},
		catalogSvc,
		store,
		sweep,
		db,
		v,
		log.Logger,
	)

	// Start the cleanup scheduler for the relational backend, coordinated
	// across instances through the distributed locker
	var scheduler *job.CleanupScheduler
	if sweep != nil {
		distLocker := locker.NewRedisLocker(redisClient, log.Logger)
		scheduler = job.NewCleanupScheduler(
			sweep,
			job.CleanupConfig{
				Interval: cfg.Cleanup.Interval,
				Timeout:  cfg.Cleanup.Timeout,
				Limit:    cfg.Cleanup.Limit,
			},
			log.Logger,
			distLocker,
		)
		scheduler.Start(cfg.Cleanup.OnStartup)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutdown signal received")

		if scheduler != nil {
			scheduler.Stop()
		}

		// Shutdown server with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.App.ShutdownWithContext(ctx); err != nil {
			log.Error("server shutdown error", zap.Error(err))
		}
	}()

	// Start server
	if err := server.Start(cfg.App.Port); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
