package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/adapter/cache"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/adapter/http/router"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/adapter/mailer"
	natsAdapter "github.com/Abdurahmanit/GroupProject/classifieds/internal/adapter/messaging/nats"
	mongoRepo "github.com/Abdurahmanit/GroupProject/classifieds/internal/adapter/repository/mongodb"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/adapter/storage/s3"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/auth"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/backend/mock"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/config"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/tracer"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found or error loading: %v. Relying on OS environment variables.\n", err)
	}

	bootLogger := logger.New(logger.ConfigFromEnv())
	cfg, err := config.Load(bootLogger)
	if err != nil {
		bootLogger.Fatal("Failed to load configuration", zap.Error(err))
	}
	appLogger := logger.New(cfg.Logger())
	defer appLogger.Sync()
	appLogger.Info("Application starting...", zap.String("service_name", cfg.ServiceName))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp := tracer.Init(tracer.Config{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.OTelEndpoint,
		SampleRatio: cfg.OTelSampleRatio,
	}, appLogger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	var metricsManager *metrics.Manager
	if cfg.PrometheusEnabled {
		metricsManager = metrics.NewManager(cfg.ServiceName)
		if cfg.PrometheusPort != "" {
			go func() {
				if err := metrics.StartServer(ctx, cfg.PrometheusPort, appLogger, metricsManager); err != nil {
					appLogger.Error("Prometheus metrics server failed", zap.Error(err))
				}
			}()
		}
	}

	opts := mock.Options{
		Latency:   cfg.MockLatency,
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
		Metrics:   metricsManager,
	}

	// --- Advertisement storage ---
	if cfg.StorageDriver == "mongo" {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		defer func() {
			if err := mongoClient.Disconnect(context.Background()); err != nil {
				appLogger.Error("Error disconnecting from MongoDB", zap.Error(err))
			}
		}()
		pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
		err = mongoClient.Ping(pingCtx, nil)
		cancelPing()
		if err != nil {
			appLogger.Fatal("Failed to ping MongoDB", zap.Error(err))
		}
		repo, err := mongoRepo.NewAdRepository(mongoClient.Database(cfg.MongoDatabase), appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize AdRepository", zap.Error(err))
		}
		_, existing, err := repo.Find(ctx, domain.AdFilter{Limit: 1})
		if err != nil {
			appLogger.Fatal("Failed to inspect advertisements collection", zap.Error(err))
		}
		opts.Repo = repo
		opts.SkipSeedAds = existing > 0
		appLogger.Info("MongoDB advertisement storage initialized.", zap.Int("existing_ads", existing))
	}

	// --- Image storage ---
	if cfg.ImageStore == "minio" {
		store, err := s3.NewStorage(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize MinIO storage", zap.Error(err))
		}
		opts.Images = store
		appLogger.Info("MinIO image storage initialized.", zap.String("bucket", cfg.MinioBucket))
	}

	// --- Events and notifications ---
	if cfg.NATSURL != "" {
		publisher, err := natsAdapter.NewPublisher(cfg.NATSURL, appLogger, cfg.ServiceName)
		if err != nil {
			appLogger.Fatal("Failed to initialize NATS publisher", zap.Error(err))
		}
		defer publisher.Close()
		opts.Events = publisher
	}
	if cfg.SMTPHost != "" {
		opts.Mailer = mailer.NewSMTPMailer(mailer.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, appLogger)
	}

	backend, err := mock.New(ctx, opts, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize backend", zap.Error(err))
	}
	defer backend.Close()

	var api domain.Backend = backend
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			appLogger.Warn("Redis is unreachable, advertisement cache disabled", zap.Error(err))
		} else {
			api = cache.NewCachingBackend(backend, cache.NewAdCache(redisClient, cfg.AdCacheTTL), appLogger)
			appLogger.Info("Redis advertisement cache enabled.", zap.Duration("ttl", cfg.AdCacheTTL))
		}
	}

	handler := router.New(router.Deps{
		Backend:      api,
		Tokens:       auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL),
		Metrics:      metricsManager,
		Recorder:     backend,
		Logger:       appLogger,
		ServeMetrics: cfg.PrometheusPort == "",
	})
	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info("Received shutdown signal, shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	appLogger.Info("Application shutting down...")
}
