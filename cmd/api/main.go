package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/discussion-system/discussion-system/internal/config"
	"github.com/discussion-system/discussion-system/internal/repository"
	"github.com/discussion-system/discussion-system/internal/router"
	"github.com/discussion-system/discussion-system/pkg/cache"
	"github.com/discussion-system/discussion-system/pkg/logger"
	"github.com/discussion-system/discussion-system/pkg/metrics"
	"github.com/discussion-system/discussion-system/pkg/queue"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.NewLogger(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting discussion API server...")

	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	var redisClient *cache.RedisClient
	if cfg.Redis.Enabled {
		redisClient = cache.NewRedisClient(
			cfg.Redis.Addr(),
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
			cfg.Redis.MinIdleConns,
		)
		defer redisClient.Close()

		if err := redisClient.Ping(context.Background()); err != nil {
			logger.WithError(err).Fatal("Failed to connect to Redis")
		}
	}

	var publisher queue.Publisher = queue.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = queue.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.DiscussionEvents)
	} else {
		logger.Warn("No Kafka brokers configured, domain events are dropped")
	}
	defer publisher.Close()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := router.New(router.Dependencies{
		Config:    cfg,
		DB:        db,
		Redis:     redisClient,
		Publisher: publisher,
		Metrics:   metrics.New(),
		Logger:    logger,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
