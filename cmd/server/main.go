package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stwalsh4118/landrecords/internal/config"
	"github.com/stwalsh4118/landrecords/internal/database"
	"github.com/stwalsh4118/landrecords/internal/handlers"
	"github.com/stwalsh4118/landrecords/internal/locks"
	"github.com/stwalsh4118/landrecords/internal/logger"
	"github.com/stwalsh4118/landrecords/internal/metrics"
	"github.com/stwalsh4118/landrecords/internal/middleware"
	"github.com/stwalsh4118/landrecords/internal/repository"
	"github.com/stwalsh4118/landrecords/internal/services"
	"github.com/stwalsh4118/landrecords/internal/validation"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	log.Info("Starting land records API", logger.Fields{
		"version":        handlers.APIVersion,
		"environment":    cfg.Server.Env,
		"port":           cfg.Server.Port,
		"detail_workers": cfg.Ingest.DetailWorkers,
	})

	// Create database connection pool
	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, logger.Fields{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", logger.Fields{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			log.Fatal("Failed to apply migrations", err, nil)
		}
		log.Info("Database migrations applied", nil)
	}

	// Upload locks live in Redis when configured, otherwise in process
	var (
		locker      locks.Locker
		redisPinger handlers.Pinger
	)
	redisClient, err := locks.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to redis", err, nil)
	}
	if redisClient != nil {
		defer redisClient.Close()
		redisLocker := locks.NewRedisLocker(redisClient)
		locker = redisLocker
		redisPinger = redisLocker
		log.Info("Upload locks backed by redis", logger.Fields{"pool_size": cfg.Redis.PoolSize})
	} else {
		locker = locks.NewMemoryLocker()
		log.Warn("REDIS_URL not set, upload locks are local to this process", nil)
	}

	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to initialize validator", err, nil)
	}
	m := metrics.New(prometheus.DefaultRegisterer)

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS -> Metrics
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))
	router.Use(middleware.Metrics(m))

	// Register health check routes
	healthHandler := handlers.NewHealthHandler(db, redisPinger, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Initialize repository and service layers
	landRecordRepo := repository.NewLandRecordRepository(db)
	ingestionService := services.NewIngestionService(landRecordRepo, v, locker, m, log, cfg.Ingest)
	landRecordService := services.NewLandRecordService(landRecordRepo, log)

	// Initialize handlers
	landRecordHandler := handlers.NewLandRecordHandler(ingestionService, landRecordService)

	// Register API v1 routes
	v1 := router.Group("/api/v1")
	{
		records := v1.Group("/land-records")
		{
			records.POST("/upload", middleware.BodyLimit(cfg.Ingest.MaxBodyBytes), landRecordHandler.Upload)
			records.GET("/:id", landRecordHandler.Get)
			records.GET("/:id/nondhs", landRecordHandler.Chain)
		}
		v1.GET("/area/convert", landRecordHandler.ConvertArea)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", logger.Fields{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, logger.Fields{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
