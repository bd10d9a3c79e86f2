package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"kvcache/internal/backend"
	"kvcache/internal/cache"
	"kvcache/internal/config"
	"kvcache/internal/http"
	"kvcache/internal/logger"
	"kvcache/internal/models"
	"kvcache/internal/ratelimit"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connection for logging
	logDatabaseURL := cfg.LogDatabaseURL
	if logDatabaseURL == "" {
		logDatabaseURL = cfg.DatabaseURL
	}
	db, err := logger.NewPostgresConnection(logDatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to log database: %v", err)
	}
	defer db.Close()

	// Initialize logger
	appLogger := logger.NewDatabaseLogger(db)
	defer appLogger.Close()

	// Create internal log event for startup
	startupCtx := logger.WithLogEvent(context.Background(), logger.NewInternalLogEvent())

	appLogger.LogInfo(startupCtx, logger.OpServerStart, "Starting KV Cache Service", map[string]interface{}{
		"version": "1.0.0",
		"config": map[string]interface{}{
			"port":             cfg.Port,
			"backend_type":     cfg.BackendType,
			"default_lifetime": cfg.DefaultLifetime.Seconds(),
		},
	})

	// Initialize storage backend
	storage, err := initializeBackend(cfg)
	if err != nil {
		appLogger.LogError(
			startupCtx,
			"backend_init",
			"",
			"Failed to initialize storage backend",
			err,
			models.LogSeverityHigh,
			nil,
		)
		log.Fatalf("Failed to initialize storage backend: %v", err)
	}

	// Build the cache registry: one lazy frontend serves the flat entry API
	registry := cache.NewRegistry()
	if err := registry.Register(http.EntriesCacheName, cache.NewLazy(storage)); err != nil {
		log.Fatalf("Failed to register entries cache: %v", err)
	}

	fmt.Printf("🔧 Rate Limit Config: Global=%d/sec, Per-IP=%d/sec\n", cfg.GlobalRateLimitPerSec, cfg.PerIPRateLimitPerSec)

	rateLimiter := ratelimit.NewLimiter(
		int64(cfg.GlobalRateLimitPerSec),
		int64(cfg.GlobalRateLimitPerSec),
		int64(cfg.PerIPRateLimitPerSec),
		int64(cfg.PerIPRateLimitPerSec),
	)

	// Initialize HTTP handler
	handler, err := http.NewHandler(registry, storage, appLogger, cfg.DefaultLifetime)
	if err != nil {
		log.Fatalf("Failed to initialize HTTP handler: %v", err)
	}

	// Initialize server
	addr := ":" + cfg.Port
	server := http.NewServer(
		addr,
		handler,
		appLogger,
		rateLimiter,
		cfg.ServerReadTimeout,
		cfg.ServerWriteTimeout,
	)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			appLogger.LogError(
				context.Background(),
				logger.OpServerStart,
				"",
				"Server failed to start",
				err,
				models.LogSeverityHigh,
				map[string]interface{}{"addr": addr},
			)
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	fmt.Printf("🚀 KV Cache Service started on %s\n", addr)
	fmt.Println("📋 Available endpoints:")
	fmt.Println("  GET    /health                                      - Health check")
	fmt.Println("  GET    /api/entries/{id}                            - Fetch entry")
	fmt.Println("  PUT    /api/entries/{id}                            - Save entry")
	fmt.Println("  DELETE /api/entries/{id}                            - Delete entry")
	fmt.Println("  DELETE /api/entries                                 - Flush backend")
	fmt.Println("  GET    /api/namespaces/{namespace}/entries/{id}     - Fetch namespace entry")
	fmt.Println("  PUT    /api/namespaces/{namespace}/entries/{id}     - Save namespace entry")
	fmt.Println("  DELETE /api/namespaces/{namespace}/entries/{id}     - Delete namespace entry")
	fmt.Println("  DELETE /api/namespaces/{namespace}                  - Flush namespace")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\n🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.LogError(
			ctx,
			logger.OpServerShutdown,
			"",
			"Server shutdown error",
			err,
			models.LogSeverityMedium,
			nil,
		)
		log.Printf("Server shutdown error: %v", err)
	} else {
		appLogger.LogInfo(ctx, logger.OpServerShutdown, "Server shutdown completed successfully", nil)
		fmt.Println("✅ Server shutdown completed")
	}
}

func initializeBackend(cfg *config.Config) (backend.Backend, error) {
	switch cfg.BackendType {
	case "redis":
		return backend.NewRedisBackend(cfg.RedisURL)
	case "postgres":
		return backend.NewPostgresBackend(cfg.DatabaseURL)
	case "memory":
		return backend.NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.BackendType)
	}
}
