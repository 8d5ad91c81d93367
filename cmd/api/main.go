package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/adventure-engine/internal/config"
	"github.com/jwebster45206/adventure-engine/internal/handlers"
	"github.com/jwebster45206/adventure-engine/internal/logger"
	"github.com/jwebster45206/adventure-engine/internal/middleware"
	"github.com/jwebster45206/adventure-engine/internal/services/events"
	"github.com/jwebster45206/adventure-engine/internal/session"
	internalstorage "github.com/jwebster45206/adventure-engine/internal/storage"
	"github.com/jwebster45206/adventure-engine/pkg/storage"
	"github.com/jwebster45206/adventure-engine/pkg/world"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Adventure Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"storage_backend", cfg.StorageBackend)

	def := world.Default()
	if cfg.WorldFile != "" {
		def, err = world.Load(cfg.WorldFile)
		if err != nil {
			log.Error("Failed to load world", "error", err, "path", cfg.WorldFile)
			os.Exit(1)
		}
	}
	if _, err := def.Build(); err != nil {
		log.Error("World failed validation", "error", err)
		os.Exit(1)
	}

	var (
		store       storage.Storage
		redisClient *redis.Client
	)
	switch cfg.StorageBackend {
	case config.BackendRedis:
		redisClient, err = internalstorage.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Error("Invalid Redis URL", "error", err)
			os.Exit(1)
		}
		rs := internalstorage.NewRedisStorage(redisClient, cfg.GameStateTTL, log)
		waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Minute)
		err = rs.WaitForConnection(waitCtx)
		waitCancel()
		if err != nil {
			log.Error("Failed to connect to storage", "error", err)
			os.Exit(1)
		}
		store = rs
	case config.BackendSQLite:
		store, err = internalstorage.OpenSQLite(cfg.SQLitePath, log)
		if err != nil {
			log.Error("Failed to open storage", "error", err, "path", cfg.SQLitePath)
			os.Exit(1)
		}
	default:
		store = storage.NewMockStorage()
		log.Warn("Using in-memory storage; games are lost on restart")
	}
	log.Info("Storage connection established successfully")

	opts := []session.Option{session.WithWorld(def)}
	if redisClient != nil {
		opts = append(opts, session.WithRelay(events.NewBroadcaster(redisClient, log)))
	}
	manager := session.NewManager(store, log, opts...)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, cfg.StorageBackend, manager, log)
	mux.Handle("/health", healthHandler)

	gamesHandler := handlers.NewGamesHandler(manager, log)
	mux.Handle("/v1/games", gamesHandler)
	mux.Handle("/v1/games/", gamesHandler)

	if redisClient != nil {
		mux.Handle("/v1/events/games/", handlers.NewEventsHandler(redisClient, log))
	}

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the event stream stays open
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}
