package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	_ "github.com/redmonkez12/user-location-api/docs" // Swagger docs (generated)
	"github.com/redmonkez12/user-location-api/internal/config"
	"github.com/redmonkez12/user-location-api/internal/database"
	httpServer "github.com/redmonkez12/user-location-api/internal/http"
	"github.com/redmonkez12/user-location-api/internal/location"
	"github.com/redmonkez12/user-location-api/internal/logging"
	"github.com/redmonkez12/user-location-api/internal/ratelimit"
	"github.com/redmonkez12/user-location-api/internal/user"
)

// @title           User Location API
// @version         1.0
// @description     REST API for managing users enriched with geocoded location metadata.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"store_backend", cfg.Store.Backend,
	)

	// Initialize Redis connection (rate limiting, and the user store when
	// the redis backend is selected)
	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// Initialize the user repository for the configured backend
	var userRepo user.Repository
	switch cfg.Store.Backend {
	case config.StoreBackendRedis:
		userRepo = user.NewRedisRepository(redisClient)
	default:
		db, err := initDB(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()
		userRepo = user.NewPostgresRepository(db)
	}

	// Initialize rate limiter
	rateLimiter := ratelimit.NewLimiter(redisClient, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)

	// Initialize location resolver
	resolver := location.NewResolver(location.Config{
		APIKey:             cfg.Weather.APIKey,
		BaseURL:            cfg.Weather.BaseURL,
		DefaultCountryCode: cfg.Weather.DefaultCountryCode,
		Timeout:            cfg.Weather.Timeout,
	})
	if cfg.Weather.APIKey == "" {
		logger.Warn("OWM_API_KEY is not set, zip code geocoding will fail")
	}

	// Initialize user service and handlers
	userService := user.NewService(userRepo, resolver, logger)
	userHandler := user.NewHandler(userService, logger)

	// Initialize router
	router := httpServer.NewRouter(cfg, userHandler, rateLimiter, logger)

	// Initialize HTTP server
	serverAddr := ":" + cfg.Server.Port
	server := httpServer.NewServer(
		serverAddr,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Printf("Received signal: %v", sig)

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initDB initializes the database connection and returns a Bun DB instance
func initDB(cfg config.DatabaseConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return database.NewBunDB(sqlDB), nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
