package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Yug-More/Parallel-AI/internal/api"
	"github.com/Yug-More/Parallel-AI/internal/api/middleware"
	"github.com/Yug-More/Parallel-AI/internal/chat"
	"github.com/Yug-More/Parallel-AI/internal/config"
	"github.com/Yug-More/Parallel-AI/internal/events"
	"github.com/Yug-More/Parallel-AI/internal/handlers"
	"github.com/Yug-More/Parallel-AI/internal/llm"
	"github.com/Yug-More/Parallel-AI/internal/models"
	"github.com/Yug-More/Parallel-AI/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	// Durable store: PostgreSQL when configured, SQLite otherwise
	var db store.DataStore
	if cfg.DatabaseURL != "" {
		logger.Info().Msg("running database migrations...")
		if err := store.RunMigrations(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
		logger.Info().Msg("migrations completed")

		pgStore, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		defer pgStore.Close()
		db = pgStore
		logger.Info().Msg("connected to PostgreSQL")
	} else {
		sqliteStore, err := store.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		defer sqliteStore.Close()
		db = sqliteStore
		logger.Info().Str("path", cfg.SQLitePath).Msg("using SQLite store")
	}

	// Redis: activity feed, presence, rate limiting, event fan-out
	var redisStore *store.RedisStore
	if cfg.RedisURL != "" {
		var err error
		redisStore, err = store.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisStore.Close()
		logger.Info().Msg("connected to Redis")
	} else {
		logger.Warn().Msg("REDIS_URL not set; presence, activity and rate limiting disabled")
	}

	// Event broker: Redis pub/sub when available, in-process otherwise
	var broker events.Broker
	if redisStore != nil {
		broker = events.NewRedisBroker(redisStore.Client())
	} else {
		broker = events.NewMemoryBroker()
	}
	defer broker.Close()

	// Model client pool, one client per agent identity
	pool := llm.NewPoolFromKeys(cfg.AgentKeys, cfg.OpenAIModel, cfg.ModelTimeout)

	roster := llm.DefaultRoster
	if len(cfg.Roster) > 0 {
		override := make([]llm.AgentID, 0, len(cfg.Roster))
		for _, name := range cfg.Roster {
			if id, ok := llm.ParseAgentID(name); ok {
				override = append(override, id)
			}
		}
		if len(override) > 0 {
			roster = override
		}
	}

	var activity chat.ActivityLog = noopActivity{}
	if redisStore != nil {
		activity = redisStore
	}
	orch := chat.NewOrchestrator(db, activity, broker, pool, roster, logger)

	// HTTP layer
	auth := middleware.NewAuthMiddleware(cfg.JWTSecret, cfg.SessionTTL, db, redisStore, logger, !cfg.IsDevelopment())
	h := handlers.NewHandler(db, redisStore, orch, broker, auth, logger)

	var limiter *middleware.RateLimiter
	if redisStore != nil {
		limiter = middleware.NewRateLimiter(redisStore.Client(), logger, middleware.RateLimiterConfig{
			Whitelist:        cfg.RateLimitWhitelist,
			AutoBlockEnabled: cfg.AutoBlockEnabled,
		})
	}

	router := api.NewRouter(api.Deps{
		Handler:     h,
		Auth:        auth,
		RateLimiter: limiter,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
	})

	// Create server
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// Write timeout must outlive a full team fan-out plus synthesis
		// and keep SSE streams alive.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("model", cfg.OpenAIModel).
			Msg("starting Parallel AI server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}

// noopActivity satisfies the activity contract when Redis is absent.
type noopActivity struct{}

func (noopActivity) AddActivity(context.Context, uuid.UUID, *models.Activity) error {
	return nil
}

func (noopActivity) RecentActivities(context.Context, uuid.UUID, int) ([]models.Activity, error) {
	return nil, nil
}
