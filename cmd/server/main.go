// Package main is the entry point for the campus complaint desk server.
// It provides a REST API where students file complaints and administrators
// triage them, plus the dashboard statistics behind the admin view.
//
// Architecture:
//   - Complaints and users live in PostgreSQL (in memory when DATABASE_URL is unset in development)
//   - Access tokens are HS256 JWTs; logout revokes the token id in Redis
//   - Every complaint operation goes through the authorization rule table in services
//   - Prometheus metrics are exported on /metrics
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aawaaz/complaint-desk/internal/cache"
	"github.com/aawaaz/complaint-desk/internal/config"
	"github.com/aawaaz/complaint-desk/internal/database"
	"github.com/aawaaz/complaint-desk/internal/handlers"
	"github.com/aawaaz/complaint-desk/internal/metrics"
	"github.com/aawaaz/complaint-desk/internal/middleware"
	"github.com/aawaaz/complaint-desk/internal/services"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	defer logger.Sync()
	sugar := logger.Sugar()

	sugar.Infow("Starting complaint desk server",
		"port", cfg.Port,
		"env", cfg.Environment,
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	metrics.Register()

	// Persistence
	var (
		complaintStore services.ComplaintStore
		userStore      services.UserStore
		dbPinger       handlers.Pinger
	)
	if cfg.DatabaseURL != "" {
		db, err := database.NewPool(ctx, cfg.DatabaseURL, int32(cfg.DatabaseMaxConn))
		if err != nil {
			sugar.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := database.Migrate(ctx, db); err != nil {
			sugar.Fatalf("Failed to migrate database: %v", err)
		}

		pg := database.NewPgStore(db, sugar)
		complaintStore, userStore, dbPinger = pg, pg, db
	} else {
		sugar.Warn("DATABASE_URL not set, using in-memory store")
		mem := database.NewMemoryStore()
		complaintStore, userStore = mem, mem
	}

	// Token revocation and rate limiting
	var (
		denylist    services.TokenDenylist
		limiter     middleware.Limiter
		cachePinger handlers.Pinger
	)
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			sugar.Fatalf("Failed to connect to redis: %v", err)
		}
		defer client.Close()

		rs := cache.NewRedisStore(client)
		denylist, limiter, cachePinger = rs, rs, rs
	} else {
		sugar.Warn("REDIS_URL not set, using in-memory token and rate limit store")
		mem := cache.NewMemoryStore()
		go mem.StartSweeper(ctx, 5*time.Minute)
		denylist, limiter = mem, mem
	}

	// Initialize services
	complaintSvc := services.NewComplaintService(complaintStore, userStore, sugar)
	authSvc := services.NewAuthService(userStore, denylist, services.AuthOptions{
		Secret:     cfg.JWTSecret,
		TokenTTL:   cfg.JWTTTL,
		BcryptCost: cfg.BcryptCost,
	}, sugar)
	statsWorker := services.NewStatsWorker(complaintSvc, sugar)

	// Keep the /metrics complaint gauges fresh
	go statsWorker.Start(ctx, cfg.StatsRefreshInterval)

	router := handlers.NewRouter(handlers.RouterConfig{
		Complaints:     handlers.NewComplaintHandler(complaintSvc, sugar),
		Auth:           handlers.NewAuthHandler(authSvc, sugar),
		Health:         handlers.NewHealthHandler(dbPinger, cachePinger, sugar),
		Tokens:         authSvc,
		Limiter:        limiter,
		RateLimitRPM:   cfg.RateLimitRPM,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sugar.Infof("Server listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	sugar.Info("Shutting down gracefully...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Fatalf("Forced shutdown: %v", err)
	}

	sugar.Info("Server stopped")
}

func newLogger(cfg *config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsDevelopment() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
