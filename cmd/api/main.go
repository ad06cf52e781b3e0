package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/geocoder89/recipehub/internal/auth"
	"github.com/geocoder89/recipehub/internal/config"
	"github.com/geocoder89/recipehub/internal/db"
	httpx "github.com/geocoder89/recipehub/internal/http"
	"github.com/geocoder89/recipehub/internal/http/handlers"
	"github.com/geocoder89/recipehub/internal/observability"
	"github.com/geocoder89/recipehub/internal/repo/postgres"
	"github.com/geocoder89/recipehub/internal/security"
	"github.com/geocoder89/recipehub/internal/session"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.OTelEnabled, cfg.OTelEndpoint)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	prom := observability.NewProm()

	pool, err := db.NewPool(ctx, cfg.DBURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	hasher := security.NewBcryptHasher(cfg.BcryptCost, prom.ObservePassword)
	users := postgres.NewUsersRepo(pool, prom)

	created, err := db.EnsureAdminUser(ctx, users, hasher, cfg)
	if err != nil {
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}
	if created {
		log.Info("bootstrap admin created", "email", cfg.AdminEmail)
	}

	checks := map[string]handlers.Check{
		"db": pool.Ping,
	}

	strategy, closeStrategy, err := buildStrategy(ctx, cfg, checks)
	if err != nil {
		log.Error("auth strategy init failed", "err", err)
		os.Exit(1)
	}
	defer closeStrategy()

	var shuttingDown atomic.Bool

	router := httpx.NewRouter(log, httpx.Deps{
		Config:       cfg,
		Strategy:     strategy,
		Hasher:       hasher,
		Users:        users,
		Recipes:      postgres.NewRecipesRepo(pool, prom),
		Ratings:      postgres.NewRatingsRepo(pool, prom),
		Favorites:    postgres.NewFavoritesRepo(pool, prom),
		Cuisines:     postgres.NewCuisinesRepo(pool, prom),
		Ingredients:  postgres.NewIngredientsRepo(pool, prom),
		Owners:       postgres.NewOwnersRepo(pool, prom),
		Prom:         prom,
		Checks:       checks,
		ShuttingDown: shuttingDown.Load,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "auth_strategy", strategy.Name())
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")
	shuttingDown.Store(true)

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

// buildStrategy picks the issuer named by AUTH_STRATEGY. Session stores that
// need a readiness check register it in checks.
func buildStrategy(ctx context.Context, cfg config.Config, checks map[string]handlers.Check) (auth.Strategy, func(), error) {
	if cfg.AuthStrategy == config.StrategyToken {
		return auth.NewTokenStrategy(cfg.JWTSecret, cfg.AccessTTL()), func() {}, nil
	}

	opts := auth.SessionOptions{
		TTL:    cfg.SessionTTL(),
		Secure: cfg.IsProd(),
	}

	if cfg.SessionStore == config.SessionStoreMemory {
		store := session.NewMemoryStore()
		go store.RunSweeper(ctx, time.Minute)

		return auth.NewSessionStrategy(store, []byte(cfg.SessionSecret), opts), func() {}, nil
	}

	rdb := session.NewRedisClient(session.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	store := session.NewRedisStore(rdb)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := store.Ping(pingCtx); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}

	checks["redis"] = store.Ping

	return auth.NewSessionStrategy(store, []byte(cfg.SessionSecret), opts), func() { _ = rdb.Close() }, nil
}
