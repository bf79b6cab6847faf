// Package main is the entry point for the Moonwave API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/moonwavetravel/backend/internal/config"
	"github.com/moonwavetravel/backend/internal/db"
	"github.com/moonwavetravel/backend/internal/errmsg"
	"github.com/moonwavetravel/backend/internal/handler"
	"github.com/moonwavetravel/backend/internal/middleware"
	"github.com/moonwavetravel/backend/internal/realtime"
	"github.com/moonwavetravel/backend/internal/repo"
	"github.com/moonwavetravel/backend/internal/service"
	"github.com/moonwavetravel/backend/internal/storage"
	"github.com/moonwavetravel/backend/internal/validation"
	"github.com/moonwavetravel/backend/spec"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// --- Config -----------------------------------------------------------
	// A bad configuration stops the process before any database or Redis call.
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---------------------------------------------------------
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, cfg.DatabaseURL, logger); err != nil {
			return err
		}
	}
	pool, err := db.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	// --- Change feed ------------------------------------------------------
	broker, err := newBroker(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer broker.Close()

	// --- Services ---------------------------------------------------------
	store, err := storage.NewLocalStore(cfg.StorageDir, cfg.PublicBaseURL+"/media")
	if err != nil {
		return err
	}
	repos := service.Repos{
		Trips:         repo.NewTripRepo(pool),
		Days:          repo.NewDayRepo(pool),
		Plans:         repo.NewPlanRepo(pool),
		Collaborators: repo.NewCollaboratorRepo(pool),
	}
	v := validation.New()
	svcLogger := logger.With("component", "service")

	server := handler.NewServer(handler.Deps{
		Trips:          service.NewTripService(repos, store, v, broker, svcLogger),
		Days:           service.NewDayService(repos, v, broker, svcLogger),
		Plans:          service.NewPlanService(repos, v, broker, svcLogger),
		Collaborators:  service.NewCollaboratorService(repos, v, broker, svcLogger),
		Events:         broker,
		Translator:     errmsg.NewTranslator(errmsg.DefaultLocale),
		Logger:         logger,
		AllowedOrigins: cfg.CORSOrigins,
		Checks: map[string]handler.HealthCheck{
			"database": pool.Ping,
			"realtime": broker.Ping,
		},
	})

	// --- Router -----------------------------------------------------------
	router := handler.NewRouter(server, handler.RouterOptions{
		Logger:       logger,
		CORSOrigins:  cfg.CORSOrigins,
		JWTSecret:    cfg.JWTSecret,
		MaxBodyBytes: cfg.MaxBodyBytes,
		Limiter:      middleware.NewRateLimiter(cfg.MutationRate, cfg.MutationBurst),
		MediaDir:     store.Root(),
		OpenAPI:      spec.OpenAPI,
	})

	// --- HTTP Server ------------------------------------------------------
	// No WriteTimeout: WebSocket sessions are long-lived and hijack the connection.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		_ = server.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info("server stopped")
		return nil
	})
	return g.Wait()
}

// newBroker returns a Redis-backed broker when REDIS_URL is set, so several
// instances share one change feed, and an in-process hub otherwise.
func newBroker(ctx context.Context, cfg config.Config, logger *slog.Logger) (realtime.Broker, error) {
	brokerLogger := logger.With("component", "realtime")
	if cfg.RedisURL == "" {
		brokerLogger.Info("using in-process change feed")
		return realtime.NewHub(brokerLogger), nil
	}

	rdb := redis.NewClient(cfg.Redis)
	b, err := realtime.NewRedisBroker(ctx, rdb, cfg.RedisChannel, brokerLogger)
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}
	brokerLogger.Info("using redis change feed", "channel", cfg.RedisChannel)
	return b, nil
}
