package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anonto42/cinefeed/backend/internal/logging"
	"github.com/anonto42/cinefeed/backend/internal/router"
	"github.com/anonto42/cinefeed/backend/pkg/config"
	"github.com/anonto42/cinefeed/backend/pkg/firebase"
	"github.com/anonto42/cinefeed/backend/validators"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg, foundDotEnv, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if !foundDotEnv {
		logging.Info().Msg("no .env file found, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize databases")
	}
	defer db.CloseDB()

	if err := router.Migrate(db.Postgres); err != nil {
		logging.Fatal().Err(err).Msg("failed to migrate schema")
	}

	deps := router.Deps{
		Config:   cfg,
		Postgres: db.Postgres,
		Mongo:    db.MongoDB,
		Redis:    db.Redis,
	}
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to initialize Firebase")
		}
		deps.Firebase = firebaseApp.AuthClient
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	config.SetupMiddleware(e, cfg.AllowedOrigins, cfg.RateLimit)
	app := router.SetupRoutes(e, deps)

	subscriberDone := make(chan struct{})
	if app.RedisRouter != nil {
		go func() {
			defer close(subscriberDone)
			if err := app.RedisRouter.Run(ctx); err != nil {
				logging.Error().Err(err).Msg("realtime redis subscriber stopped, pushes reach local connections only")
			}
		}()
	} else {
		close(subscriberDone)
	}

	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logging.Info().Str("addr", metricsServer.Addr).Msg("metrics server listening")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("metrics server failed")
		}
	}()

	go func() {
		logging.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("api server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("api server failed")
			stop()
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("api server shutdown")
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("metrics server shutdown")
	}
	app.Hub.Shutdown()
	<-subscriberDone
	app.Dispatcher.Wait()
	logging.Info().Msg("shutdown complete")
}
