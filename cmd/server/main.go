package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/oyvindhk/strava-retitler/pkg/bootstrap"
	"github.com/oyvindhk/strava-retitler/pkg/infrastructure/sentry"
	"github.com/oyvindhk/strava-retitler/pkg/webhook"
)

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	logger := bootstrap.NewLogger("strava-retitler")
	cfg := bootstrap.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sentry.Init(sentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
		ServerName:  "strava-retitler",
	}, logger); err != nil {
		logger.Error("Sentry init failed, continuing without error tracking", "error", err)
	}
	defer sentry.Flush(2 * time.Second)

	svc := bootstrap.NewService(ctx, cfg, logger)

	h := &webhook.Handler{
		VerifyToken: cfg.VerifyToken,
		Tokens:      svc.Tokens,
		Guard:       svc.Guard,
		Activities:  svc.Strava,
		Selector:    svc.Selector,
		Generator:   svc.Generator,
		Logger:      logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Mount("/", h.Routes())

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed", "error", err)
		}
	}()

	logger.Info("Server started", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server failed", "error", err)
	}
	logger.Info("Server stopped")
}
