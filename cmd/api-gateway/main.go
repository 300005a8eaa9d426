package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/greengalaxy/vr-gateway/app"
	"github.com/greengalaxy/vr-gateway/config"
	"github.com/greengalaxy/vr-gateway/internal/observability"
	"github.com/greengalaxy/vr-gateway/routes"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "api-gateway: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.New(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = logger.With(zap.String("environment", cfg.Environment))

	deps, err := app.NewDependencies(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize dependencies", zap.Error(err))
		return err
	}

	srv := newServer(cfg, routes.SetupRoutes(deps))
	return serve(ctx, srv, deps, cfg)
}

func newServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}
}

// serve runs srv until ctx is cancelled, then drains in-flight requests
func serve(ctx context.Context, srv *http.Server, deps *app.Dependencies, cfg *config.Config) error {
	logger := deps.Logger

	logger.Info("api-gateway listening",
		zap.String("addr", srv.Addr),
		zap.String("auth_mode", deps.Capability.Mode()))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", zap.Error(err))
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	if err := deps.Close(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}
