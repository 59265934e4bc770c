package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"finitefield.org/colorcraft-web/internal/config"
	mw "finitefield.org/colorcraft-web/internal/middleware"
	"finitefield.org/colorcraft-web/internal/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "colorcraft-web: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.DevMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if ephemeral := mw.ConfigureSession(mw.SessionOptions{SigningKey: cfg.Session.SigningKey, Secure: cfg.Session.Secure}); ephemeral {
		logger.Warn("session signing key not configured; using an ephemeral key, sessions will not survive restarts")
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	srv := a.newServer(newRouter(a))

	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	var sweepWG sync.WaitGroup
	sweepWG.Add(1)
	go func() {
		defer sweepWG.Done()
		a.runSweeper(sweepCtx, cfg.UI.SweepInterval)
	}()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Info("web listening",
		zap.String("addr", srv.Addr),
		zap.Bool("devMode", cfg.DevMode),
		zap.String("environment", cfg.Environment),
		zap.Bool("generatorMock", a.generator.Mock()),
	)

	select {
	case err := <-errCh:
		sweepCancel()
		sweepWG.Wait()
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	sweepCancel()
	sweepWG.Wait()
	if err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// runSweeper expires idle result views and unclaimed navigation state.
func (a *app) runSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	logger := a.logger.Named("sweeper")
	for {
		select {
		case <-ticker.C:
			views := a.views.Sweep()
			pending := a.navstate.Sweep()
			if views > 0 || pending > 0 {
				logger.Info("expired state removed", zap.Int("views", views), zap.Int("navstate", pending))
			}
		case <-ctx.Done():
			return
		}
	}
}
