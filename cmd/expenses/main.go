package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"expenselog/internal/backdrop"
	"expenselog/internal/cli"
	apphttp "expenselog/internal/http"
	applog "expenselog/internal/log"
	"expenselog/internal/session"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	if err := run(logger); err != nil {
		logger.Error("Expense tracker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
}

func run(logger *applog.Logger) error {
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.SignalContext()
	defer stop()

	be := cli.OpenBackend(ctx, logger, cfg)
	defer func() {
		if be.Cleanup != nil {
			if err := be.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", applog.FieldError, err)
			}
		}
	}()

	sess, err := session.Open(ctx, be.Repository, logger)
	if err != nil {
		return err
	}
	logger.Info("Expenses loaded", applog.NewFields().
		WithOperation(applog.OpStartup).
		WithStore(sess.Len(), be.Repository.Location()).
		ToSlice()...)

	// Decorative only: the UI works without it.
	img, err := backdrop.Load(cfg.BackgroundImage)
	if err != nil {
		logger.WithComponent(applog.ComponentBackdrop).Warn("Backdrop unavailable", applog.FieldError, err)
		img = nil
	}

	srv, err := apphttp.NewServer(cfg.Addr(), sess, apphttp.Options{Backdrop: img, Logger: logger})
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting expense tracker", applog.FieldOperation, applog.OpStartup,
			"addr", "http://"+cfg.Addr(), "backend", cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", applog.FieldOperation, applog.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("serve %s: %w", cfg.Addr(), err)
	}
	// Unsaved changes are discarded on exit.
	logger.Info("Server stopped gracefully", applog.FieldCount, sess.Len())
	return nil
}
