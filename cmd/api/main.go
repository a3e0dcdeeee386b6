package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/riskibarqy/badminton-tournament/internal/app"
	"github.com/riskibarqy/badminton-tournament/internal/config"
	"github.com/riskibarqy/badminton-tournament/internal/observability"
	"github.com/riskibarqy/badminton-tournament/internal/platform/logging"
	"github.com/riskibarqy/badminton-tournament/internal/usecase"
	"github.com/sourcegraph/conc"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel).With("service", cfg.ServiceName, "env", cfg.AppEnv)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	shutdownUptrace, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}
	stopPyroscope, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}

	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageDriver)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	if err := a.Tournaments.Save(shutdownCtx); err != nil && !errors.Is(err, usecase.ErrNoTournament) {
		logger.Warn("final tournament save failed", "error", err)
	}

	var wg conc.WaitGroup
	wg.Go(func() {
		if err := a.Close(); err != nil {
			logger.Warn("close storage failed", "error", err)
		}
	})
	wg.Go(func() {
		if err := shutdownUptrace(shutdownCtx); err != nil {
			logger.Warn("uptrace shutdown failed", "error", err)
		}
	})
	wg.Go(func() {
		if err := stopPyroscope(); err != nil {
			logger.Warn("pyroscope stop failed", "error", err)
		}
	})
	wg.Wait()

	logger.Info("http server stopped")
}
