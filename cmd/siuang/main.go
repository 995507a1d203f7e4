package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"siuang/internal/backend"
	"siuang/internal/cache"
	"siuang/internal/cli"
	apphttp "siuang/internal/http"
	applog "siuang/internal/log"
	"siuang/internal/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp, os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err.Error())
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", applog.FieldError, err.Error(), "backend", cfg.LedgerBackend)
		os.Exit(1)
	}
	defer func() {
		if res.Cleanup == nil {
			return
		}
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err.Error())
		}
	}()

	summaries := services.NewSummaryCache(cfg.SummaryCacheSize, cfg.SummaryCacheTTL)
	svc := services.NewLedgerService(res.Store, res.Publisher, summaries, logger)

	if entries, err := backend.LoadSeedFile(cfg.SeedFile); err != nil {
		logger.Error("Failed to read seed file", applog.FieldError, err.Error(), "path", cfg.SeedFile)
		os.Exit(1)
	} else if len(entries) > 0 {
		n, err := svc.Seed(ctx, entries)
		if err != nil {
			logger.Warn("Some seed entries were rejected", applog.FieldError, err.Error())
		}
		logger.Info("Session seeded", applog.FieldCount, n, "path", cfg.SeedFile)
	}

	caches := cache.NewManager(logger)
	caches.Register(summaries.Cleaner())

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Currency: cfg.Currency,
		Logger:   logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting siuang server",
			applog.FieldOperation, applog.OpStartup,
			"port", cfg.Port,
			"backend", cfg.LedgerBackend,
			"amqp_enabled", res.Publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return caches.Run(gctx, cfg.CacheCleanupInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
