package main

import (
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"siuang/internal/amqp"
	"siuang/internal/cache"
	"siuang/internal/cli"
	applog "siuang/internal/log"
	"siuang/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentExport, os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	client, err := amqp.NewClient(amqp.Config{
		URL:         cfg.AMQPURL,
		Exchange:    cfg.AMQPExchange,
		EventsQueue: cfg.AMQPEventsQueue,
		ExportQueue: cfg.AMQPExportQueue,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err.Error())
		os.Exit(1)
	}
	defer client.Close()

	exports := worker.NewExportWorker(logger, cfg.SummaryCacheSize, 24*time.Hour)
	caches := cache.NewManager(logger)
	caches.Register(exports.Cleaner())

	logger.Info("Starting siuang-export-worker",
		applog.FieldOperation, applog.OpStartup,
		"queue", cfg.AMQPExportQueue)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeExportRequests(gctx, exports.HandleExportRequest)
	})
	g.Go(func() error {
		return caches.Run(gctx, cfg.CacheCleanupInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, ctx.Err()) {
		logger.Error("Export worker stopped with error", applog.FieldError, err.Error())
		os.Exit(1)
	}

	confirmed, duplicates, rejected := exports.Stats()
	logger.Info("Export worker stopped",
		"confirmed", confirmed,
		"duplicates", duplicates,
		"rejected", rejected)
}
