// Package worker processes export requests taken off the queue.
package worker

import (
	"context"
	"sync/atomic"
	"time"

	"siuang/internal/aggregate"
	"siuang/internal/amqp"
	"siuang/internal/cache"
	applog "siuang/internal/log"
)

// ExportWorker confirms export requests. Delivery is simulated: the
// confirmation is the log record. Redelivered requests are confirmed once.
type ExportWorker struct {
	logger *applog.Logger
	seen   *cache.LRUCache[time.Time]

	confirmed  atomic.Int64
	duplicates atomic.Int64
	rejected   atomic.Int64
}

// NewExportWorker remembers up to dedupeSize request ids for dedupeTTL.
func NewExportWorker(logger *applog.Logger, dedupeSize int, dedupeTTL time.Duration) *ExportWorker {
	if logger == nil {
		logger = applog.Default(applog.ComponentExport)
	}
	return &ExportWorker{
		logger: logger.WithComponent(applog.ComponentExport),
		seen:   cache.NewLRUCache[time.Time](dedupeSize, dedupeTTL),
	}
}

// HandleExportRequest never asks for a requeue on bad input: a request with
// an unusable range is logged and dropped.
func (w *ExportWorker) HandleExportRequest(ctx context.Context, req *amqp.ExportRequest) error {
	if _, err := aggregate.ParseRange(req.StartDate, req.EndDate); err != nil {
		w.rejected.Add(1)
		w.logger.ErrorContext(ctx, "Export request rejected",
			"export_id", req.ID,
			applog.FieldError, err.Error())
		return nil
	}

	if at, ok := w.seen.Get(req.ID); ok {
		w.duplicates.Add(1)
		w.logger.InfoContext(ctx, "Export request already confirmed",
			"export_id", req.ID,
			"confirmed_at", at.Format(time.RFC3339))
		return nil
	}

	w.seen.Set(req.ID, time.Now())
	w.confirmed.Add(1)
	w.logger.InfoContext(ctx, "Export confirmed",
		applog.FieldOperation, applog.OpExport,
		"export_id", req.ID,
		"start_date", req.StartDate,
		"end_date", req.EndDate,
		applog.FieldCategory, req.Category,
		applog.FieldCount, req.Count,
		"requested_at", req.Timestamp.Format(time.RFC3339))
	return nil
}

// Cleaner exposes the dedupe cache to a cache.Manager.
func (w *ExportWorker) Cleaner() cache.Cleaner {
	return w.seen
}

func (w *ExportWorker) Stats() (confirmed, duplicates, rejected int64) {
	return w.confirmed.Load(), w.duplicates.Load(), w.rejected.Load()
}
