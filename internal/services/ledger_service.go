// Package services ties the ledger store, the aggregation engine and the
// event publisher together behind the operations the API exposes.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"siuang/internal/aggregate"
	"siuang/internal/amqp"
	"siuang/internal/core"
	"siuang/internal/ledger"
	applog "siuang/internal/log"
)

// Publisher receives ledger events and export requests. Publishing is best
// effort: failures are logged and never fail the ledger operation.
type Publisher interface {
	PublishTransactionEvent(ctx context.Context, ev *amqp.TransactionEvent) error
	PublishExportRequest(ctx context.Context, req *amqp.ExportRequest) error
}

// NewTransaction is the user input for a new or replaced transaction.
type NewTransaction struct {
	Date     core.Date
	Category string
	Amount   core.Money
	Note     string
	IsIncome bool
}

func (n NewTransaction) withID(id string) core.Transaction {
	return core.Transaction{
		ID:       id,
		Date:     n.Date,
		Category: strings.TrimSpace(n.Category),
		Amount:   n.Amount,
		Note:     strings.TrimSpace(n.Note),
		IsIncome: n.IsIncome,
	}
}

// ExportResult is the filtered subset together with the request handed to
// the export collaborator.
type ExportResult struct {
	Transactions []core.Transaction
	Request      *amqp.ExportRequest
	Published    bool
}

type LedgerService struct {
	store     ledger.Store
	publisher Publisher
	summaries *SummaryCache
	logger    *applog.Logger
	newID     func() (string, error)
}

// NewLedgerService wires the service. publisher and summaries may be nil.
func NewLedgerService(store ledger.Store, publisher Publisher, summaries *SummaryCache, logger *applog.Logger) *LedgerService {
	if logger == nil {
		logger = applog.Default(applog.ComponentLedger)
	}
	return &LedgerService{
		store:     store,
		publisher: publisher,
		summaries: summaries,
		logger:    logger.WithComponent(applog.ComponentLedger),
		newID:     newTransactionID,
	}
}

func newTransactionID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate transaction id: %w", err)
	}
	return id.String(), nil
}

// Add validates in, assigns a fresh id and stores it.
func (s *LedgerService) Add(ctx context.Context, in NewTransaction) (core.Transaction, error) {
	id, err := s.newID()
	if err != nil {
		return core.Transaction{}, err
	}
	tx := in.withID(id)
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.Add(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction added", applog.NewFields().
		WithOperation(applog.OpCreate).
		WithTransaction(tx.ID, tx.Kind(), tx.Amount.Cents, tx.Category).ToSlice()...)
	s.publishEvent(ctx, amqp.EventCreated, tx)
	return tx, nil
}

// Edit replaces the transaction with the given id.
func (s *LedgerService) Edit(ctx context.Context, id string, in NewTransaction) (core.Transaction, error) {
	if strings.TrimSpace(id) == "" {
		return core.Transaction{}, core.ErrEmptyID
	}
	tx := in.withID(id)
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.Replace(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("replace transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction updated", applog.NewFields().
		WithOperation(applog.OpUpdate).
		WithTransaction(tx.ID, tx.Kind(), tx.Amount.Cents, tx.Category).ToSlice()...)
	s.publishEvent(ctx, amqp.EventUpdated, tx)
	return tx, nil
}

// Delete removes the transaction with the given id.
func (s *LedgerService) Delete(ctx context.Context, id string) error {
	tx, err := s.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldTransactionID, id)
	s.publishEvent(ctx, amqp.EventDeleted, tx)
	return nil
}

func (s *LedgerService) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.store.Get(ctx, id)
}

// Transactions is the daily view: raw transactions inside the focus, sorted
// by date.
func (s *LedgerService) Transactions(ctx context.Context, o aggregate.SortOrder, f aggregate.Focus) ([]core.Transaction, error) {
	txs, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	in := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.MatchesDate(tx.Date) {
			in = append(in, tx)
		}
	}
	return aggregate.SortDaily(in, o), nil
}

// Summaries aggregates the whole ledger and then keeps the buckets inside the
// focus. Daily is not an aggregated view; use Transactions.
func (s *LedgerService) Summaries(ctx context.Context, g aggregate.Granularity, o aggregate.SortOrder, f aggregate.Focus) ([]aggregate.Summary, error) {
	txs, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	all, err := s.summarize(ctx, txs, g, o)
	if err != nil {
		return nil, err
	}
	return aggregate.FilterSummaries(all, f), nil
}

func (s *LedgerService) summarize(ctx context.Context, txs []core.Transaction, g aggregate.Granularity, o aggregate.SortOrder) ([]aggregate.Summary, error) {
	if s.summaries == nil {
		return aggregate.Summarize(txs, g, o)
	}
	out, hit, err := s.summaries.Summarize(txs, g, o)
	if err != nil {
		return nil, err
	}
	fields := applog.NewFields().WithOperation(applog.OpSummarize).WithView(string(g), string(o))
	fields[applog.FieldCacheHit] = hit
	s.logger.DebugContext(ctx, "Summaries computed", fields.ToSlice()...)
	return out, nil
}

// Totals returns income, expense and balance for a view. Daily totals sum the
// raw transactions; the other views sum their summaries, so both agree.
func (s *LedgerService) Totals(ctx context.Context, g aggregate.Granularity, f aggregate.Focus) (aggregate.Totals, error) {
	txs, err := s.store.List(ctx)
	if err != nil {
		return aggregate.Totals{}, err
	}
	if g == aggregate.Daily {
		return aggregate.TransactionTotals(txs, f), nil
	}
	all, err := s.summarize(ctx, txs, g, aggregate.Latest)
	if err != nil {
		return aggregate.Totals{}, err
	}
	return aggregate.SummaryTotals(all, f), nil
}

// Export filters the ledger by range and category and hands the request to
// the export collaborator. The subset is returned even when publishing fails.
func (s *LedgerService) Export(ctx context.Context, start, end, category string) (ExportResult, error) {
	txs, err := s.store.List(ctx)
	if err != nil {
		return ExportResult{}, err
	}
	subset, err := aggregate.FilterForExport(txs, start, end, category)
	if err != nil {
		return ExportResult{}, err
	}

	res := ExportResult{
		Transactions: subset,
		Request:      amqp.NewExportRequest(strings.TrimSpace(start), strings.TrimSpace(end), strings.TrimSpace(category), len(subset)),
	}
	if s.publisher == nil {
		s.logger.WarnContext(ctx, "Event publisher not available, export request not sent",
			applog.FieldOperation, applog.OpExport)
	} else if err := s.publisher.PublishExportRequest(ctx, res.Request); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish export request",
			applog.FieldOperation, applog.OpExport,
			applog.FieldError, err.Error())
	} else {
		res.Published = true
	}

	s.logger.InfoContext(ctx, "Export prepared",
		applog.FieldOperation, applog.OpExport,
		applog.FieldCount, len(subset),
		"published", res.Published)
	return res, nil
}

func (s *LedgerService) Categories(ctx context.Context) ([]string, error) {
	return s.store.Categories(ctx)
}

// Ready reports whether the store answers. Stores without a Ping are always
// ready.
func (s *LedgerService) Ready(ctx context.Context) error {
	if p, ok := s.store.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Seed stores pre-parsed transactions, assigning ids where missing.
func (s *LedgerService) Seed(ctx context.Context, entries []ledger.SeedEntry) (int, error) {
	var errs []error
	n := 0
	for _, e := range entries {
		tx := e.Transaction
		if tx.ID == "" {
			id, err := s.newID()
			if err != nil {
				return n, err
			}
			tx.ID = id
		}
		if err := s.store.Add(ctx, tx); err != nil {
			errs = append(errs, fmt.Errorf("seed line %d: %w", e.Line, err))
			continue
		}
		n++
	}
	return n, errors.Join(errs...)
}

func (s *LedgerService) publishEvent(ctx context.Context, t amqp.EventType, tx core.Transaction) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "Event publisher not available, skipping event",
			applog.FieldTransactionID, tx.ID)
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, amqp.NewTransactionEvent(t, tx)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish transaction event",
			applog.FieldTransactionID, tx.ID,
			applog.FieldError, err.Error())
	}
}
