// Package storage keeps the ledger in an in-memory SQLite database. Nothing
// is written to disk: the database lives as long as the repository is open.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"siuang/internal/core"
	"siuang/internal/ledger"
	applog "siuang/internal/log"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

// NewSQLiteRepository opens dsn, which must name an in-memory database, and
// applies the schema.
func NewSQLiteRepository(dsn string) (*SQLiteRepository, error) {
	if !IsMemoryDSN(dsn) {
		return nil, fmt.Errorf("sqlite dsn %q is not in-memory", dsn)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// Every connection to ":memory:" is a fresh database, so pin a single one
	// and never let it expire.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

// IsMemoryDSN reports whether dsn points at an in-memory database.
func IsMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping is used by the readiness probe.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Add(ctx context.Context, tx core.Transaction) error {
	if err := tx.ValidateStored(); err != nil {
		return err
	}
	n, err := r.queries.CreateTransaction(ctx, paramsFor(tx))
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ledger.ErrDuplicateID, tx.ID)
	}

	slog.DebugContext(ctx, "Transaction stored",
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldTransactionID, tx.ID,
		applog.FieldAmountMinor, tx.Amount.Cents,
		applog.FieldKind, tx.Kind())
	return nil
}

func (r *SQLiteRepository) Replace(ctx context.Context, tx core.Transaction) error {
	if err := tx.ValidateStored(); err != nil {
		return err
	}
	n, err := r.queries.UpdateTransaction(ctx, paramsFor(tx))
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ledger.ErrNotFound, tx.ID)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	n, err := r.queries.DeleteTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ledger.ErrNotFound, id)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("%w: %s", ledger.ErrNotFound, id)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return row.toCore()
}

func (r *SQLiteRepository) List(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := row.toCore()
		if err != nil {
			// The schema cannot produce this; keep the rest of the ledger usable.
			slog.WarnContext(ctx, "Skipping unreadable transaction row",
				applog.FieldComponent, applog.ComponentStorage,
				applog.FieldTransactionID, row.ID,
				applog.FieldError, err.Error())
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (r *SQLiteRepository) Categories(ctx context.Context) ([]string, error) {
	cats, err := r.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func paramsFor(tx core.Transaction) CreateTransactionParams {
	return CreateTransactionParams{
		ID:          tx.ID,
		Date:        tx.Date.String(),
		Category:    tx.Category,
		AmountMinor: tx.Amount.Cents,
		Note:        tx.Note,
		IsIncome:    tx.IsIncome,
	}
}

func (t Transaction) toCore() (core.Transaction, error) {
	d, err := core.ParseDate(t.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		ID:       t.ID,
		Date:     d,
		Category: t.Category,
		Amount:   core.Money{Cents: t.AmountMinor},
		Note:     t.Note,
		IsIncome: t.IsIncome,
	}, nil
}

var _ ledger.Store = (*SQLiteRepository)(nil)
