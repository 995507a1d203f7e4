// Package ledger defines the storage port for the session's transaction
// collection and the seed format shared by its implementations.
package ledger

import (
	"context"
	"errors"

	"siuang/internal/core"
)

var (
	ErrNotFound    = errors.New("transaction not found")
	ErrDuplicateID = errors.New("transaction id already exists")
)

// Ports for ledger adapters.
type (
	Writer interface {
		// Add stores a validated transaction whose ID has already been assigned.
		Add(ctx context.Context, tx core.Transaction) error
		// Replace swaps the stored transaction with the same ID. Returns ErrNotFound
		// when no such transaction exists.
		Replace(ctx context.Context, tx core.Transaction) error
		// Delete removes the transaction by ID. Returns ErrNotFound when unknown.
		Delete(ctx context.Context, id string) error
	}

	Reader interface {
		Get(ctx context.Context, id string) (core.Transaction, error)
		// List returns a snapshot of every transaction, most recently added first.
		List(ctx context.Context) ([]core.Transaction, error)
		// Categories returns the distinct non-empty categories, sorted.
		Categories(ctx context.Context) ([]string, error)
	}

	// Store is the full ledger a backend provides.
	Store interface {
		Writer
		Reader
	}
)
