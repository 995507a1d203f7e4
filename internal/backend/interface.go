// Package backend builds the ledger store and the event publisher selected by
// configuration.
package backend

import (
	"context"

	"siuang/internal/ledger"
	"siuang/internal/services"
)

// CleanupFunc releases what a backend opened.
type CleanupFunc func() error

// Result contains the store, the optional publisher and their cleanup.
type Result struct {
	Store ledger.Store
	// Publisher is nil when AMQP is not configured or unreachable.
	Publisher services.Publisher
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDSN string

	// AMQP, optional for every store
	AMQPURL         string
	AMQPExchange    string
	AMQPEventsQueue string
	AMQPExportQueue string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
