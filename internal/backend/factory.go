package backend

import (
	"context"
	"errors"
	"fmt"
	"os"

	"siuang/internal/amqp"
	"siuang/internal/ledger"
	"siuang/internal/ledger/memory"
	applog "siuang/internal/log"
	"siuang/internal/storage"
)

// DefaultFactory implements Factory.
type DefaultFactory struct {
	logger *applog.Logger
}

func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.Default(applog.ComponentBackend)
	}
	return &DefaultFactory{logger: logger.WithComponent(applog.ComponentBackend)}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		res *Result
		err error
	)
	switch config.Type {
	case SQLiteBackend:
		res, err = f.createSQLiteBackend(config)
	case MemoryBackend:
		res = f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	f.attachPublisher(ctx, config, res)
	return res, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized in-memory SQLite ledger", "dsn", config.SQLiteDSN)
	return &Result{Store: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createMemoryBackend() *Result {
	f.logger.Info("Initialized memory ledger")
	return &Result{Store: memory.New()}
}

// attachPublisher connects to AMQP when configured. An unreachable broker
// leaves the ledger usable without events.
func (f *DefaultFactory) attachPublisher(ctx context.Context, config Config, res *Result) {
	if config.AMQPURL == "" {
		f.logger.InfoContext(ctx, "AMQP not configured, ledger events disabled")
		return
	}

	client, err := amqp.NewClient(amqp.Config{
		URL:         config.AMQPURL,
		Exchange:    config.AMQPExchange,
		EventsQueue: config.AMQPEventsQueue,
		ExportQueue: config.AMQPExportQueue,
	}, f.logger)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events",
			applog.FieldError, err.Error())
		return
	}
	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"events_queue", config.AMQPEventsQueue,
		"export_queue", config.AMQPExportQueue)

	res.Publisher = client
	storeCleanup := res.Cleanup
	res.Cleanup = func() error {
		var errs []error
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
		if storeCleanup != nil {
			if err := storeCleanup(); err != nil {
				errs = append(errs, fmt.Errorf("store: %w", err))
			}
		}
		return errors.Join(errs...)
	}
}

// LoadSeedFile reads a session seed file. An empty path yields no entries.
func LoadSeedFile(path string) ([]ledger.SeedEntry, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return ledger.ParseSeed(f)
}
