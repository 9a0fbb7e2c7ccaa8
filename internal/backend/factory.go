package backend

import (
	"context"
	"fmt"
	"io"

	"financeflow/internal/amqp"
	applog "financeflow/internal/log"
	"financeflow/internal/repository"
	"financeflow/internal/services"
	"financeflow/internal/session"
	"financeflow/internal/storage"
	"financeflow/internal/storage/memory"
)

type storeCloser interface {
	storage.Store
	io.Closer
}

// DefaultFactory wires a store, an optional publisher and the repositories
type DefaultFactory struct {
	logger *applog.Logger
	// dial is swapped out in tests
	dial func(url, exchange, queue string) (*amqp.Client, error)
}

func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
		dial:   amqp.NewClient,
	}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, err := f.createStore(config)
	if err != nil {
		return nil, err
	}

	closers := []io.Closer{store}
	var publisher services.Publisher
	if config.AMQPURL != "" {
		client, err := f.dial(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without ledger events", "error", err)
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			queue := services.NewEventQueue(client, 0)
			publisher = queue
			// the queue drains before the broker connection goes away
			closers = append(closers, queue, client)
		}
	}

	ledger := services.NewLedgerService(
		repository.NewExpenseRepository(store),
		repository.NewBudgetRepository(store),
		session.NewManager(store),
		publisher,
		closers...,
	)

	f.logger.InfoContext(ctx, "Initialized backend",
		"type", config.Type.String(),
		"events_enabled", publisher != nil)

	return &BackendResult{
		Ledger:  ledger,
		Store:   store,
		Cleanup: ledger.Close,
	}, nil
}

func (f *DefaultFactory) createStore(config Config) (storeCloser, error) {
	switch config.Type {
	case SQLiteBackend:
		s, err := storage.NewSQLiteStore(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		f.logger.Info("Opened SQLite store", "db_path", config.SQLiteDBPath, "schema_version", s.SchemaVersion())
		return s, nil
	case MemoryBackend:
		dir := config.DataDirectory
		if dir == "" {
			dir = "data"
		}
		f.logger.Info("Using in-memory store", "data_directory", dir)
		return memory.NewFromDir(dir), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
