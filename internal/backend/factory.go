package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"shortlog/internal/amqp"
	"shortlog/internal/ledger"
	"shortlog/internal/ledger/kv"
	"shortlog/internal/ledger/memory"
	"shortlog/internal/report/sheets"
	"shortlog/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend builds the ledger store for config.Type and attaches the
// optional AMQP client and Sheets publisher. A broker that cannot be
// reached is logged and skipped; a broken Sheets configuration is an error.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var cleanups []CleanupFunc
	store, closeStore, err := f.createStore(config)
	if err != nil {
		return nil, err
	}
	if closeStore != nil {
		cleanups = append(cleanups, closeStore)
	}

	res := &Result{Store: store}

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without sync", "error", err)
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			res.AMQP = client
			cleanups = append(cleanups, client.Close)
		}
	}

	if config.GoogleSpreadsheetID != "" {
		pub, err := sheets.New(ctx, sheets.Options{
			SpreadsheetID:   config.GoogleSpreadsheetID,
			CredentialsJSON: config.GoogleServiceAccountJSON,
			CredentialsFile: config.GoogleServiceAccountFile,
			TabPrefix:       config.ReportSheetPrefix,
		})
		if err != nil {
			_ = runCleanups(cleanups)
			return nil, fmt.Errorf("failed to initialize Google Sheets publisher: %w", err)
		}
		res.Publisher = pub
		f.logger.InfoContext(ctx, "Initialized Google Sheets publisher", "spreadsheet_id", config.GoogleSpreadsheetID)
	}

	res.Cleanup = func() error { return runCleanups(cleanups) }

	f.logger.InfoContext(ctx, "Initialized backend",
		"type", config.Type.String(),
		"amqp_enabled", res.AMQP != nil,
		"sheets_enabled", res.Publisher != nil)
	return res, nil
}

func (f *DefaultFactory) createStore(config Config) (ledger.Store, CleanupFunc, error) {
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite store", "db_path", config.SQLiteDBPath)
		return repo, repo.Close, nil

	case FileBackend:
		fkv, err := kv.NewFileKV(config.DataDirectory)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize file store: %w", err)
		}
		f.logger.Info("Initialized file store", "data_directory", config.DataDirectory)
		return kv.NewStore(fkv), nil, nil

	case MemoryBackend:
		dataDir := config.DataDirectory
		if dataDir == "" {
			dataDir = "data"
		}
		f.logger.Info("Initialized memory store", "data_directory", dataDir)
		return memory.NewFromFiles(dataDir), nil, nil
	}
	return nil, nil, fmt.Errorf("unsupported backend type: %s", config.Type)
}

// runCleanups closes resources in reverse order of creation.
func runCleanups(fns []CleanupFunc) error {
	var errs []error
	for i := len(fns) - 1; i >= 0; i-- {
		if err := fns[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
