package backend

import (
	"context"
	"slices"

	"shortlog/internal/amqp"
	"shortlog/internal/ledger"
	"shortlog/internal/report"
	"shortlog/internal/services"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result bundles the ledger store with the optional integrations built
// alongside it. AMQP and Publisher are nil when not configured.
type Result struct {
	Store     ledger.Store
	AMQP      *amqp.Client
	Publisher report.Publisher
	Cleanup   CleanupFunc
}

// Bus returns the AMQP client as a sync publisher, or nil when there is
// no broker. A nil *amqp.Client must not leak into the interface.
func (r *Result) Bus() services.SyncPublisher {
	if r.AMQP == nil {
		return nil
	}
	return r.AMQP
}

// Close runs the cleanup function if any.
func (r *Result) Close() error {
	if r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// File and memory backends
	DataDirectory string

	// SQLite
	SQLiteDBPath string

	// AMQP, optional for every backend
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets publisher, optional
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	ReportSheetPrefix        string
}

// BackendType represents the type of ledger store
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	return slices.Contains(GetBackendTypes(), bt)
}
