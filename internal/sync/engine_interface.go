// Package sync provides synchronization interfaces and implementations.
package sync

import (
	"context"
	"time"

	"github.com/groweasy/backend/internal/models"
)

// SyncEngineInterface defines the interface for sync engine operations.
// This interface allows for mocking in tests and alternative implementations.
type SyncEngineInterface interface {
	// Sync performs one reconciliation pass and blocks until it completes,
	// fails or is skipped.
	Sync(ctx context.Context) (*SyncResult, error)

	// Status returns the current sync status.
	Status() SyncStatus

	// LastSync returns the end time of the last pass that left no backlog.
	LastSync() *time.Time

	// LastError returns the error of the last pass, if it failed.
	LastError() error

	// LastResult returns a copy of the last pass result.
	LastResult() *SyncResult
}

// RemoteStore is the authority that receives mirrored rows.
type RemoteStore interface {
	// UpsertUser inserts the user or overwrites its fields unconditionally.
	UpsertUser(ctx context.Context, user *models.User) error

	// InsertTransaction appends a copy of txn authored by origin.
	InsertTransaction(ctx context.Context, origin string, txn *models.Transaction) error
}

// AuditLog receives one entry per completed sync pass.
type AuditLog interface {
	Append(entry models.SyncAuditEntry) error
}

var _ SyncEngineInterface = (*SyncEngine)(nil)
