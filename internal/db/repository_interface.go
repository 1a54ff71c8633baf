// Package db provides repository interfaces for the local store.
package db

import (
	"context"

	"github.com/groweasy/backend/internal/models"
)

// UserRepository defines operations for user persistence.
type UserRepository interface {
	// UpsertUser inserts or fully replaces the user keyed by UserID.
	UpsertUser(ctx context.Context, user *models.User) error
}

// TransactionRepository defines operations for transaction persistence.
type TransactionRepository interface {
	// InsertTransaction appends a row and returns its local id.
	InsertTransaction(ctx context.Context, txn *models.Transaction) (int64, error)

	// ListRecentTransactions returns a user's rows, newest first.
	ListRecentTransactions(ctx context.Context, userID string, limit int) ([]*models.Transaction, error)
}

// BacklogRepository defines the operations the sync engine drains.
type BacklogRepository interface {
	// ListUnsynced returns rows with synced = false in insertion order.
	ListUnsynced(ctx context.Context) ([]*models.Transaction, error)

	// MarkSynced flips synced for ids in one commit.
	MarkSynced(ctx context.Context, ids []int64) error

	// DeviceID returns the identity stamped on remote copies.
	DeviceID(ctx context.Context) (string, error)
}

// StatsRepository defines status counter queries.
type StatsRepository interface {
	CountAll(ctx context.Context) (*models.StatusCounters, error)
}

// LocalStore groups everything the record service needs from the device store.
type LocalStore interface {
	UserRepository
	TransactionRepository
	BacklogRepository
	StatsRepository
}

// Ensure *Repository implements the interfaces at compile time.
var (
	_ UserRepository        = (*Repository)(nil)
	_ TransactionRepository = (*Repository)(nil)
	_ BacklogRepository     = (*Repository)(nil)
	_ StatsRepository       = (*Repository)(nil)
	_ LocalStore            = (*Repository)(nil)
)
