// Package remote provides the PostgreSQL mirror that receives locally
// recorded users and transactions.
package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/groweasy/backend/internal/connectivity"
	apperrors "github.com/groweasy/backend/internal/errors"
	"github.com/groweasy/backend/internal/models"
	syncpkg "github.com/groweasy/backend/internal/sync"
)

// Ensure Store satisfies the interfaces it is wired into at compile time.
var (
	_ syncpkg.RemoteStore = (*Store)(nil)
	_ connectivity.Probe  = (*Store)(nil)
)

// Store provides Postgres-backed persistence for mirrored rows.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store. The pool connects lazily, so a device that starts
// offline still gets a usable Store whose calls fail until the network returns.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MinConns = 0

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks that the remote database answers.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return apperrors.Wrap(apperrors.ErrRemoteUnavailable, "ping remote store", err)
	}
	return nil
}

// Reachable lets the Store act as a connectivity probe for itself.
func (s *Store) Reachable(ctx context.Context) bool {
	return s.Ping(ctx) == nil
}

// UpsertUser writes the user, overwriting name, phone, group_name and
// created_at of an existing row unconditionally.
func (s *Store) UpsertUser(ctx context.Context, user *models.User) error {
	const query = `
	INSERT INTO users (user_id, name, phone, group_name, created_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (user_id) DO UPDATE SET
		name = EXCLUDED.name,
		phone = EXCLUDED.phone,
		group_name = EXCLUDED.group_name,
		created_at = EXCLUDED.created_at
	`
	_, err := s.pool.Exec(ctx, query, user.UserID, user.Name, user.Phone, user.GroupName, user.CreatedAt)
	if err != nil {
		return writeError("upsert user "+user.UserID, err)
	}
	return nil
}

// InsertTransaction appends a copy of txn. The timestamp is carried as
// recorded on the device. (origin, txn.ID) identifies the copy, so pushing
// the same local row twice leaves a single remote row.
func (s *Store) InsertTransaction(ctx context.Context, origin string, txn *models.Transaction) error {
	const query = `
	INSERT INTO transactions (user_id, savings, loans, income, expenses, "timestamp", origin_device, local_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (origin_device, local_id) DO NOTHING
	`
	_, err := s.pool.Exec(ctx, query, txn.UserID, txn.Savings, txn.Loans, txn.Income, txn.Expenses,
		txn.Timestamp, origin, txn.ID)
	if err != nil {
		return writeError(fmt.Sprintf("insert transaction %d", txn.ID), err)
	}
	return nil
}

// CountTransactions returns the number of mirrored rows from origin.
func (s *Store) CountTransactions(ctx context.Context, origin string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE origin_device = $1`, origin).Scan(&n)
	if err != nil {
		return 0, writeError("count transactions", err)
	}
	return n, nil
}

// GetTransaction reads the copy of a local row pushed from origin.
func (s *Store) GetTransaction(ctx context.Context, origin string, localID int64) (*models.Transaction, error) {
	txn := models.Transaction{ID: localID}
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, savings, loans, income, expenses, "timestamp" FROM transactions
		WHERE origin_device = $1 AND local_id = $2`, origin, localID).
		Scan(&txn.UserID, &txn.Savings, &txn.Loans, &txn.Income, &txn.Expenses, &txn.Timestamp)
	if err != nil {
		return nil, writeError(fmt.Sprintf("get transaction %d", localID), err)
	}
	txn.Timestamp = txn.Timestamp.UTC()
	return &txn, nil
}

// GetUser reads a mirrored user profile.
func (s *Store) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, name, phone, group_name, created_at FROM users WHERE user_id = $1`, userID).
		Scan(&u.UserID, &u.Name, &u.Phone, &u.GroupName, &u.CreatedAt)
	if err != nil {
		return nil, writeError("get user "+userID, err)
	}
	return &u, nil
}

func writeError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.Wrap(apperrors.ErrNotFound, op, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return apperrors.Wrap(apperrors.ErrRemoteWrite, fmt.Sprintf("%s (sqlstate %s)", op, pgErr.Code), err)
	}
	return apperrors.Wrap(apperrors.ErrRemoteUnavailable, op, err)
}
