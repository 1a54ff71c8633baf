// Package db provides CRUD repository operations for the local store.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/groweasy/backend/internal/models"
)

// DefaultHistoryLimit is used when a caller asks for a non-positive limit.
const DefaultHistoryLimit = 10

// timeLayout is fixed width so that TEXT ordering matches time ordering.
// Microseconds match what the remote TIMESTAMPTZ column keeps.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// markSyncedChunk bounds the number of bound parameters per UPDATE.
const markSyncedChunk = 500

// Repository is the local store: it owns the authoritative copy of every
// user and transaction recorded on this device.
type Repository struct {
	db  *sql.DB
	now func() time.Time

	// Statements are prepared on first use and cached for reuse
	stmtCache sync.Map // map[string]*sql.Stmt

	deviceMu sync.Mutex
	deviceID string
}

// NewRepository creates a new Repository instance.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// SetClock overrides the time source used to stamp rows.
func (r *Repository) SetClock(now func() time.Time) {
	r.now = now
}

// PrepareStmt gets or creates a prepared statement from cache.
func (r *Repository) PrepareStmt(ctx context.Context, query string) (*sql.Stmt, error) {
	if stmt, ok := r.stmtCache.Load(query); ok {
		return stmt.(*sql.Stmt), nil
	}

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}

	// If another goroutine stored one first, keep theirs.
	actual, loaded := r.stmtCache.LoadOrStore(query, stmt)
	if loaded {
		stmt.Close()
		return actual.(*sql.Stmt), nil
	}
	return stmt, nil
}

// Close closes all cached prepared statements.
func (r *Repository) Close() error {
	var firstErr error
	r.stmtCache.Range(func(key, value interface{}) bool {
		if err := value.(*sql.Stmt).Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		r.stmtCache.Delete(key)
		return true
	})
	return firstErr
}

func (r *Repository) stamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		// rows written by other tools may carry plain RFC 3339
		return time.Parse(time.RFC3339Nano, s)
	}
	return t, nil
}

// =====================================================
// User Operations
// =====================================================

// UpsertUser inserts the user or replaces every column of an existing row
// with the same user_id. CreatedAt is set to the write time.
func (r *Repository) UpsertUser(ctx context.Context, user *models.User) error {
	user.CreatedAt = r.stamp()

	stmt, err := r.PrepareStmt(ctx, `
	INSERT OR REPLACE INTO users (user_id, name, phone, group_name, created_at)
	VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	if _, err := stmt.ExecContext(ctx, user.UserID, user.Name, user.Phone, user.GroupName, formatTime(user.CreatedAt)); err != nil {
		return fmt.Errorf("upsert user %s: %w", user.UserID, err)
	}
	return nil
}

// GetUser retrieves a user by user_id.
func (r *Repository) GetUser(ctx context.Context, userID string) (*models.User, error) {
	stmt, err := r.PrepareStmt(ctx, `
	SELECT user_id, name, phone, group_name, created_at
	FROM users WHERE user_id = ?
	`)
	if err != nil {
		return nil, err
	}

	var user models.User
	var phone, group sql.NullString
	var createdAt string
	if err := stmt.QueryRowContext(ctx, userID).Scan(&user.UserID, &user.Name, &phone, &group, &createdAt); err != nil {
		return nil, err
	}
	user.Phone = phone.String
	user.GroupName = group.String
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("user %s created_at: %w", userID, err)
	}
	return &user, nil
}

// =====================================================
// Transaction Operations
// =====================================================

// InsertTransaction appends a transaction, stamping Timestamp and
// returning the assigned id. The row starts unsynced.
func (r *Repository) InsertTransaction(ctx context.Context, txn *models.Transaction) (int64, error) {
	txn.Timestamp = r.stamp()
	txn.Synced = false

	stmt, err := r.PrepareStmt(ctx, `
	INSERT INTO transactions (user_id, savings, loans, income, expenses, timestamp)
	VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}

	res, err := stmt.ExecContext(ctx, txn.UserID, txn.Savings, txn.Loans, txn.Income, txn.Expenses, formatTime(txn.Timestamp))
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert transaction id: %w", err)
	}
	txn.ID = id
	return id, nil
}

const transactionColumns = `id, user_id, savings, loans, income, expenses, timestamp, synced`

func scanTransactions(rows *sql.Rows) ([]*models.Transaction, error) {
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		var txn models.Transaction
		var ts string
		if err := rows.Scan(&txn.ID, &txn.UserID, &txn.Savings, &txn.Loans, &txn.Income,
			&txn.Expenses, &ts, &txn.Synced); err != nil {
			return nil, err
		}
		t, err := parseTime(ts)
		if err != nil {
			return nil, fmt.Errorf("transaction %d timestamp: %w", txn.ID, err)
		}
		txn.Timestamp = t
		txns = append(txns, &txn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return txns, nil
}

// ListRecentTransactions returns up to limit transactions for userID,
// newest first. Rows sharing a timestamp come back in insertion order.
func (r *Repository) ListRecentTransactions(ctx context.Context, userID string, limit int) ([]*models.Transaction, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	stmt, err := r.PrepareStmt(ctx, `
	SELECT `+transactionColumns+`
	FROM transactions
	WHERE user_id = ?
	ORDER BY timestamp DESC, id ASC
	LIMIT ?
	`)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions for %s: %w", userID, err)
	}
	return scanTransactions(rows)
}

// ListUnsynced returns the backlog in insertion order.
func (r *Repository) ListUnsynced(ctx context.Context) ([]*models.Transaction, error) {
	stmt, err := r.PrepareStmt(ctx, `
	SELECT `+transactionColumns+`
	FROM transactions
	WHERE synced = 0
	ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list unsynced transactions: %w", err)
	}
	return scanTransactions(rows)
}

// MarkSynced flips synced to true for ids in a single SQL transaction.
// Rows that are already synced are left untouched.
func (r *Repository) MarkSynced(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for start := 0; start < len(ids); start += markSyncedChunk {
		end := start + markSyncedChunk
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		args := make([]interface{}, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
		query := "UPDATE transactions SET synced = 1 WHERE synced = 0 AND id IN (" + placeholders + ")"
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("mark synced: %w", err)
		}
	}

	return tx.Commit()
}

// CountAll returns user, transaction and backlog counts.
func (r *Repository) CountAll(ctx context.Context) (*models.StatusCounters, error) {
	stmt, err := r.PrepareStmt(ctx, `
	SELECT
		(SELECT COUNT(*) FROM users),
		(SELECT COUNT(*) FROM transactions),
		(SELECT COUNT(*) FROM transactions WHERE synced = 0)
	`)
	if err != nil {
		return nil, err
	}

	var c models.StatusCounters
	if err := stmt.QueryRowContext(ctx).Scan(&c.UserCount, &c.TransactionCount, &c.UnsyncedCount); err != nil {
		return nil, fmt.Errorf("count rows: %w", err)
	}
	return &c, nil
}

// =====================================================
// Device Identity
// =====================================================

const deviceIDKey = "device_id"

// DeviceID returns this store's stable identity, creating it on first use.
// Remote rows carry it so a re-pushed transaction is recognized.
func (r *Repository) DeviceID(ctx context.Context) (string, error) {
	r.deviceMu.Lock()
	defer r.deviceMu.Unlock()

	if r.deviceID != "" {
		return r.deviceID, nil
	}

	const selectQuery = `SELECT value FROM device_meta WHERE key = ?`
	var id string
	err := r.db.QueryRowContext(ctx, selectQuery, deviceIDKey).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO device_meta (key, value) VALUES (?, ?)`,
			deviceIDKey, uuid.NewString()); err != nil {
			return "", fmt.Errorf("create device id: %w", err)
		}
		err = r.db.QueryRowContext(ctx, selectQuery, deviceIDKey).Scan(&id)
	}
	if err != nil {
		return "", fmt.Errorf("read device id: %w", err)
	}

	r.deviceID = id
	return id, nil
}
