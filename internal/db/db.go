// Package db provides the on-device SQLite store that always accepts writes.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	apperrors "github.com/groweasy/backend/internal/errors"
)

// FileName is the database file created inside the data directory.
const FileName = "groweasy.db"

// DB wraps the sql.DB with GrowEasy-specific configuration.
type DB struct {
	*sql.DB
}

// Open opens the local SQLite database inside dataDir.
// The database is opened with:
// - WAL mode so readers never block the single writer
// - a busy timeout so concurrent handlers wait instead of failing
// - one open connection, serializing all writes
func Open(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, FileName)

	// modernc.org/sqlite is pure Go, no CGO
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support multiple writers
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	return &DB{db}, nil
}

// Migrate brings the schema up to the latest embedded migration.
func (db *DB) Migrate() error {
	m := NewMigrator(db.DB, Migrations())
	if err := m.Initialize(); err != nil {
		return apperrors.Wrap(apperrors.ErrMigration, "initialize local migrations", err)
	}
	if err := m.Up(); err != nil {
		return apperrors.Wrap(apperrors.ErrMigration, "migrate local store", err)
	}
	return nil
}

// Rollback reverts the most recent migration and returns the version the
// schema is left at.
func (db *DB) Rollback() (int, error) {
	m := NewMigrator(db.DB, Migrations())
	if err := m.Initialize(); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrMigration, "initialize local migrations", err)
	}
	if err := m.Down(); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrMigration, "roll back local store", err)
	}
	version, err := m.CurrentVersion()
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrMigration, "read local schema version", err)
	}
	return version, nil
}

// SchemaVersion reports the latest applied local migration, 0 when none.
func (db *DB) SchemaVersion() (int, error) {
	m := NewMigrator(db.DB, Migrations())
	if err := m.Initialize(); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrMigration, "initialize local migrations", err)
	}
	return m.CurrentVersion()
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}
