// Package db tests for database migration management.
package db

import (
	"database/sql"
	"strings"
	"testing"
	"testing/fstest"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"V2__add_notes.up.sql":   {Data: []byte("CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT);")},
		"V2__add_notes.down.sql": {Data: []byte("DROP TABLE notes;")},
		"V1__create_items.up.sql": {Data: []byte(
			"CREATE TABLE items (id INTEGER PRIMARY KEY);\nCREATE INDEX idx_items ON items (id);")},
		"V1__create_items.down.sql": {Data: []byte("DROP TABLE items;")},
		"README.md":                 {Data: []byte("not a migration")},
		"Vx__broken.up.sql":         {Data: []byte("garbage")},
	}
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&n); err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	return n == 1
}

// TestCurrentVersion verifies version tracking before and after Up.
func TestCurrentVersion(t *testing.T) {
	db := openMemory(t)
	m := NewMigrator(db, testMigrations())

	if _, err := m.CurrentVersion(); err == nil {
		t.Error("CurrentVersion() should fail before Initialize()")
	}
	if err := m.Initialize(); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}

	version, err := m.CurrentVersion()
	if err != nil || version != 0 {
		t.Fatalf("CurrentVersion() = %d, %v; want 0, nil", version, err)
	}

	if err := m.Up(); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}
	if version, _ = m.CurrentVersion(); version != 2 {
		t.Errorf("CurrentVersion() after Up = %d, want 2", version)
	}
}

// TestUp_ordersAndRecords verifies files apply in version order with checksums.
func TestUp_ordersAndRecords(t *testing.T) {
	db := openMemory(t)
	m := NewMigrator(db, testMigrations())
	if err := m.Initialize(); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	if err := m.Up(); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}

	applied, err := m.GetAppliedMigrations()
	if err != nil {
		t.Fatalf("GetAppliedMigrations() failed: %v", err)
	}
	if len(applied) != 2 {
		t.Fatalf("applied = %d, want 2", len(applied))
	}
	if applied[0].Version != 1 || applied[0].Description != "create_items" {
		t.Errorf("first migration = %+v", applied[0])
	}
	for _, mig := range applied {
		if len(mig.Checksum) != 64 || strings.Trim(mig.Checksum, "0123456789abcdef") != "" {
			t.Errorf("checksum %q is not hex sha256", mig.Checksum)
		}
	}

	if !tableExists(t, db, "items") || !tableExists(t, db, "notes") {
		t.Error("migration tables were not created")
	}

	// second run is a no-op
	if err := m.Up(); err != nil {
		t.Errorf("second Up() failed: %v", err)
	}
}

// TestDown verifies rollback of the latest version only.
func TestDown(t *testing.T) {
	db := openMemory(t)
	m := NewMigrator(db, testMigrations())
	if err := m.Initialize(); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}

	if err := m.Down(); err == nil {
		t.Error("Down() with nothing applied should fail")
	}

	if err := m.Up(); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}
	if err := m.Down(); err != nil {
		t.Fatalf("Down() failed: %v", err)
	}

	if tableExists(t, db, "notes") {
		t.Error("notes table should be dropped")
	}
	if !tableExists(t, db, "items") {
		t.Error("items table should remain")
	}
	if v, _ := m.CurrentVersion(); v != 1 {
		t.Errorf("CurrentVersion() after Down = %d, want 1", v)
	}
}

// TestUp_badSQL verifies a failing migration is not recorded.
func TestUp_badSQL(t *testing.T) {
	db := openMemory(t)
	m := NewMigrator(db, fstest.MapFS{
		"V1__bad.up.sql": {Data: []byte("CREATE TABLE (;")},
	})
	if err := m.Initialize(); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}

	if err := m.Up(); err == nil {
		t.Fatal("Up() should fail on invalid SQL")
	}
	if v, _ := m.CurrentVersion(); v != 0 {
		t.Errorf("CurrentVersion() = %d, want 0", v)
	}
}

func TestMigrations_embedded(t *testing.T) {
	m := NewMigrator(nil, Migrations())
	files, err := m.upFiles()
	if err != nil {
		t.Fatalf("upFiles() failed: %v", err)
	}
	if len(files) < 2 || files[0].version != 1 {
		t.Errorf("embedded migrations = %+v", files)
	}
}
