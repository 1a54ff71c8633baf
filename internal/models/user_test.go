// Package models tests for data model definitions.
package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestTableNames(t *testing.T) {
	if got := (User{}).TableName(); got != "users" {
		t.Errorf("User.TableName() = %q, want users", got)
	}
	if got := (Transaction{}).TableName(); got != "transactions" {
		t.Errorf("Transaction.TableName() = %q, want transactions", got)
	}
}

func TestTransaction_History(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	txn := &Transaction{
		ID:        7,
		UserID:    "u1",
		Savings:   100,
		Loans:     20,
		Income:    300,
		Expenses:  40,
		Timestamp: ts,
	}

	h := txn.History()
	if h.Savings != 100 || h.Loans != 20 || h.Income != 300 || h.Expenses != 40 {
		t.Errorf("History() amounts = %+v", h)
	}
	if !h.Timestamp.Equal(ts) {
		t.Errorf("History().Timestamp = %v, want %v", h.Timestamp, ts)
	}
	if h.Synced {
		t.Error("History().Synced should be false")
	}
}

func TestUser_JSONOmitsEmptyOptionalFields(t *testing.T) {
	data, err := json.Marshal(User{UserID: "u1", Name: "Thandi"})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	s := string(data)
	if strings.Contains(s, "phone") || strings.Contains(s, "group_name") {
		t.Errorf("optional fields should be omitted: %s", s)
	}
}

func TestSyncAuditEntry_Line(t *testing.T) {
	e := SyncAuditEntry{
		Timestamp: time.Date(2024, 5, 6, 7, 8, 9, 123456000, time.UTC),
		Count:     2,
	}

	want := "2024-05-06T07:08:09.123456Z: Synced 2 transactions"
	if got := e.Line(); got != want {
		t.Errorf("Line() = %q, want %q", got, want)
	}
}
