// Package models provides data model definitions for the GrowEasy backend.
package models

import "time"

// Transaction is one financial snapshot recorded for a user.
// Rows are append-only; Synced is the only mutable column and only
// ever moves from false to true.
type Transaction struct {
	ID        int64     `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Savings   float64   `db:"savings" json:"savings"`
	Loans     float64   `db:"loans" json:"loans"`
	Income    float64   `db:"income" json:"income"`
	Expenses  float64   `db:"expenses" json:"expenses"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
	Synced    bool      `db:"synced" json:"synced"`
}

// TableName returns the table name for Transaction.
func (Transaction) TableName() string {
	return "transactions"
}

// StatusCounters summarizes the local store.
type StatusCounters struct {
	UserCount        int `json:"user_count"`
	TransactionCount int `json:"transaction_count"`
	UnsyncedCount    int `json:"unsynced_count"`
}

// HistoryEntry is the caller-facing projection of a Transaction.
type HistoryEntry struct {
	Savings   float64   `json:"savings"`
	Loans     float64   `json:"loans"`
	Income    float64   `json:"income"`
	Expenses  float64   `json:"expenses"`
	Timestamp time.Time `json:"timestamp"`
	Synced    bool      `json:"synced"`
}

// History converts the transaction into a HistoryEntry.
func (t *Transaction) History() HistoryEntry {
	return HistoryEntry{
		Savings:   t.Savings,
		Loans:     t.Loans,
		Income:    t.Income,
		Expenses:  t.Expenses,
		Timestamp: t.Timestamp,
		Synced:    t.Synced,
	}
}
