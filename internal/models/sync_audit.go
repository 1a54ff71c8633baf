// Package models provides data model definitions for the GrowEasy backend.
package models

import (
	"fmt"
	"time"
)

// AuditTimeLayout is the ISO-8601 layout used for audit lines.
const AuditTimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// SyncAuditEntry records one completed sync pass.
type SyncAuditEntry struct {
	PassID    string    `json:"pass_id"`
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"count"`
}

// Line renders the entry as a single audit log line, without the newline.
func (e SyncAuditEntry) Line() string {
	return fmt.Sprintf("%s: Synced %d transactions", e.Timestamp.Format(AuditTimeLayout), e.Count)
}
