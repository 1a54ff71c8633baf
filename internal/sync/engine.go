// Package sync pushes the local backlog of unsynced transactions to the
// remote store.
package sync

import (
	"context"
	"errors"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/google/uuid"

	"github.com/groweasy/backend/internal/connectivity"
	"github.com/groweasy/backend/internal/db"
	apperrors "github.com/groweasy/backend/internal/errors"
	"github.com/groweasy/backend/internal/logging"
	"github.com/groweasy/backend/internal/models"
	"github.com/groweasy/backend/internal/notify"
)

// SyncStatus represents the current sync status.
type SyncStatus string

const (
	SyncStatusIdle    SyncStatus = "idle"
	SyncStatusSyncing SyncStatus = "syncing"
	SyncStatusFailed  SyncStatus = "failed"
)

// Outcome is the caller-visible result of one pass.
type Outcome string

const (
	OutcomeSkipped       Outcome = "skipped"
	OutcomeAlreadySynced Outcome = "already_synced"
	OutcomeSynced        Outcome = "synced"
	OutcomeFailed        Outcome = "failed"
)

// SyncResult represents the result of a sync pass.
type SyncResult struct {
	PassID    string        `json:"pass_id"`
	Outcome   Outcome       `json:"outcome"`
	Count     int           `json:"count"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
}

// Options configures a SyncEngine. The zero value is usable.
type Options struct {
	// Timeout bounds a whole pass; zero means only the caller's deadline applies.
	Timeout time.Duration

	// Audit receives one entry per successful pass.
	Audit AuditLog

	// Publisher is told about every successful pass.
	Publisher notify.Publisher

	// Clock overrides time.Now.
	Clock func() time.Time
}

// SyncEngine runs one-shot reconciliation passes. It is the only writer of
// the synced flag.
type SyncEngine struct {
	local     db.BacklogRepository
	remote    RemoteStore
	probe     connectivity.Probe
	audit     AuditLog
	publisher notify.Publisher
	timeout   time.Duration
	now       func() time.Time

	// passMu serializes passes; mu guards the fields below.
	passMu     stdsync.Mutex
	mu         stdsync.RWMutex
	status     SyncStatus
	lastSync   *time.Time
	lastErr    error
	lastResult *SyncResult
}

// NewSyncEngine creates a new SyncEngine. A nil remote or probe makes every
// pass report skipped.
func NewSyncEngine(local db.BacklogRepository, remote RemoteStore, probe connectivity.Probe, opts *Options) *SyncEngine {
	if opts == nil {
		opts = &Options{}
	}
	e := &SyncEngine{
		local:     local,
		remote:    remote,
		probe:     probe,
		audit:     opts.Audit,
		publisher: opts.Publisher,
		timeout:   opts.Timeout,
		now:       opts.Clock,
		status:    SyncStatusIdle,
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.publisher == nil {
		e.publisher = notify.Noop{}
	}
	return e
}

// Status returns the current sync status.
func (e *SyncEngine) Status() SyncStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

// LastSync returns the end time of the last pass that left no backlog.
func (e *SyncEngine) LastSync() *time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastSync
}

// LastError returns the last sync error.
func (e *SyncEngine) LastError() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastErr
}

// LastResult returns a copy of the last pass result, or nil before the first pass.
func (e *SyncEngine) LastResult() *SyncResult {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.lastResult == nil {
		return nil
	}
	r := *e.lastResult
	return &r
}

// Sync performs one pass:
//  1. offline or no remote: skipped
//  2. empty backlog: already_synced
//  3. push every unsynced row in insertion order
//  4. all pushed: mark them synced in one commit, audit, notify
//  5. any push failed: nothing is marked and the error is returned
func (e *SyncEngine) Sync(ctx context.Context) (*SyncResult, error) {
	e.passMu.Lock()
	defer e.passMu.Unlock()

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	result := &SyncResult{
		PassID:    uuid.NewString(),
		StartTime: e.now(),
	}
	e.setStatus(SyncStatusSyncing)

	err := e.run(ctx, result)

	result.EndTime = e.now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Error = err.Error()
	}
	e.finish(result, err)

	fields := logging.Fields{
		"pass_id":  result.PassID,
		"outcome":  result.Outcome,
		"count":    result.Count,
		"duration": result.Duration.String(),
	}
	if err != nil {
		logging.Error("Sync pass failed", err, fields)
	} else {
		logging.Info("Sync pass finished", fields)
	}

	return result, err
}

func (e *SyncEngine) run(ctx context.Context, result *SyncResult) error {
	if e.remote == nil || e.probe == nil {
		result.Outcome = OutcomeSkipped
		return nil
	}
	if !e.probe.Reachable(ctx) {
		result.Outcome = OutcomeSkipped
		return nil
	}

	backlog, err := e.local.ListUnsynced(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "read backlog", err)
	}
	if len(backlog) == 0 {
		result.Outcome = OutcomeAlreadySynced
		return nil
	}

	origin, err := e.local.DeviceID(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "read device id", err)
	}

	logging.Info("Pushing backlog", logging.Fields{
		"pass_id": result.PassID,
		"pending": len(backlog),
	})

	ids := make([]int64, 0, len(backlog))
	for _, txn := range backlog {
		if err := e.remote.InsertTransaction(ctx, origin, txn); err != nil {
			return pushError(ctx, txn.ID, err)
		}
		ids = append(ids, txn.ID)
	}

	// The remote already holds these rows; if marking fails they are
	// pushed again next pass and the remote ignores the duplicates.
	if err := e.local.MarkSynced(ctx, ids); err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "mark synced", err)
	}

	result.Outcome = OutcomeSynced
	result.Count = len(ids)
	e.record(ctx, origin, result)
	return nil
}

// record writes the audit line and the notification. Neither can undo a
// pass whose rows are already marked, so failures are only logged.
func (e *SyncEngine) record(ctx context.Context, origin string, result *SyncResult) {
	completed := e.now()

	if e.audit != nil {
		entry := models.SyncAuditEntry{PassID: result.PassID, Timestamp: completed, Count: result.Count}
		if err := e.audit.Append(entry); err != nil {
			logging.Error("Failed to append sync audit entry", err, logging.Fields{"pass_id": result.PassID})
		}
	}

	event := notify.Event{
		PassID:      result.PassID,
		DeviceID:    origin,
		Count:       result.Count,
		CompletedAt: completed,
	}
	if err := e.publisher.PublishSyncCompleted(ctx, event); err != nil {
		logging.Warn("Failed to publish sync event", logging.Fields{
			"pass_id": result.PassID,
			"error":   err.Error(),
		})
	}
}

func pushError(ctx context.Context, id int64, err error) error {
	msg := fmt.Sprintf("push transaction %d", id)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.Wrap(apperrors.ErrSyncTimeout, msg, err)
	}
	return apperrors.Wrap(apperrors.ErrSyncFailed, msg, err)
}

func (e *SyncEngine) setStatus(s SyncStatus) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status = s
}

func (e *SyncEngine) finish(result *SyncResult, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := *result
	e.lastResult = &r
	if err != nil {
		e.status = SyncStatusFailed
		e.lastErr = err
		return
	}
	e.status = SyncStatusIdle
	e.lastErr = nil
	if result.Outcome == OutcomeSynced || result.Outcome == OutcomeAlreadySynced {
		end := result.EndTime
		e.lastSync = &end
	}
}
