// Package services composes the local store, the remote mirror, the sync
// engine and scoring into the operations callers use.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/groweasy/backend/internal/connectivity"
	"github.com/groweasy/backend/internal/db"
	apperrors "github.com/groweasy/backend/internal/errors"
	"github.com/groweasy/backend/internal/logging"
	"github.com/groweasy/backend/internal/models"
	"github.com/groweasy/backend/internal/scoring"
	syncpkg "github.com/groweasy/backend/internal/sync"
)

const (
	// DefaultMirrorTimeout bounds a single best-effort remote write.
	DefaultMirrorTimeout = 5 * time.Second

	// DefaultAssessUser owns assessments submitted without a user id.
	DefaultAssessUser = "web_user"
)

// Deps are the handles a RecordService works with. Only Local is required.
type Deps struct {
	Local db.LocalStore

	// Remote is nil when no remote store is configured.
	Remote syncpkg.RemoteStore

	// Probe decides whether writes are mirrored. Nil means offline.
	Probe connectivity.Probe

	// Engine defaults to a SyncEngine over Local, Remote and Probe.
	Engine syncpkg.SyncEngineInterface
}

// Options tunes a RecordService.
type Options struct {
	MirrorTimeout time.Duration
}

// RecordService records users and transactions locally, mirrors them when
// the remote looked reachable at construction, and runs sync passes.
type RecordService struct {
	local         db.LocalStore
	remote        syncpkg.RemoteStore
	engine        syncpkg.SyncEngineInterface
	online        bool
	mirrorTimeout time.Duration
}

// New builds a RecordService. The probe is consulted once here; sync passes
// re-check it on their own.
func New(ctx context.Context, deps Deps, opts *Options) (*RecordService, error) {
	if deps.Local == nil {
		return nil, apperrors.New(apperrors.ErrConfig, "record service needs a local store")
	}
	if opts == nil {
		opts = &Options{}
	}

	s := &RecordService{
		local:         deps.Local,
		remote:        deps.Remote,
		engine:        deps.Engine,
		mirrorTimeout: opts.MirrorTimeout,
	}
	if s.mirrorTimeout <= 0 {
		s.mirrorTimeout = DefaultMirrorTimeout
	}
	if s.engine == nil {
		s.engine = syncpkg.NewSyncEngine(deps.Local, deps.Remote, deps.Probe, nil)
	}
	if s.remote != nil && deps.Probe != nil {
		s.online = deps.Probe.Reachable(ctx)
	}

	logging.Info("Record service ready", logging.Fields{
		"remote_configured": s.remote != nil,
		"online":            s.online,
	})
	return s, nil
}

// Online reports whether writes are being mirrored.
func (s *RecordService) Online() bool {
	return s.online
}

// AddUser creates or fully replaces a user locally, then mirrors it.
func (s *RecordService) AddUser(ctx context.Context, userID, name, phone, group string) error {
	userID = strings.TrimSpace(userID)
	name = strings.TrimSpace(name)
	if userID == "" {
		return apperrors.New(apperrors.ErrInvalid, "user_id is required")
	}
	if name == "" {
		return apperrors.New(apperrors.ErrInvalid, "name is required")
	}

	user := &models.User{
		UserID:    userID,
		Name:      name,
		Phone:     strings.TrimSpace(phone),
		GroupName: strings.TrimSpace(group),
	}
	if err := s.local.UpsertUser(ctx, user); err != nil {
		logging.Error("Failed to save user", err, logging.Fields{"user_id": userID})
		return apperrors.Wrap(apperrors.ErrDatabase, "save user", err)
	}

	s.mirror(ctx, "user", logging.Fields{"user_id": userID}, func(ctx context.Context) error {
		return s.remote.UpsertUser(ctx, user)
	})
	return nil
}

// AddTransaction appends a transaction locally, then mirrors it. The row
// stays in the sync backlog either way.
func (s *RecordService) AddTransaction(ctx context.Context, userID string, savings, loans, income, expenses float64) error {
	_, err := s.addTransaction(ctx, userID, scoring.Snapshot{
		Savings:  savings,
		Loans:    loans,
		Income:   income,
		Expenses: expenses,
	})
	return err
}

func (s *RecordService) addTransaction(ctx context.Context, userID string, snap scoring.Snapshot) (*models.Transaction, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.New(apperrors.ErrInvalid, "user_id is required")
	}
	if err := snap.Validate(); err != nil {
		return nil, apperrors.New(apperrors.ErrInvalid, err.Error())
	}

	txn := &models.Transaction{
		UserID:   userID,
		Savings:  snap.Savings,
		Loans:    snap.Loans,
		Income:   snap.Income,
		Expenses: snap.Expenses,
	}
	if _, err := s.local.InsertTransaction(ctx, txn); err != nil {
		logging.Error("Failed to save transaction", err, logging.Fields{"user_id": userID})
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "save transaction", err)
	}

	fields := logging.Fields{"user_id": userID, "local_id": txn.ID}
	s.mirror(ctx, "transaction", fields, func(ctx context.Context) error {
		origin, err := s.local.DeviceID(ctx)
		if err != nil {
			return fmt.Errorf("device id: %w", err)
		}
		return s.remote.InsertTransaction(ctx, origin, txn)
	})
	return txn, nil
}

// mirror runs write against the remote when online. Failures are logged
// and never reach the caller.
func (s *RecordService) mirror(ctx context.Context, kind string, fields logging.Fields, write func(context.Context) error) {
	if !s.online || s.remote == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.mirrorTimeout)
	defer cancel()

	if err := write(ctx); err != nil {
		logging.Warn("Remote mirror failed, row stays in backlog", logging.Fields{
			"kind":  kind,
			"error": err.Error(),
		}, fields)
		return
	}
	logging.Debug("Mirrored to remote", logging.Fields{"kind": kind}, fields)
}

// GetHistory returns a user's most recent transactions, newest first.
// A limit of zero or less means db.DefaultHistoryLimit.
func (s *RecordService) GetHistory(ctx context.Context, userID string, limit int) ([]models.HistoryEntry, error) {
	txns, err := s.local.ListRecentTransactions(ctx, strings.TrimSpace(userID), limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "load history", err)
	}

	history := make([]models.HistoryEntry, 0, len(txns))
	for _, txn := range txns {
		history = append(history, txn.History())
	}
	return history, nil
}

// GetStatusCounters reports counts from the local store only.
func (s *RecordService) GetStatusCounters(ctx context.Context) (*models.StatusCounters, error) {
	counters, err := s.local.CountAll(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "count records", err)
	}
	return counters, nil
}

// SyncState describes the engine for status reporting.
type SyncState struct {
	Status     syncpkg.SyncStatus  `json:"status"`
	LastSync   *time.Time          `json:"last_sync,omitempty"`
	LastResult *syncpkg.SyncResult `json:"last_result,omitempty"`
}

// SyncState returns the engine's current state.
func (s *RecordService) SyncState() SyncState {
	return SyncState{
		Status:     s.engine.Status(),
		LastSync:   s.engine.LastSync(),
		LastResult: s.engine.LastResult(),
	}
}

// RunSync runs one sync pass and blocks until it is done.
func (s *RecordService) RunSync(ctx context.Context) (*syncpkg.SyncResult, error) {
	return s.engine.Sync(ctx)
}

// AssessResult is an assessment together with the transaction it stored.
type AssessResult struct {
	*scoring.Assessment
	UserID        string `json:"user_id"`
	TransactionID int64  `json:"transaction_id"`
}

// Assess records the snapshot as a transaction and scores it. An empty
// userID files it under DefaultAssessUser.
func (s *RecordService) Assess(ctx context.Context, userID string, snap scoring.Snapshot) (*AssessResult, error) {
	if strings.TrimSpace(userID) == "" {
		userID = DefaultAssessUser
	}

	txn, err := s.addTransaction(ctx, userID, snap)
	if err != nil {
		return nil, err
	}

	assessment := scoring.Assess(snap)
	logging.Info("Assessment recorded", logging.Fields{
		"user_id": txn.UserID,
		"score":   assessment.Score,
		"rating":  assessment.Rating,
	})
	return &AssessResult{
		Assessment:    assessment,
		UserID:        txn.UserID,
		TransactionID: txn.ID,
	}, nil
}

// Project estimates a future score. Nothing is stored.
func (s *RecordService) Project(savings float64, months int, monthlySave float64) (float64, error) {
	if err := scoring.ValidateProjection(savings, months, monthlySave); err != nil {
		return 0, apperrors.New(apperrors.ErrInvalid, err.Error())
	}
	return scoring.Project(savings, months, monthlySave), nil
}
