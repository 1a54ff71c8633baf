package handlers

import (
	"context"

	"github.com/groweasy/backend/internal/models"
	"github.com/groweasy/backend/internal/scoring"
	"github.com/groweasy/backend/internal/services"
	syncpkg "github.com/groweasy/backend/internal/sync"
)

// RecordService is what the handlers need from services.RecordService.
type RecordService interface {
	AddUser(ctx context.Context, userID, name, phone, group string) error
	AddTransaction(ctx context.Context, userID string, savings, loans, income, expenses float64) error
	GetHistory(ctx context.Context, userID string, limit int) ([]models.HistoryEntry, error)
	GetStatusCounters(ctx context.Context) (*models.StatusCounters, error)
	SyncState() services.SyncState
	Online() bool
	RunSync(ctx context.Context) (*syncpkg.SyncResult, error)
	Assess(ctx context.Context, userID string, snap scoring.Snapshot) (*services.AssessResult, error)
	Project(savings float64, months int, monthlySave float64) (float64, error)
}

var _ RecordService = (*services.RecordService)(nil)
