package handlers

import (
	"net/http"

	apperrors "github.com/groweasy/backend/internal/errors"
	"github.com/groweasy/backend/internal/scoring"
)

// AssessHandler scores financial snapshots.
type AssessHandler struct {
	svc RecordService
}

// NewAssessHandler creates a new AssessHandler.
func NewAssessHandler(svc RecordService) *AssessHandler {
	return &AssessHandler{svc: svc}
}

// Assess handles POST /api/assess
// The snapshot is stored as a transaction before it is scored.
func (h *AssessHandler) Assess(w http.ResponseWriter, r *http.Request) {
	var request transactionRequest
	if err := decodeJSON(w, r, &request); err != nil {
		respondError(w, http.StatusBadRequest, apperrors.ErrInvalid, "Invalid request body")
		return
	}
	if field := request.missing(); field != "" {
		respondError(w, http.StatusBadRequest, apperrors.ErrInvalid, field+" is required")
		return
	}

	result, err := h.svc.Assess(r.Context(), request.UserID, scoring.Snapshot{
		Savings:  *request.Savings,
		Loans:    *request.Loans,
		Income:   *request.Income,
		Expenses: *request.Expenses,
	})
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Project handles POST /api/project
func (h *AssessHandler) Project(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Savings     *float64 `json:"savings"`
		Months      *int     `json:"months"`
		MonthlySave *float64 `json:"monthly_save"`
	}
	if err := decodeJSON(w, r, &request); err != nil {
		respondError(w, http.StatusBadRequest, apperrors.ErrInvalid, "Invalid request body")
		return
	}
	if request.Savings == nil || request.Months == nil || request.MonthlySave == nil {
		respondError(w, http.StatusBadRequest, apperrors.ErrInvalid, "savings, months and monthly_save are required")
		return
	}

	projected, err := h.svc.Project(*request.Savings, *request.Months, *request.MonthlySave)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"months":          *request.Months,
		"projected_score": projected,
	})
}
