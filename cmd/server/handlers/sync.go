package handlers

import (
	"net/http"

	apperrors "github.com/groweasy/backend/internal/errors"
)

// SyncHandler triggers sync passes.
type SyncHandler struct {
	svc RecordService
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(svc RecordService) *SyncHandler {
	return &SyncHandler{svc: svc}
}

// RunSync handles POST /api/sync
// The request blocks until the pass completes, fails or is skipped. A
// failed pass still returns its result alongside the error.
func (h *SyncHandler) RunSync(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.RunSync(r.Context())
	if err != nil {
		code := apperrors.CodeOf(err)
		respondJSON(w, statusFor(code), map[string]interface{}{
			"result": result,
			"error":  errorDetail{Code: code, Message: "sync pass failed, backlog kept for the next pass"},
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"result": result})
}
