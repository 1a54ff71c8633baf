package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	apperrors "github.com/groweasy/backend/internal/errors"
	"github.com/groweasy/backend/internal/models"
	"github.com/groweasy/backend/internal/services"
)

// RecordHandler handles users, transactions and local status.
type RecordHandler struct {
	svc RecordService
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(svc RecordService) *RecordHandler {
	return &RecordHandler{svc: svc}
}

// CreateUser handles POST /api/users
func (h *RecordHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var request struct {
		UserID    string `json:"user_id"`
		Name      string `json:"name"`
		Phone     string `json:"phone"`
		GroupName string `json:"group_name"`
	}
	if err := decodeJSON(w, r, &request); err != nil {
		respondError(w, http.StatusBadRequest, apperrors.ErrInvalid, "Invalid request body")
		return
	}

	if err := h.svc.AddUser(r.Context(), request.UserID, request.Name, request.Phone, request.GroupName); err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"user_id": request.UserID})
}

// transactionRequest is a financial snapshot as entered on the form.
// Pointers distinguish a missing field from zero.
type transactionRequest struct {
	UserID   string   `json:"user_id"`
	Savings  *float64 `json:"savings"`
	Loans    *float64 `json:"loans"`
	Income   *float64 `json:"income"`
	Expenses *float64 `json:"expenses"`
}

func (req *transactionRequest) missing() string {
	switch {
	case req.Savings == nil:
		return "savings"
	case req.Loans == nil:
		return "loans"
	case req.Income == nil:
		return "income"
	case req.Expenses == nil:
		return "expenses"
	}
	return ""
}

// CreateTransaction handles POST /api/transactions
func (h *RecordHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var request transactionRequest
	if err := decodeJSON(w, r, &request); err != nil {
		respondError(w, http.StatusBadRequest, apperrors.ErrInvalid, "Invalid request body")
		return
	}
	if field := request.missing(); field != "" {
		respondError(w, http.StatusBadRequest, apperrors.ErrInvalid, field+" is required")
		return
	}

	err := h.svc.AddTransaction(r.Context(), request.UserID,
		*request.Savings, *request.Loans, *request.Income, *request.Expenses)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"user_id": request.UserID})
}

// GetHistory handles GET /api/users/{user_id}/history?limit=
func (h *RecordHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, apperrors.ErrInvalid, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	history, err := h.svc.GetHistory(r.Context(), userID, limit)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":      userID,
		"transactions": history,
	})
}

// statusResponse is the body of GET /api/status.
type statusResponse struct {
	*models.StatusCounters
	Online bool               `json:"online"`
	Sync   services.SyncState `json:"sync"`
}

// GetStatus handles GET /api/status
func (h *RecordHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	counters, err := h.svc.GetStatusCounters(r.Context())
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, statusResponse{
		StatusCounters: counters,
		Online:         h.svc.Online(),
		Sync:           h.svc.SyncState(),
	})
}
