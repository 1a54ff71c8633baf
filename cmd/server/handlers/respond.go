// Package handlers provides the REST API over the record service.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/groweasy/backend/internal/errors"
	"github.com/groweasy/backend/internal/logging"
)

// errorBody is the payload of every non-2xx response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    apperrors.ErrorCode `json:"code"`
	Message string              `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error("Failed to encode response", err)
	}
}

func respondError(w http.ResponseWriter, status int, code apperrors.ErrorCode, message string) {
	respondJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// respondAppError maps err to a status code. Internal detail is only
// exposed for input errors.
func respondAppError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	status := statusFor(code)

	message := http.StatusText(status)
	if status == http.StatusBadRequest {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			message = appErr.Message
		}
	}
	respondError(w, status, code, message)
}

func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrInvalid:
		return http.StatusBadRequest
	case apperrors.ErrNotFound:
		return http.StatusNotFound
	case apperrors.ErrRemoteUnavailable:
		return http.StatusServiceUnavailable
	case apperrors.ErrSyncFailed, apperrors.ErrRemoteWrite:
		return http.StatusBadGateway
	case apperrors.ErrSyncTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a single JSON object, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
