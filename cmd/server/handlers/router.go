package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/groweasy/backend/internal/logging"
)

// NewRouter registers every API route on a gorilla/mux router.
func NewRouter(svc RecordService, startedAt time.Time) *mux.Router {
	records := NewRecordHandler(svc)
	syncs := NewSyncHandler(svc)
	assess := NewAssessHandler(svc)

	router := mux.NewRouter()
	router.Use(requestLogger)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", health(startedAt)).Methods(http.MethodGet)
	api.HandleFunc("/users", records.CreateUser).Methods(http.MethodPost)
	api.HandleFunc("/users/{user_id}/history", records.GetHistory).Methods(http.MethodGet)
	api.HandleFunc("/transactions", records.CreateTransaction).Methods(http.MethodPost)
	api.HandleFunc("/status", records.GetStatus).Methods(http.MethodGet)
	api.HandleFunc("/sync", syncs.RunSync).Methods(http.MethodPost)
	api.HandleFunc("/assess", assess.Assess).Methods(http.MethodPost)
	api.HandleFunc("/project", assess.Project).Methods(http.MethodPost)

	return router
}

func health(startedAt time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "groweasy",
			"uptime":  time.Since(startedAt).Truncate(time.Second).String(),
		})
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logging.Debug("HTTP request", logging.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		})
	})
}
