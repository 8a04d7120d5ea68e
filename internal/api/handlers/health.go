package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	pool      *pgxpool.Pool
	version   string
	gitCommit string
}

func NewHealthHandler(pool *pgxpool.Pool, version, gitCommit string) *HealthHandler {
	return &HealthHandler{pool: pool, version: version, gitCommit: gitCommit}
}

type healthStatus struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	Timestamp string `json:"timestamp"`
}

// Healthz reports process liveness. It never touches dependencies.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, http.StatusOK, healthStatus{
		Status:    "ok",
		Version:   h.version,
		GitCommit: h.gitCommit,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Readyz reports readiness to serve traffic. The database must answer a
// ping within two seconds.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	status := healthStatus{
		Status:    "ok",
		Version:   h.version,
		GitCommit: h.gitCommit,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.pool == nil {
		status.Status = "unavailable"
		writeHealth(w, http.StatusServiceUnavailable, status)
		return
	}
	if err := h.pool.Ping(ctx); err != nil {
		status.Status = "unavailable"
		writeHealth(w, http.StatusServiceUnavailable, status)
		return
	}

	writeHealth(w, http.StatusOK, status)
}

func writeHealth(w http.ResponseWriter, code int, status healthStatus) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(status)
}
