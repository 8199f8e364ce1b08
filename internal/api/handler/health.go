package handler

import (
	"context"
	"net/http"
	"time"
)

// Pinger is a dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler creates a new health handler. Nil checks are skipped.
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	kept := make(map[string]Pinger, len(checks))
	for name, p := range checks {
		if p != nil {
			kept[name] = p
		}
	}
	return &HealthHandler{checks: kept}
}

// HealthResponse is the JSON response for health checks.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Live handles GET /health - liveness probe.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready handles GET /ready - readiness probe.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	resp := HealthResponse{
		Status: "ok",
		Checks: make(map[string]string, len(h.checks)),
	}
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "error"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	resp.Timestamp = time.Now().UTC().Format(time.RFC3339)

	writeJSON(w, status, resp)
}
