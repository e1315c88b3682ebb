package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// Pinger is anything whose reachability the readiness probe reports on.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker exposes liveness and readiness probes over the user
// directory's backing store.
type HealthChecker struct {
	store Pinger
}

// NewHealthChecker creates a checker over the given store.
func NewHealthChecker(store Pinger) *HealthChecker {
	return &HealthChecker{store: store}
}

// Liveness always reports healthy while the process is serving.
func (h *HealthChecker) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, http.StatusOK, StatusHealthy, "")
}

// Readiness pings the backing store and reports 503 when it is unreachable.
func (h *HealthChecker) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		writeStatus(w, http.StatusServiceUnavailable, StatusUnhealthy, err.Error())
		return
	}
	writeStatus(w, http.StatusOK, StatusHealthy, "")
}

func writeStatus(w http.ResponseWriter, code int, status, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	body := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now(),
	}
	if message != "" {
		body["message"] = message
	}
	json.NewEncoder(w).Encode(body)
}
