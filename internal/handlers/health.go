package handlers

import (
	"context"
	"net/http"
	"os"
	"time"
)

const version = "0.1.0"

// Check is one dependency's probe result.
type Check struct {
	Status  string `json:"status"`            // "pass" or "fail"
	Latency string `json:"latency,omitempty"` // e.g., "2ms"
	Message string `json:"message,omitempty"`
}

// HealthResponse is the health endpoint payload.
type HealthResponse struct {
	Status    string           `json:"status"` // "healthy" or "degraded"
	Version   string           `json:"version"`
	Instance  string           `json:"instance,omitempty"`
	Checks    map[string]Check `json:"checks"`
	Timestamp string           `json:"timestamp"`
}

// probe times a ping and turns it into a Check.
func probe(ping func() error) Check {
	start := time.Now()
	if err := ping(); err != nil {
		return Check{Status: "fail", Message: "connection failed"}
	}
	return Check{Status: "pass", Latency: time.Since(start).String()}
}

// Health probes the database and Redis. Redis is optional at startup
// but still reported, so a missing feed shows up as degraded rather
// than silently empty activity and presence.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]Check{
		"database": probe(func() error { return h.db.Ping(ctx) }),
	}
	if h.redis != nil {
		checks["redis"] = probe(func() error { return h.redis.Ping(ctx) })
	} else {
		checks["redis"] = Check{Status: "fail", Message: "not configured"}
	}

	status, code := "healthy", http.StatusOK
	for _, c := range checks {
		if c.Status != "pass" {
			status, code = "degraded", http.StatusServiceUnavailable
			break
		}
	}

	hostname, _ := os.Hostname()
	h.JSON(w, code, HealthResponse{
		Status:    status,
		Version:   version,
		Instance:  hostname,
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
