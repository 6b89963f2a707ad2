package handlers

import (
	"context"
	"net/http"
	"time"
)

// Healthz answers 200 when every registered check passes and 503 otherwise.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	code, status := http.StatusOK, "ok"
	checks := make(map[string]string, len(h.checks))
	for _, c := range h.checks {
		if err := c.check(ctx); err != nil {
			checks[c.name] = err.Error()
			code, status = http.StatusServiceUnavailable, "degraded"
			h.log.Warn("health_check_failed", map[string]any{"check": c.name, "error": err.Error()})
			continue
		}
		checks[c.name] = "ok"
	}
	writeJSON(w, code, map[string]any{"status": status, "checks": checks})
}
