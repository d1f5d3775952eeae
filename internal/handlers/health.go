package handlers

import (
	"context"
	"net/http"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds with service health information.
type HealthHandler struct {
	DB Pinger
}

// Handle implements GET /healthz.
func (h HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.DB != nil {
		if err := h.DB.Ping(ctx); err != nil {
			respond(ctx, w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"}, "database unreachable")
			return
		}
	}

	respond(ctx, w, http.StatusOK, map[string]string{"status": "ok"}, "healthy")
}
