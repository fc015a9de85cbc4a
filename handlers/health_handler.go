package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger — то, что умеет проверить доступность хранилища (*sql.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		headers := http.Header{"Retry-After": []string{retryAfterSeconds}}
		errorResponse(w, r, http.StatusServiceUnavailable, "transient", "database is unavailable", headers)
		return
	}
	writeOK(w, r, http.StatusOK, jsonResponse{"status": "ok"})
}
