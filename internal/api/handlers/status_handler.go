package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/raterly/raterly-be/internal/monitoring"
)

// StatusHandler serves the operational status endpoint.
type StatusHandler struct {
	startedAt time.Time
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler() *StatusHandler {
	return &StatusHandler{startedAt: time.Now()}
}

// Get reports service uptime and a host resource snapshot. Host metrics are
// best-effort; the endpoint stays green even if sampling fails.
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Round(time.Second).String(),
	}

	if stats, err := monitoring.HostSnapshot(); err != nil {
		log.Warn().Err(err).Msg("Failed to sample host stats")
	} else {
		body["host"] = stats
	}

	respondJSON(w, http.StatusOK, body)
}
