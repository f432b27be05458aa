package http

import (
	"net/http"
	"time"

	"github.com/go-chi/render"
)

// HealthHandler serves liveness and dataset status.
type HealthHandler struct {
	data    DataProvider
	version string
	started time.Time
}

// NewHealthHandler creates the handler.
func NewHealthHandler(data DataProvider, version string) *HealthHandler {
	return &HealthHandler{data: data, version: version, started: time.Now()}
}

// Health reports service status. The service is degraded, not down,
// when no dataset is loaded.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if !h.data.Loaded() {
		status = "degraded"
	}

	render.JSON(w, r, map[string]interface{}{
		"status":         status,
		"version":        h.version,
		"uptime_seconds": int(time.Since(h.started).Seconds()),
		"dataset_source": h.data.Source(),
		"dataset_loaded": h.data.Loaded(),
	})
}
