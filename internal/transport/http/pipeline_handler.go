package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "retailpulse/internal/errors"
)

// PipelineHandler triggers pipeline runs and reports their state.
type PipelineHandler struct {
	service      PipelineRunner
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewPipelineHandler creates the handler.
func NewPipelineHandler(service PipelineRunner, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PipelineHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PipelineHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "pipeline_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the pipeline routes.
func (h *PipelineHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.Run)
	r.Get("/", h.Status)

	return r
}

// Run executes the pipeline synchronously. Progress streams over the
// WebSocket feed while this request is in flight; the final run state
// comes back in the response.
func (h *PipelineHandler) Run(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.Run(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, state)
}

// Status reports whether a run is active and the last run's state.
func (h *PipelineHandler) Status(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"running":  h.service.Running(),
		"last_run": h.service.LastRun(),
	})
}
