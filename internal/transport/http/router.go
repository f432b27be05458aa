package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"retailpulse/internal/config"
	apierrors "retailpulse/internal/errors"
	custommw "retailpulse/internal/middleware"
	"retailpulse/internal/websocket"
)

// RouterDeps carries everything the router needs.
type RouterDeps struct {
	Config       *config.Config
	Logger       *slog.Logger
	ErrorHandler *apierrors.ErrorHandler
	Data         DataProvider
	Pipeline     PipelineRunner
	Hub          *websocket.Hub
	Version      string
}

// NewRouter assembles the dashboard server's routes and middleware
// chain.
func NewRouter(deps RouterDeps) chi.Router {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.StructuredLogger(logger))
	r.Use(custommw.Recoverer(logger))
	r.Use(custommw.SecurityHeaders)
	r.Use(custommw.Compress(5))

	dataHandler := NewDataHandler(deps.Data, deps.Config.Data.HomeCountry, logger, deps.ErrorHandler)
	pipelineHandler := NewPipelineHandler(deps.Pipeline, logger, deps.ErrorHandler)
	healthHandler := NewHealthHandler(deps.Data, deps.Version)

	r.Route("/api", func(api chi.Router) {
		if deps.Config.Security.RateLimit.Enabled {
			rateLimiter := custommw.NewRateLimiter(
				deps.Config.Security.RateLimit.RPS,
				deps.Config.Security.RateLimit.Burst,
				logger,
			)
			api.Use(rateLimiter.Handler)
		}
		api.NotFound(deps.ErrorHandler.NotFound)
		api.MethodNotAllowed(deps.ErrorHandler.MethodNotAllowed)

		api.Get("/health", healthHandler.Health)
		api.Mount("/pipeline", pipelineHandler.Routes())
		api.Mount("/", dataHandler.Routes())
	})

	r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		websocket.ServeWS(deps.Hub, w, req, logger)
	})

	r.Handle("/*", NewHTMLHandler())

	return r
}
