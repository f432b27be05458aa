package http

import (
	"net/http"

	"retailpulse/web"
)

// HTMLHandler serves the embedded single-page dashboard.
type HTMLHandler struct {
	fileServer http.Handler
}

// NewHTMLHandler creates the handler over the embedded assets.
func NewHTMLHandler() *HTMLHandler {
	return &HTMLHandler{fileServer: http.FileServer(http.FS(web.Assets))}
}

// ServeHTTP serves the dashboard page and its static assets.
func (h *HTMLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.fileServer.ServeHTTP(w, r)
}
