// Command dashboard serves the retail analytics dashboard: the JSON
// API, the WebSocket progress feed and the embedded web UI.
package main

import (
	"context"
	"log/slog"
	"os"

	"retailpulse/internal/app"
)

var version = "dev"

func main() {
	application, err := app.New(app.Options{Version: version})
	if err != nil {
		slog.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(context.Background()); err != nil {
		application.Logger.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
