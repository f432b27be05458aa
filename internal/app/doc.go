// Package app assembles the dashboard application: configuration,
// logging, the data and pipeline services, the WebSocket hub and the
// HTTP server. The cmd/dashboard entrypoint is a thin wrapper around
// this package.
//
// Lifecycle:
//
//	application, err := app.New(app.Options{Version: version})
//	if err != nil { ... }
//	err = application.Run(ctx)
//
// Run blocks until the context is cancelled or SIGINT/SIGTERM arrives,
// then shuts the server down gracefully within the configured timeout.
package app
