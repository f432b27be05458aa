package services

import "errors"

// Service-level sentinel errors, mapped to problem responses by the
// HTTP error handler.
var (
	// Dataset errors
	ErrDatasetNotFound = errors.New("dataset not found, run preprocessing first")
	ErrNoData          = errors.New("no data matches the requested filter")

	// Filter errors
	ErrInvalidDateRange = errors.New("invalid date range: from is after to")

	// Pipeline errors
	ErrPipelineRunning = errors.New("pipeline already running")
)
