package http

import (
	"context"

	"retailpulse/internal/pipeline"
	"retailpulse/internal/services"
	"retailpulse/pkg/contracts/domain"
)

// DataProvider is the slice of the data service the handlers need.
type DataProvider interface {
	Transactions(ctx context.Context, filter services.Filter) ([]domain.Transaction, error)
	FilterOptions(ctx context.Context) (*services.FilterOptions, error)
	Source() string
	Loaded() bool
}

// PipelineRunner is the slice of the pipeline service the handlers
// need. Returned run states are detached snapshots, safe to serialize
// while a run is in flight.
type PipelineRunner interface {
	Run(ctx context.Context) (*pipeline.RunState, error)
	Running() bool
	LastRun() *pipeline.RunState
}
