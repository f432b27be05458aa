package services

import (
	"context"
	"errors"
	"log/slog"

	"retailpulse/internal/pipeline"
)

// PipelineService runs the batch pipeline on request and refreshes the
// data service afterwards.
type PipelineService struct {
	runner *pipeline.Runner
	data   *DataService
	logger *slog.Logger
}

// NewPipelineService wires the runner to the data service.
func NewPipelineService(runner *pipeline.Runner, data *DataService, logger *slog.Logger) *PipelineService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PipelineService{
		runner: runner,
		data:   data,
		logger: logger.With(slog.String("component", "pipeline_service")),
	}
}

// Running reports whether a run is in progress.
func (s *PipelineService) Running() bool {
	return s.runner.Running()
}

// LastRun returns a snapshot of the most recent run, nil before the
// first run. The runner keeps mutating the live state while a run is in
// flight, so callers only ever see detached copies.
func (s *PipelineService) LastRun() *pipeline.RunState {
	state := s.runner.LastRun()
	if state == nil {
		return nil
	}
	return state.Snapshot()
}

// Run executes the pipeline synchronously and reloads the dataset on
// success. A concurrent request gets ErrPipelineRunning. The returned
// state is a detached snapshot.
func (s *PipelineService) Run(ctx context.Context) (*pipeline.RunState, error) {
	state, err := s.runner.Run(ctx)
	if err != nil {
		if errors.Is(err, pipeline.ErrRunInProgress) {
			return nil, ErrPipelineRunning
		}
		if state == nil {
			return nil, err
		}
		return state.Snapshot(), err
	}

	if err := s.data.Reload(ctx); err != nil {
		s.logger.Error("dataset reload after pipeline run failed",
			slog.String("error", err.Error()))
		return state.Snapshot(), err
	}
	return state.Snapshot(), nil
}
