package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/internal/config"
	"retailpulse/internal/pipeline"
)

type noopStep struct {
	id string
}

func (s *noopStep) ID() string                        { return s.id }
func (s *noopStep) Name() string                      { return s.id }
func (s *noopStep) Validate(*pipeline.RunState) error { return nil }

func (s *noopStep) Execute(context.Context, *pipeline.RunState) error { return nil }

type pausedStep struct {
	started chan struct{}
	release chan struct{}
}

func (s *pausedStep) ID() string                        { return "paused" }
func (s *pausedStep) Name() string                      { return "paused" }
func (s *pausedStep) Validate(*pipeline.RunState) error { return nil }

func (s *pausedStep) Execute(context.Context, *pipeline.RunState) error {
	close(s.started)
	<-s.release
	return nil
}

func newPipelineService(t *testing.T, steps []pipeline.Step) (*PipelineService, *pipeline.Runner, *DataService) {
	t.Helper()

	paths := config.PathsFrom(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())
	writeDataset(t, paths.CleanedCSV, fixtureTransactions())

	data := NewDataService(paths, nil)
	runner := pipeline.NewRunner(steps, nil, nil)
	return NewPipelineService(runner, data, nil), runner, data
}

func TestPipelineServiceRunReloadsData(t *testing.T) {
	svc, _, data := newPipelineService(t, []pipeline.Step{&noopStep{id: "export"}})

	state, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pipeline.RunStatusCompleted, state.Status)
	assert.True(t, data.Loaded(), "a successful run must refresh the dataset")
}

func TestPipelineServiceLastRunIsDetached(t *testing.T) {
	svc, runner, _ := newPipelineService(t, []pipeline.Step{&noopStep{id: "export"}})

	assert.Nil(t, svc.LastRun(), "no run yet")

	state, err := svc.Run(context.Background())
	require.NoError(t, err)

	// The runner keeps the live state; callers only ever see copies.
	live := runner.LastRun()
	assert.NotSame(t, live, state)

	first := svc.LastRun()
	second := svc.LastRun()
	require.NotNil(t, first)
	assert.NotSame(t, live, first)
	assert.NotSame(t, first, second)
	assert.Equal(t, live.ID, first.ID)
	assert.Equal(t, pipeline.RunStatusCompleted, first.Status)
}

func TestPipelineServiceRejectsConcurrentRun(t *testing.T) {
	step := &pausedStep{started: make(chan struct{}), release: make(chan struct{})}
	svc, _, _ := newPipelineService(t, []pipeline.Step{step})

	done := make(chan error, 1)
	go func() {
		_, err := svc.Run(context.Background())
		done <- err
	}()

	<-step.started
	_, err := svc.Run(context.Background())
	assert.ErrorIs(t, err, ErrPipelineRunning)

	close(step.release)
	require.NoError(t, <-done)
}
