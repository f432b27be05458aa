// Package pipeline orchestrates the batch stages: ingest raw data,
// clean it, score customers and persist the processed datasets. Runs
// are one-shot, synchronous and idempotent; a step failure aborts the
// run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is one progress notification emitted during a run.
type Event struct {
	RunID     string    `json:"run_id"`
	StepID    string    `json:"step_id,omitempty"`
	StepName  string    `json:"step_name,omitempty"`
	Status    string    `json:"status"`
	Progress  float64   `json:"progress"`
	Message   string    `json:"message,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier receives progress events. Implementations must not block;
// the WebSocket hub buffers, the log notifier just writes.
type Notifier interface {
	Notify(event Event)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Event)

// Notify calls the wrapped function.
func (f NotifierFunc) Notify(event Event) { f(event) }

// LogNotifier writes progress events to the logger. Used by the CLI
// entrypoints where no WebSocket hub exists.
func LogNotifier(logger *slog.Logger) Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return NotifierFunc(func(e Event) {
		logger.Info("pipeline progress",
			slog.String("run_id", e.RunID),
			slog.String("step", e.StepID),
			slog.String("status", e.Status),
			slog.Float64("progress", e.Progress),
			slog.String("message", e.Message))
	})
}

// ErrRunInProgress is returned when a run is requested while another is
// still executing.
var ErrRunInProgress = errors.New("a pipeline run is already in progress")

// Runner executes the registered steps in order. At most one run may be
// active at a time.
type Runner struct {
	steps    []Step
	notifier Notifier
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	lastRun *RunState
}

// NewRunner creates a runner over the given steps. A nil notifier
// degrades to log-only progress.
func NewRunner(steps []Step, notifier Notifier, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = LogNotifier(logger)
	}
	return &Runner{steps: steps, notifier: notifier, logger: logger}
}

// Running reports whether a run is currently executing.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// LastRun returns the most recently finished or active run state, nil
// before the first run.
func (r *Runner) LastRun() *RunState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastRun
}

// Run executes every step in order. The returned state is also
// retained as LastRun. Concurrent calls fail with ErrRunInProgress.
func (r *Runner) Run(ctx context.Context) (*RunState, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil, ErrRunInProgress
	}
	state := NewRunState(uuid.New().String())
	for _, step := range r.steps {
		state.AddStep(NewStepState(step.ID(), step.Name()))
	}
	r.running = true
	r.lastRun = state
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	state.Start()
	r.notifyRun(state, "")
	r.logger.Info("pipeline run started",
		slog.String("run_id", state.ID),
		slog.Int("steps", len(r.steps)))

	for _, step := range r.steps {
		stepState := state.Step(step.ID())

		if err := step.Validate(state); err != nil {
			stepState.Fail(err)
			state.Fail()
			r.notifyStep(state, stepState)
			r.notifyRun(state, err.Error())
			return state, fmt.Errorf("step %s validation: %w", step.ID(), err)
		}

		stepState.Start()
		r.notifyStep(state, stepState)

		start := time.Now()
		if err := step.Execute(ctx, state); err != nil {
			stepState.Fail(err)
			state.Fail()
			r.notifyStep(state, stepState)
			r.notifyRun(state, err.Error())
			r.logger.Error("pipeline step failed",
				slog.String("run_id", state.ID),
				slog.String("step", step.ID()),
				slog.String("error", err.Error()))
			return state, fmt.Errorf("step %s: %w", step.ID(), err)
		}

		stepState.Complete(fmt.Sprintf("finished in %s", time.Since(start).Round(time.Millisecond)))
		r.notifyStep(state, stepState)
		r.logger.Info("pipeline step completed",
			slog.String("run_id", state.ID),
			slog.String("step", step.ID()),
			slog.Duration("took", time.Since(start)))
	}

	state.Complete()
	r.notifyRun(state, "")
	r.logger.Info("pipeline run completed", slog.String("run_id", state.ID))
	return state, nil
}

func (r *Runner) notifyStep(run *RunState, step *StepState) {
	snap := step.Snapshot()
	r.notifier.Notify(Event{
		RunID:     run.ID,
		StepID:    snap.ID,
		StepName:  snap.Name,
		Status:    string(snap.Status),
		Progress:  snap.Progress,
		Message:   snap.Message,
		Error:     snap.Error,
		Timestamp: time.Now(),
	})
}

func (r *Runner) notifyRun(run *RunState, errMsg string) {
	r.notifier.Notify(Event{
		RunID:     run.ID,
		Status:    string(run.Status),
		Error:     errMsg,
		Timestamp: time.Now(),
	})
}
