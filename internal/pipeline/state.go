package pipeline

import (
	"sync"
	"time"
)

// StepStatus is the lifecycle state of a single step.
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
)

// RunStatus is the lifecycle state of a whole run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// StepState is the runtime state of one step.
type StepState struct {
	mu        sync.RWMutex
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Status    StepStatus `json:"status"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Progress  float64    `json:"progress"`
	Message   string     `json:"message,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// NewStepState creates a pending step state.
func NewStepState(id, name string) *StepState {
	return &StepState{ID: id, Name: name, Status: StepStatusPending}
}

// Start marks the step active.
func (s *StepState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.StartTime = &now
	s.Status = StepStatusActive
	s.Progress = 0
}

// Complete marks the step done.
func (s *StepState) Complete(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusCompleted
	s.Progress = 100
	s.Message = message
}

// Fail records the step error.
func (s *StepState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusFailed
	s.Error = err.Error()
}

// Snapshot returns a copy safe to serialize.
func (s *StepState) Snapshot() StepState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StepState{
		ID:        s.ID,
		Name:      s.Name,
		Status:    s.Status,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Progress:  s.Progress,
		Message:   s.Message,
		Error:     s.Error,
	}
}

// RunState is the complete state of one pipeline run. Context carries
// data between steps (the loaded dataset, cleaning stats, output paths).
type RunState struct {
	mu        sync.RWMutex
	ID        string     `json:"id"`
	Status    RunStatus  `json:"status"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	Steps   map[string]*StepState  `json:"steps"`
	Context map[string]interface{} `json:"-"`
}

// NewRunState creates a pending run.
func NewRunState(id string) *RunState {
	return &RunState{
		ID:      id,
		Status:  RunStatusPending,
		Steps:   make(map[string]*StepState),
		Context: make(map[string]interface{}),
	}
}

// Start marks the run as running.
func (r *RunState) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = RunStatusRunning
	r.StartTime = time.Now()
}

// Complete marks the run as completed.
func (r *RunState) Complete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.EndTime = &now
	r.Status = RunStatusCompleted
}

// Fail marks the run as failed.
func (r *RunState) Fail() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.EndTime = &now
	r.Status = RunStatusFailed
}

// Snapshot returns a detached copy of the run, safe to serialize while
// steps are still mutating the live state. The run context is not
// carried over; it is internal to the run.
func (r *RunState) Snapshot() *RunState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	steps := make(map[string]*StepState, len(r.Steps))
	for id, step := range r.Steps {
		snap := step.Snapshot()
		steps[id] = &snap
	}
	return &RunState{
		ID:        r.ID,
		Status:    r.Status,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Steps:     steps,
	}
}

// Step returns the state of one step, nil when unknown.
func (r *RunState) Step(id string) *StepState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Steps[id]
}

// AddStep registers a step state.
func (r *RunState) AddStep(state *StepState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Steps[state.ID] = state
}

// Set stores a context value for downstream steps.
func (r *RunState) Set(key string, value interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Context[key] = value
}

// Get reads a context value.
func (r *RunState) Get(key string) (interface{}, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.Context[key]
	return v, ok
}
