package models

import "time"

// RunState represents the outcome of a journaled job run.
type RunState string

const (
	// RunStateRunning - the job was submitted and has not settled yet
	RunStateRunning RunState = "running"
	// RunStateCompleted - the job finished without error
	RunStateCompleted RunState = "completed"
	// RunStateFailed - the job returned an error
	RunStateFailed RunState = "failed"
	// RunStateCanceled - the job was dropped before it ran, or its context was canceled
	RunStateCanceled RunState = "canceled"
)

func (s RunState) Value() string {
	return string(s)
}

func (s RunState) Valid() bool {
	switch s {
	case RunStateRunning, RunStateCompleted, RunStateFailed, RunStateCanceled:
		return true
	}
	return false
}

// Run is one execution of a named job.
type Run struct {
	ID    string   `json:"id"`
	Job   string   `json:"job"`
	State RunState `json:"state"`
	Error string   `json:"error,omitempty"`
	// Output is the JSON encoded result of a completed run.
	Output     string     `json:"output,omitempty"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
