package v1

import "time"

// RunState defines model for Run.State.
type RunState string

const (
	RunStateRunning   RunState = "running"
	RunStateCompleted RunState = "completed"
	RunStateFailed    RunState = "failed"
	RunStateCanceled  RunState = "canceled"
)

// Run defines model for Run.
type Run struct {
	Id         string     `json:"id"`
	Job        string     `json:"job"`
	State      RunState   `json:"state"`
	Error      *string    `json:"error,omitempty"`
	Output     any        `json:"output,omitempty"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	// Duration of a settled run in milliseconds.
	Duration *int64 `json:"duration,omitempty"`
}

// RunListResponse defines model for RunListResponse.
type RunListResponse struct {
	Runs  []Run `json:"runs"`
	Total int   `json:"total"`
}

// SchedulerStatus defines model for SchedulerStatus.
type SchedulerStatus struct {
	Limit       int   `json:"limit"`
	Running     int   `json:"running"`
	Pending     int   `json:"pending"`
	Submitted   int64 `json:"submitted"`
	Completed   int64 `json:"completed"`
	Failed      int64 `json:"failed"`
	Canceled    int64 `json:"canceled"`
	PeakRunning int   `json:"peakRunning"`
	// Active counts journaled runs that have not settled yet.
	Active int `json:"active"`
}

// SchedulerLimit defines model for SchedulerLimit.
type SchedulerLimit struct {
	Limit int `json:"limit"`
}

// FindRequest defines model for FindRequest.
type FindRequest struct {
	Dir     string `json:"dir"`
	Keyword string `json:"keyword"`
}

// JobAccepted defines model for JobAccepted.
type JobAccepted struct {
	Id string `json:"id"`
}

// Health defines model for Health.
type Health struct {
	Status string `json:"status"`
}

// Error defines model for Error.
type Error struct {
	Error string `json:"error"`
}

// ListRunsParams defines parameters for ListRuns.
type ListRunsParams struct {
	Job    []string   `form:"job"`
	State  []RunState `form:"state"`
	Limit  int        `form:"limit"`
	Offset int        `form:"offset"`
}
