package v1

import (
	"encoding/json"

	"github.com/jkilzi/taskqueue/internal/models"
	"github.com/jkilzi/taskqueue/internal/services"
	"github.com/jkilzi/taskqueue/pkg/scheduler"
)

// NewRunFromModel converts a models.Run to an API Run. The JSON output of a
// completed run is embedded as is.
func NewRunFromModel(run models.Run) Run {
	apiRun := Run{
		Id:         run.ID,
		Job:        run.Job,
		State:      RunState(run.State),
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}

	if run.Error != "" {
		apiRun.Error = &run.Error
	}
	if run.Output != "" {
		apiRun.Output = json.RawMessage(run.Output)
	}
	if run.FinishedAt != nil {
		d := run.Duration().Milliseconds()
		apiRun.Duration = &d
	}

	return apiRun
}

func NewRunListResponse(result *services.RunListResult) RunListResponse {
	runs := make([]Run, 0, len(result.Runs))
	for _, r := range result.Runs {
		runs = append(runs, NewRunFromModel(r))
	}
	return RunListResponse{
		Runs:  runs,
		Total: result.Total,
	}
}

func NewSchedulerStatus(stats scheduler.Stats, active int) SchedulerStatus {
	return SchedulerStatus{
		Limit:       stats.Limit,
		Running:     stats.Running,
		Pending:     stats.Pending,
		Submitted:   stats.Submitted,
		Completed:   stats.Completed,
		Failed:      stats.Failed,
		Canceled:    stats.Canceled,
		PeakRunning: stats.PeakRunning,
		Active:      active,
	}
}

// ToListParams converts query parameters to journal list parameters.
func (p ListRunsParams) ToListParams(defaultLimit, maxLimit int) services.RunListParams {
	params := services.RunListParams{Limit: uint64(defaultLimit)}

	params.Jobs = p.Job
	for _, s := range p.State {
		params.States = append(params.States, models.RunState(s))
	}
	if p.Limit > 0 {
		params.Limit = uint64(min(p.Limit, maxLimit))
	}
	if p.Offset > 0 {
		params.Offset = uint64(p.Offset)
	}

	return params
}
