package services

import (
	"context"

	"github.com/jkilzi/taskqueue/pkg/scheduler"
)

// Jobs submits journaled jobs to the shared scheduler.
type Jobs struct {
	scheduler *scheduler.Scheduler
	journal   *Journal
	files     *Files
}

func NewJobsService(s *scheduler.Scheduler, journal *Journal, files *Files) *Jobs {
	return &Jobs{
		scheduler: s,
		journal:   journal,
		files:     files,
	}
}

// Find searches dir for keyword in the background and returns the run id.
func (j *Jobs) Find(dir, keyword string) string {
	f := scheduler.Submit(j.scheduler, func(ctx context.Context) ([]string, error) {
		return j.files.Find(ctx, dir, keyword)
	})
	return Track(j.journal, "find", f)
}

func (j *Jobs) Stats() scheduler.Stats {
	return j.scheduler.Stats()
}

func (j *Jobs) SetLimit(limit int) error {
	return j.scheduler.SetLimit(limit)
}
