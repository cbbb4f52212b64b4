package handlers

import (
	v1 "github.com/jkilzi/taskqueue/api/v1"
	"github.com/jkilzi/taskqueue/internal/services"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Handler struct {
	jobs    *services.Jobs
	journal *services.Journal
}

func New(jobs *services.Jobs, journal *services.Journal) *Handler {
	return &Handler{
		jobs:    jobs,
		journal: journal,
	}
}

var _ v1.ServerInterface = (*Handler)(nil)
