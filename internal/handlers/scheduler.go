package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/jkilzi/taskqueue/api/v1"
	srvErrors "github.com/jkilzi/taskqueue/pkg/errors"
)

// GetHealth reports that the server is up
// (GET /health)
func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, v1.Health{Status: "ok"})
}

// GetScheduler returns the shared scheduler counters
// (GET /scheduler)
func (h *Handler) GetScheduler(c *gin.Context) {
	c.JSON(http.StatusOK, v1.NewSchedulerStatus(h.jobs.Stats(), h.journal.Active()))
}

// SetSchedulerLimit changes the concurrency limit of the shared scheduler
// (PUT /scheduler/limit)
func (h *Handler) SetSchedulerLimit(c *gin.Context) {
	var body v1.SchedulerLimit
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, v1.Error{Error: "invalid request body: " + err.Error()})
		return
	}

	if err := h.jobs.SetLimit(body.Limit); err != nil {
		if srvErrors.IsInvalidConfigurationError(err) {
			c.JSON(http.StatusBadRequest, v1.Error{Error: err.Error()})
			return
		}
		zap.S().Named("scheduler_handler").Errorw("failed to set limit", "limit", body.Limit, "error", err)
		c.JSON(http.StatusInternalServerError, v1.Error{Error: "failed to set limit"})
		return
	}

	c.JSON(http.StatusOK, v1.NewSchedulerStatus(h.jobs.Stats(), h.journal.Active()))
}
