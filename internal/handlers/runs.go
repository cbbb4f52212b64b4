package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/jkilzi/taskqueue/api/v1"
	"github.com/jkilzi/taskqueue/internal/models"
	srvErrors "github.com/jkilzi/taskqueue/pkg/errors"
)

// ListRuns returns journaled runs with filtering and pagination
// (GET /runs)
func (h *Handler) ListRuns(c *gin.Context, params v1.ListRunsParams) {
	for _, s := range params.State {
		if !models.RunState(s).Valid() {
			c.JSON(http.StatusBadRequest, v1.Error{Error: "invalid state: " + string(s)})
			return
		}
	}

	result, err := h.journal.List(c.Request.Context(), params.ToListParams(defaultPageSize, maxPageSize))
	if err != nil {
		zap.S().Named("runs_handler").Errorw("failed to list runs", "error", err)
		c.JSON(http.StatusInternalServerError, v1.Error{Error: "failed to list runs"})
		return
	}

	c.JSON(http.StatusOK, v1.NewRunListResponse(result))
}

// GetRun returns a single run, running or journaled
// (GET /runs/{id})
func (h *Handler) GetRun(c *gin.Context, id string) {
	run, err := h.journal.Get(c.Request.Context(), id)
	if err != nil {
		if srvErrors.IsResourceNotFoundError(err) {
			c.JSON(http.StatusNotFound, v1.Error{Error: err.Error()})
			return
		}
		zap.S().Named("runs_handler").Errorw("failed to get run", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, v1.Error{Error: "failed to get run"})
		return
	}

	c.JSON(http.StatusOK, v1.NewRunFromModel(*run))
}
