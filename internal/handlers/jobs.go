package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/jkilzi/taskqueue/api/v1"
)

// StartFind searches a directory for a keyword in the background
// (POST /jobs/find)
func (h *Handler) StartFind(c *gin.Context) {
	var body v1.FindRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, v1.Error{Error: "invalid request body: " + err.Error()})
		return
	}
	if body.Dir == "" || body.Keyword == "" {
		c.JSON(http.StatusBadRequest, v1.Error{Error: "dir and keyword are required"})
		return
	}
	if info, err := os.Stat(body.Dir); err != nil || !info.IsDir() {
		c.JSON(http.StatusBadRequest, v1.Error{Error: "dir is not a directory: " + body.Dir})
		return
	}

	id := h.jobs.Find(body.Dir, body.Keyword)
	zap.S().Named("jobs_handler").Infow("find job started", "id", id, "dir", body.Dir)

	c.JSON(http.StatusAccepted, v1.JobAccepted{Id: id})
}
