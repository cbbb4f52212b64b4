package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /health)
	GetHealth(c *gin.Context)
	// (GET /scheduler)
	GetScheduler(c *gin.Context)
	// (PUT /scheduler/limit)
	SetSchedulerLimit(c *gin.Context)
	// (GET /runs)
	ListRuns(c *gin.Context, params ListRunsParams)
	// (GET /runs/{id})
	GetRun(c *gin.Context, id string)
	// (POST /jobs/find)
	StartFind(c *gin.Context)
}

// ServerInterfaceWrapper converts gin contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (siw *ServerInterfaceWrapper) GetHealth(c *gin.Context) {
	siw.Handler.GetHealth(c)
}

func (siw *ServerInterfaceWrapper) GetScheduler(c *gin.Context) {
	siw.Handler.GetScheduler(c)
}

func (siw *ServerInterfaceWrapper) SetSchedulerLimit(c *gin.Context) {
	siw.Handler.SetSchedulerLimit(c)
}

func (siw *ServerInterfaceWrapper) ListRuns(c *gin.Context) {
	var params ListRunsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, Error{Error: "invalid query: " + err.Error()})
		return
	}
	siw.Handler.ListRuns(c, params)
}

func (siw *ServerInterfaceWrapper) GetRun(c *gin.Context) {
	siw.Handler.GetRun(c, c.Param("id"))
}

func (siw *ServerInterfaceWrapper) StartFind(c *gin.Context) {
	siw.Handler.StartFind(c)
}

// RegisterHandlers creates http.Handler with routing matching the API.
func RegisterHandlers(router gin.IRouter, si ServerInterface) {
	wrapper := ServerInterfaceWrapper{Handler: si}

	router.GET("/health", wrapper.GetHealth)
	router.GET("/scheduler", wrapper.GetScheduler)
	router.PUT("/scheduler/limit", wrapper.SetSchedulerLimit)
	router.GET("/runs", wrapper.ListRuns)
	router.GET("/runs/:id", wrapper.GetRun)
	router.POST("/jobs/find", wrapper.StartFind)
}
