package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mkadlec/libris/services/scheduler"
)

type jobsApi struct {
	sched *scheduler.Scheduler
}

type jobInfo struct {
	Name     string `json:"name"`
	Schedule string `json:"schedule"`
}

func registerJobsAPI(g *echo.Group, sched *scheduler.Scheduler) {
	api := jobsApi{sched: sched}

	jg := g.Group("/jobs")
	jg.GET("", api.query)
	jg.POST("/:name/run", api.run)
}

func (api *jobsApi) query(ctx echo.Context) error {
	jobs := api.sched.Jobs()
	infos := make([]jobInfo, 0, len(jobs))
	for _, j := range jobs {
		infos = append(infos, jobInfo{Name: j.Name(), Schedule: j.Schedule()})
	}
	return ctx.JSON(http.StatusOK, infos)
}

// run triggers a job outside its schedule, for operators.
func (api *jobsApi) run(ctx echo.Context) error {
	if err := api.sched.RunNow(ctx.Request().Context(), ctx.Param("name")); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"status": "completed"})
}
