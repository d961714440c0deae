package server

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/dtnitsch/linkslug/internal/common"
	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
)

// ServeAction runs the HTTP API until interrupted. When a schedule is
// configured, identity patterns are re-analyzed in the background.
func ServeAction(c *cli.Context) error {
	app, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer app.Close()

	addr := app.Config.Server.Addr
	if c.IsSet("addr") {
		addr = c.String("addr")
	}
	schedule := app.Config.Server.AnalyzeSchedule
	if c.IsSet("analyze-schedule") {
		schedule = c.String("analyze-schedule")
	}

	if schedule != "" {
		sched, err := NewScheduler(schedule, app.Service, app.Logger)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	gin.SetMode(gin.ReleaseMode)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return New(app.Service, app.Metrics.Handler(), app.Logger).Run(ctx, addr)
}
