package cli

import (
	"context"
	"errors"

	"github.com/DillanDevs/linkedin-scraping/internal/pipeline"
	"github.com/DillanDevs/linkedin-scraping/internal/scheduler"
)

type ScheduleCmd struct{}

// Run blocks until the command context is cancelled (SIGINT or SIGTERM).
func (s *ScheduleCmd) Run(c *Context) error {
	p, closeAll, err := c.newPipeline(c.Ctx)
	if err != nil {
		return err
	}
	defer closeAll()

	sched, err := c.buildScheduler(func(ctx context.Context) error {
		_, err := p.Run(ctx, "")
		if errors.Is(err, pipeline.ErrRunInProgress) {
			c.Logger.Warn().Msg("⏭️ Previous scrape still running, skipping this tick")
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}
	sched.Run(c.Ctx)
	return nil
}

func (c *Context) buildScheduler(scrape scheduler.Job) (*scheduler.Scheduler, error) {
	loc, err := c.Config.Location()
	if err != nil {
		return nil, err
	}
	sched := scheduler.New(loc, c.Logger)

	jobs := []struct {
		name string
		spec string
		job  scheduler.Job
	}{
		{"scrape", c.Config.Schedule.Scrape, scrape},
		{"backup", c.Config.Schedule.Backup, func(ctx context.Context) error {
			_, err := c.backup().Do(ctx)
			return err
		}},
		{"cleanup", c.Config.Schedule.Cleanup, func(context.Context) error {
			_, err := c.cleanup()
			return err
		}},
	}
	for _, j := range jobs {
		if err := sched.Add(j.name, j.spec, j.job); err != nil {
			return nil, err
		}
	}
	return sched, nil
}
