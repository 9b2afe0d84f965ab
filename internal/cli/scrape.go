package cli

import (
	"errors"
	"fmt"

	"github.com/DillanDevs/linkedin-scraping/internal/pipeline"
)

type ScrapeCmd struct {
	Keyword string `help:"Search keyword. Defaults to scraper.keyword from the config."`
}

func (s *ScrapeCmd) Run(c *Context) error {
	p, closeAll, err := c.newPipeline(c.Ctx)
	if err != nil {
		return err
	}
	defer closeAll()

	report, err := p.Run(c.Ctx, s.Keyword)
	if errors.Is(err, pipeline.ErrRunInProgress) {
		c.Logger.Warn().Msg("⏭️ Another run holds the lock, skipping")
		return nil
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.Out, "%d job(s) collected, %d persisted, snapshot at %s\n",
		report.Collected, report.Persisted, report.SnapshotPath)
	return err
}
