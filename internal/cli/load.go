package cli

import (
	"fmt"

	"github.com/DillanDevs/linkedin-scraping/internal/models"
	"github.com/DillanDevs/linkedin-scraping/internal/scraper"
	"github.com/DillanDevs/linkedin-scraping/internal/snapshot"
)

type LoadCmd struct {
	File string `help:"CSV snapshot to load. Defaults to scraper.snapshot_path." type:"path"`
}

// Run upserts a snapshot file, normalizing URLs first so the rows line up
// with what a scrape would have written.
func (l *LoadCmd) Run(c *Context) error {
	path := l.File
	if path == "" {
		path = c.Config.Scraper.SnapshotPath
	}
	jobs, err := snapshot.Read(path)
	if err != nil {
		return err
	}
	for i := range jobs {
		jobs[i].JobURL = scraper.NormalizeURL(jobs[i].JobURL)
	}
	jobs = models.DedupeByURL(jobs)

	store, err := c.openStore(c.Ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.UpsertBatch(c.Ctx, jobs)
	if err != nil {
		return err
	}
	c.Logger.Info().Str("file", path).Int("rows", n).Msg("📥 Incremental load completed")
	_, err = fmt.Fprintf(c.Out, "%d job(s) loaded from %s\n", n, path)
	return err
}
