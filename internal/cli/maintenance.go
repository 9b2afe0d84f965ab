package cli

import (
	"fmt"
	"time"

	"github.com/DillanDevs/linkedin-scraping/internal/maintenance"
)

type BackupCmd struct{}

func (b *BackupCmd) Run(c *Context) error {
	path, err := c.backup().Do(c.Ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.Out, path)
	return err
}

type CleanupCmd struct{}

func (cl *CleanupCmd) Run(c *Context) error {
	removed, err := c.cleanup()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.Out, "%d old backup(s) removed\n", len(removed))
	return err
}

func (c *Context) backup() *maintenance.Backup {
	return &maintenance.Backup{
		DatabaseURL: c.Config.DatabaseURL,
		Dir:         c.Config.Backup.Dir,
		PgDump:      c.Config.Backup.PgDump,
		Logger:      c.Logger,
	}
}

func (c *Context) cleanup() ([]string, error) {
	return maintenance.Cleanup(c.Config.Backup.Dir, c.Config.Backup.RetentionDays, time.Now(), c.Logger)
}
