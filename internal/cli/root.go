// Package cli holds the kong command tree of the automation binary.
package cli

import (
	"context"
	"io"

	"github.com/DillanDevs/linkedin-scraping/internal/config"
	"github.com/rs/zerolog"
)

type CLI struct {
	Config  string `help:"Path to the YAML config file." default:"configs/config.yaml" env:"CONFIG_PATH" type:"path"`
	Verbose bool   `help:"Enable debug logging."`

	Scrape   ScrapeCmd   `cmd:"" help:"Run the scraping pipeline once."`
	Load     LoadCmd     `cmd:"" help:"Upsert a CSV snapshot into the database."`
	Backup   BackupCmd   `cmd:"" help:"Dump the database with pg_dump."`
	Cleanup  CleanupCmd  `cmd:"" help:"Delete backups older than the retention window."`
	Schedule ScheduleCmd `cmd:"" help:"Run scrape, backup and cleanup on their daily schedule."`
}

// Context is handed to every command's Run method.
type Context struct {
	Ctx    context.Context
	Out    io.Writer
	Config *config.Config
	Logger zerolog.Logger
}
