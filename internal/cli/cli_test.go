package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DillanDevs/linkedin-scraping/internal/config"
	"github.com/DillanDevs/linkedin-scraping/internal/database"
	"github.com/DillanDevs/linkedin-scraping/internal/lock"

	"github.com/alecthomas/kong"
	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) (*Context, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	out := &bytes.Buffer{}
	cfg := &config.Config{
		DatabaseURL: "sqlite://" + filepath.Join(dir, "jobs.db"),
		Scraper:     config.ScraperConfig{SnapshotPath: filepath.Join(dir, "dataset_linkedin.csv")},
		Backup:      config.BackupConfig{Dir: filepath.Join(dir, "backups"), RetentionDays: 7},
		Schedule: config.ScheduleConfig{
			Scrape:   "0 1 * * *",
			Backup:   "0 2 * * *",
			Cleanup:  "12 2 * * *",
			Timezone: "UTC",
		},
		Lock: config.LockConfig{TTL: time.Hour},
	}
	return &Context{Ctx: context.Background(), Out: out, Config: cfg, Logger: zerolog.Nop()}, out
}

const snapshotCSV = `title,company,location,date_posted,days_since_posted,job_url,applicants
Python Developer,Acme,Remote,2024-01-10,5,https://www.linkedin.com/jobs/view/111/?refId=a,40
Python Developer,Acme,Remote,2024-01-10,5,https://www.linkedin.com/jobs/view/111/?refId=b,41
Go Engineer,Initech,Bogota,,,https://www.linkedin.com/jobs/view/222/,
`

func TestLoadCmd(t *testing.T) {
	c, out := testContext(t)
	require.NoError(t, os.WriteFile(c.Config.Scraper.SnapshotPath, []byte(snapshotCSV), 0o644))

	require.NoError(t, (&LoadCmd{}).Run(c))
	assert.Contains(t, out.String(), "2 job(s) loaded")

	repo, err := database.Open(context.Background(), c.Config.DatabaseURL)
	require.NoError(t, err)
	defer repo.Close()

	jobs, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/111", jobs[0].JobURL)
	assert.Equal(t, 41, *jobs[0].Applicants)
	assert.Nil(t, jobs[1].Applicants)
}

func TestLoadCmdMissingFile(t *testing.T) {
	c, _ := testContext(t)
	assert.Error(t, (&LoadCmd{File: filepath.Join(t.TempDir(), "missing.csv")}).Run(c))
}

func TestCleanupCmd(t *testing.T) {
	c, out := testContext(t)
	dir := c.Config.Backup.Dir
	require.NoError(t, os.MkdirAll(dir, 0o755))
	old := filepath.Join(dir, "backup_20200101_020000.sql")
	require.NoError(t, os.WriteFile(old, nil, 0o644))
	past := time.Now().Add(-30 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	require.NoError(t, (&CleanupCmd{}).Run(c))
	assert.Contains(t, out.String(), "1 old backup(s) removed")
	assert.NoFileExists(t, old)
}

func TestBackupCmdRejectsSQLite(t *testing.T) {
	c, _ := testContext(t)
	assert.Error(t, (&BackupCmd{}).Run(c))
}

func TestBuildScheduler(t *testing.T) {
	c, _ := testContext(t)
	noop := func(context.Context) error { return nil }

	sched, err := c.buildScheduler(noop)
	require.NoError(t, err)
	assert.Len(t, sched.Next(), 3)

	c.Config.Schedule.Backup = "every day"
	_, err = c.buildScheduler(noop)
	assert.ErrorContains(t, err, "backup")

	c.Config.Schedule.Backup = "0 2 * * *"
	c.Config.Schedule.Timezone = "Mars/Olympus"
	_, err = c.buildScheduler(noop)
	assert.Error(t, err)
}

func TestLocker(t *testing.T) {
	c, _ := testContext(t)

	l, closeFn, err := c.locker(context.Background())
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &lock.Local{}, l)

	mr := miniredis.RunT(t)
	c.Config.Lock.RedisURL = "redis://" + mr.Addr()
	l, closeRedis, err := c.locker(context.Background())
	require.NoError(t, err)
	defer closeRedis()
	assert.IsType(t, &lock.Redis{}, l)

	release, err := l.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, mr.Exists(lockKey))
	require.NoError(t, release(context.Background()))
}

func TestScrapeRequiresCredentials(t *testing.T) {
	c, _ := testContext(t)
	assert.Error(t, (&ScrapeCmd{}).Run(c))
}

func TestParseCommands(t *testing.T) {
	parse := func(args ...string) (*CLI, string) {
		var root CLI
		parser, err := kong.New(&root)
		require.NoError(t, err)
		kctx, err := parser.Parse(args)
		require.NoError(t, err)
		return &root, kctx.Command()
	}

	root, cmd := parse("scrape", "--keyword", "Golang")
	assert.Equal(t, "scrape", cmd)
	assert.Equal(t, "Golang", root.Scrape.Keyword)

	root, cmd = parse("--verbose", "load", "--file", "data.csv")
	assert.Equal(t, "load", cmd)
	assert.True(t, root.Verbose)
	assert.True(t, filepath.IsAbs(root.Load.File))

	root, cmd = parse("schedule")
	assert.Equal(t, "schedule", cmd)
	assert.Equal(t, "config.yaml", filepath.Base(root.Config))
}
