package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "Python Developer", cfg.Scraper.Keyword)
	assert.Equal(t, 5*time.Second, cfg.Scraper.ScrapeDelay)
	assert.Equal(t, 5, cfg.Scraper.Scrolls)
	assert.Equal(t, 50, cfg.Scraper.JobLimit)
	assert.Equal(t, 2*time.Second, cfg.Scraper.ScrollDelay)
	assert.Equal(t, 20*time.Second, cfg.Scraper.PageLoadTimeout)
	assert.Equal(t, 2, cfg.Scraper.ApplicantRetries)
	assert.Equal(t, 2*time.Second, cfg.Scraper.ApplicantDelay)
	assert.Equal(t, "dataset_linkedin.csv", cfg.Scraper.SnapshotPath)
	assert.True(t, cfg.Scraper.IsHeadless())
	assert.Equal(t, "backups", cfg.Backup.Dir)
	assert.Equal(t, 7, cfg.Backup.RetentionDays)
	assert.Equal(t, "0 1 * * *", cfg.Schedule.Scrape)
	assert.Equal(t, "0 2 * * *", cfg.Schedule.Backup)
	assert.Equal(t, "12 2 * * *", cfg.Schedule.Cleanup)
	assert.False(t, cfg.Telegram.Enabled())
}

func TestLoadYAMLThenEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
database_url: postgres://yaml@localhost/jobs
scraper:
  keyword: Go Developer
  job_limit: 20
  scroll_delay: 500ms
  headless: false
schedule:
  backup: "54 10 * * *"
`)
	t.Setenv("JOB_LIMIT", "30")
	t.Setenv("SCRAPE_DELAY", "2.5")
	t.Setenv("APPLICANT_DELAY", "750ms")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://yaml@localhost/jobs", cfg.DatabaseURL)
	assert.Equal(t, "Go Developer", cfg.Scraper.Keyword)
	assert.Equal(t, 30, cfg.Scraper.JobLimit)
	assert.Equal(t, 500*time.Millisecond, cfg.Scraper.ScrollDelay)
	assert.Equal(t, 2500*time.Millisecond, cfg.Scraper.ScrapeDelay)
	assert.Equal(t, 750*time.Millisecond, cfg.Scraper.ApplicantDelay)
	assert.False(t, cfg.Scraper.IsHeadless())
	assert.Equal(t, "54 10 * * *", cfg.Schedule.Backup)
	assert.Equal(t, int64(-100123), cfg.Telegram.ChatID)
	assert.True(t, cfg.Telegram.Enabled())
}

func TestLoadYAMLBareSecondsDurations(t *testing.T) {
	path := writeConfig(t, `
scraper:
  scrape_delay: 5
  page_load_timeout: 2.5
  applicant_delay: 3s
  scrolls: 4
lock:
  ttl: 60
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Scraper.ScrapeDelay)
	assert.Equal(t, 2500*time.Millisecond, cfg.Scraper.PageLoadTimeout)
	assert.Equal(t, 3*time.Second, cfg.Scraper.ApplicantDelay)
	assert.Equal(t, 4, cfg.Scraper.Scrolls)
	assert.Equal(t, time.Minute, cfg.Lock.TTL)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("SCROLLS", "many")
	t.Setenv("TELEGRAM_CHAT_ID", "abc")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "SCROLLS")
	assert.ErrorContains(t, err, "TELEGRAM_CHAT_ID")

	_, err = Load(writeConfig(t, "scraper: [not, a, map]"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	assert.ErrorContains(t, cfg.Validate(), "DATABASE_URL")

	cfg.DatabaseURL = "sqlite://jobs.db"
	assert.NoError(t, cfg.Validate())

	err := cfg.ValidateScraper()
	assert.ErrorContains(t, err, "LINKEDIN_USER")
	assert.ErrorContains(t, err, "LINKEDIN_PASS")

	cfg.LinkedIn = LinkedInConfig{User: "me@example.com", Pass: "secret"}
	assert.NoError(t, cfg.ValidateScraper())
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"5", 5 * time.Second},
		{"0.5", 500 * time.Millisecond},
		{"1m30s", 90 * time.Second},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseDuration("soon")
	assert.Error(t, err)
}
