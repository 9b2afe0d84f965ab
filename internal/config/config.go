// Load envs from .env
// Load YAML config
// Override with env vars
// Provide default values

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

type Config struct {
	DatabaseURL string         `yaml:"database_url"`
	LinkedIn    LinkedInConfig `yaml:"linkedin"`
	Scraper     ScraperConfig  `yaml:"scraper"`
	Server      ServerConfig   `yaml:"server"`
	Backup      BackupConfig   `yaml:"backup"`
	Schedule    ScheduleConfig `yaml:"schedule"`
	Lock        LockConfig     `yaml:"lock"`
	Telegram    TelegramConfig `yaml:"telegram"`
	Log         LogConfig      `yaml:"log"`
}

type LinkedInConfig struct {
	User string `yaml:"user"`
	Pass string `yaml:"pass"`
}

type ScraperConfig struct {
	Keyword          string        `yaml:"keyword"`
	Headless         *bool         `yaml:"headless"`
	ScrapeDelay      time.Duration `yaml:"scrape_delay"`
	Scrolls          int           `yaml:"scrolls"`
	ScrollDelay      time.Duration `yaml:"scroll_delay"`
	JobLimit         int           `yaml:"job_limit"`
	PageLoadTimeout  time.Duration `yaml:"page_load_timeout"`
	ApplicantRetries int           `yaml:"applicant_retries"`
	ApplicantDelay   time.Duration `yaml:"applicant_delay"`
	CookiesPath      string        `yaml:"cookies_path"`
	SnapshotPath     string        `yaml:"snapshot_path"`
	ScreenshotDir    string        `yaml:"screenshot_dir"`
}

// IsHeadless defaults to true when headless is not set.
func (s ScraperConfig) IsHeadless() bool {
	return s.Headless == nil || *s.Headless
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type BackupConfig struct {
	Dir           string `yaml:"dir"`
	RetentionDays int    `yaml:"retention_days"`
	PgDump        string `yaml:"pg_dump"`
}

type ScheduleConfig struct {
	Scrape   string `yaml:"scrape"`
	Backup   string `yaml:"backup"`
	Cleanup  string `yaml:"cleanup"`
	Timezone string `yaml:"timezone"`
}

type LockConfig struct {
	RedisURL string        `yaml:"redis_url"`
	TTL      time.Duration `yaml:"ttl"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

func (t TelegramConfig) Enabled() bool {
	return t.Token != "" && t.ChatID != 0
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Load builds the config from .env, the YAML file at path (optional) and the
// process environment, in increasing priority, then fills defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decodeYAML(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	envString("DATABASE_URL", &c.DatabaseURL)
	envString("LINKEDIN_USER", &c.LinkedIn.User)
	envString("LINKEDIN_PASS", &c.LinkedIn.Pass)

	s := &c.Scraper
	envString("SEARCH_KEYWORD", &s.Keyword)
	envString("COOKIES_PATH", &s.CookiesPath)
	envString("SNAPSHOT_PATH", &s.SnapshotPath)
	envString("SCREENSHOT_DIR", &s.ScreenshotDir)
	envString("PORT", &c.Server.Port)
	envString("BACKUP_DIR", &c.Backup.Dir)
	envString("PG_DUMP_PATH", &c.Backup.PgDump)
	envString("SCHEDULE_SCRAPE", &c.Schedule.Scrape)
	envString("SCHEDULE_BACKUP", &c.Schedule.Backup)
	envString("SCHEDULE_CLEANUP", &c.Schedule.Cleanup)
	envString("SCHEDULE_TIMEZONE", &c.Schedule.Timezone)
	envString("REDIS_URL", &c.Lock.RedisURL)
	envString("TELEGRAM_BOT_TOKEN", &c.Telegram.Token)
	envString("LOG_LEVEL", &c.Log.Level)

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	collect(envBool("HEADLESS", &s.Headless))
	collect(envInt("SCROLLS", &s.Scrolls))
	collect(envInt("JOB_LIMIT", &s.JobLimit))
	collect(envInt("APPLICANT_RETRIES", &s.ApplicantRetries))
	collect(envInt("RETENTION_DAYS", &c.Backup.RetentionDays))
	collect(envDuration("SCRAPE_DELAY", &s.ScrapeDelay))
	collect(envDuration("SCROLL_DELAY", &s.ScrollDelay))
	collect(envDuration("PAGE_LOAD_TIMEOUT", &s.PageLoadTimeout))
	collect(envDuration("APPLICANT_DELAY", &s.ApplicantDelay))
	collect(envDuration("LOCK_TTL", &c.Lock.TTL))

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			collect(fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err))
		} else {
			c.Telegram.ChatID = id
		}
	}
	if pretty := os.Getenv("LOG_PRETTY"); pretty != "" {
		c.Log.Pretty = parseBool(pretty)
	}
	return errors.Join(errs...)
}

func (c *Config) applyDefaults() {
	s := &c.Scraper
	setDefault(&s.Keyword, "Python Developer")
	setDefault(&s.SnapshotPath, "dataset_linkedin.csv")
	setDefault(&s.ScreenshotDir, "logs/screenshots")
	if s.ScrapeDelay == 0 {
		s.ScrapeDelay = 5 * time.Second
	}
	if s.Scrolls == 0 {
		s.Scrolls = 5
	}
	if s.ScrollDelay == 0 {
		s.ScrollDelay = 2 * time.Second
	}
	if s.JobLimit == 0 {
		s.JobLimit = 50
	}
	if s.PageLoadTimeout == 0 {
		s.PageLoadTimeout = 20 * time.Second
	}
	if s.ApplicantRetries == 0 {
		s.ApplicantRetries = 2
	}
	if s.ApplicantDelay == 0 {
		s.ApplicantDelay = 2 * time.Second
	}

	setDefault(&c.Server.Port, "8000")
	setDefault(&c.Backup.Dir, "backups")
	setDefault(&c.Backup.PgDump, "pg_dump")
	if c.Backup.RetentionDays == 0 {
		c.Backup.RetentionDays = 7
	}

	setDefault(&c.Schedule.Scrape, "0 1 * * *")
	setDefault(&c.Schedule.Backup, "0 2 * * *")
	setDefault(&c.Schedule.Cleanup, "12 2 * * *")

	if c.Lock.TTL == 0 {
		c.Lock.TTL = 2 * time.Hour
	}
	setDefault(&c.Log.Level, "info")
}

// Validate checks what every command needs.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.Backup.RetentionDays < 0 {
		return errors.New("RETENTION_DAYS must not be negative")
	}
	return nil
}

// ValidateScraper additionally checks what a scrape run needs.
func (c *Config) ValidateScraper() error {
	if err := c.Validate(); err != nil {
		return err
	}
	var errs []error
	if c.LinkedIn.User == "" {
		errs = append(errs, errors.New("LINKEDIN_USER is required"))
	}
	if c.LinkedIn.Pass == "" {
		errs = append(errs, errors.New("LINKEDIN_PASS is required"))
	}
	if c.Scraper.JobLimit < 0 {
		errs = append(errs, errors.New("JOB_LIMIT must not be negative"))
	}
	return errors.Join(errs...)
}

func (c *Config) Location() (*time.Location, error) {
	if c.Schedule.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULE_TIMEZONE: %w", err)
	}
	return loc, nil
}

func envString(key string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func envBool(key string, dst **bool) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	b := parseBool(v)
	*dst = &b
	return nil
}

var durationKeys = map[string]bool{
	"scrape_delay":      true,
	"scroll_delay":      true,
	"page_load_timeout": true,
	"applicant_delay":   true,
	"ttl":               true,
}

// decodeYAML reads data into cfg. Bare numbers under duration keys are
// seconds, matching the env vars.
func decodeYAML(data []byte, cfg *Config) error {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return err
	}
	if root.Kind == 0 {
		return nil
	}
	secondsToDuration(&root)
	return root.Decode(cfg)
}

func secondsToDuration(n *yaml.Node) {
	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			if durationKeys[key.Value] && val.Kind == yaml.ScalarNode && (val.Tag == "!!int" || val.Tag == "!!float") {
				val.Value += "s"
				val.Tag = "!!str"
			}
		}
	}
	for _, child := range n.Content {
		secondsToDuration(child)
	}
}

// envDuration accepts Go durations ("5s") or plain seconds ("5", "2.5").
func envDuration(key string, dst *time.Duration) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	d, err := ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}

func ParseDuration(v string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(v)
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func setDefault(dst *string, value string) {
	if *dst == "" {
		*dst = value
	}
}
