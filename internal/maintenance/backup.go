// Package maintenance holds the database backup and backup retention jobs.
package maintenance

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/DillanDevs/linkedin-scraping/internal/apperr"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

const (
	backupPrefix = "backup_"
	backupSuffix = ".sql"
	backupStamp  = "20060102_150405"
)

// Runner executes an external command writing its stdout to out.
type Runner func(ctx context.Context, name string, args, env []string, out io.Writer) error

// ExecRunner runs the command with os/exec, inheriting the process environment.
func ExecRunner(ctx context.Context, name string, args, env []string, out io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = out
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

type Backup struct {
	DatabaseURL string
	Dir         string
	PgDump      string
	Run         Runner
	Logger      zerolog.Logger
	Now         func() time.Time
}

// DumpArgs turns a postgres DATABASE_URL into pg_dump arguments and the
// PGPASSWORD environment entry.
func DumpArgs(databaseURL string) (args, env []string, err error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return nil, nil, apperr.Validation("unable to parse DATABASE_URL", err)
	}
	scheme, _, _ := strings.Cut(strings.ToLower(u.Scheme), "+")
	if scheme != "postgres" && scheme != "postgresql" {
		return nil, nil, apperr.Validation(fmt.Sprintf("backup needs a postgres DATABASE_URL, got %q", u.Scheme), nil)
	}
	u.Scheme = "postgres"

	pc, err := pgconn.ParseConfig(u.String())
	if err != nil {
		return nil, nil, apperr.Validation("unable to parse DATABASE_URL", err)
	}

	host := pc.Host
	if host == "" || strings.HasPrefix(host, "/") {
		host = "127.0.0.1"
	}
	port := pc.Port
	if port == 0 {
		port = 5432
	}
	args = []string{"-h", host, "-p", strconv.Itoa(int(port))}
	if pc.User != "" {
		args = append(args, "-U", pc.User)
	}
	args = append(args, pc.Database)
	if pc.Password != "" {
		env = []string{"PGPASSWORD=" + pc.Password}
	}
	return args, env, nil
}

// Do dumps the database to Dir/backup_YYYYMMDD_HHMMSS.sql and returns the path.
// A failed dump leaves no file behind.
func (b *Backup) Do(ctx context.Context) (string, error) {
	args, env, err := DumpArgs(b.DatabaseURL)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(b.Dir, 0o755); err != nil {
		return "", fmt.Errorf("unable to create backup dir: %w", err)
	}

	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	run := b.Run
	if run == nil {
		run = ExecRunner
	}
	bin := b.PgDump
	if bin == "" {
		bin = "pg_dump"
	}

	path := filepath.Join(b.Dir, backupPrefix+now().Format(backupStamp)+backupSuffix)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("unable to create backup file: %w", err)
	}

	b.Logger.Info().Str("file", path).Msg("💾 Starting database backup")
	err = run(ctx, bin, args, env, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		b.Logger.Error().Err(err).Msg("❌ Backup failed")
		return "", fmt.Errorf("pg_dump failed: %w", err)
	}
	b.Logger.Info().Str("file", path).Msg("✅ Backup successful")
	return path, nil
}
