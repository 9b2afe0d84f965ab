// Package pipeline runs one scrape: login, search, collect, enrich, persist.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DillanDevs/linkedin-scraping/internal/apperr"
	"github.com/DillanDevs/linkedin-scraping/internal/config"
	"github.com/DillanDevs/linkedin-scraping/internal/lock"
	"github.com/DillanDevs/linkedin-scraping/internal/models"
	"github.com/DillanDevs/linkedin-scraping/internal/scraper"
	"github.com/DillanDevs/linkedin-scraping/internal/snapshot"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrRunInProgress = errors.New("another pipeline run is in progress")

// Store is the part of the repository the pipeline writes to.
type Store interface {
	UpsertBatch(ctx context.Context, jobs []models.JobListing) (int, error)
}

// Notifier hears about every finished or failed run.
type Notifier interface {
	NotifyRun(ctx context.Context, r *Report) error
}

// SessionFactory opens the browser session for one run.
type SessionFactory func(ctx context.Context) (scraper.Session, error)

type screenshotter interface {
	Screenshot(name string) (string, error)
}

type Options struct {
	Keyword          string
	JobLimit         int
	ApplicantRetries int
	ApplicantDelay   time.Duration
	SnapshotPath     string
}

func OptionsFromConfig(s config.ScraperConfig) Options {
	return Options{
		Keyword:          s.Keyword,
		JobLimit:         s.JobLimit,
		ApplicantRetries: s.ApplicantRetries,
		ApplicantDelay:   s.ApplicantDelay,
		SnapshotPath:     s.SnapshotPath,
	}
}

// Report describes one run.
type Report struct {
	RunID          string
	Keyword        string
	State          State
	States         []State
	FailedIn       State
	Collected      int
	WithApplicants int
	Persisted      int
	SnapshotPath   string
	Screenshot     string
	Err            error
	StartedAt      time.Time
	FinishedAt     time.Time
}

func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

type Pipeline struct {
	open     SessionFactory
	store    Store
	lock     lock.Locker
	notifier Notifier
	opts     Options
	logger   zerolog.Logger
	now      func() time.Time
}

// New wires a pipeline. locker may be nil for an in-process lock and notifier nil for none.
func New(opts Options, open SessionFactory, store Store, locker lock.Locker, notifier Notifier, logger zerolog.Logger) *Pipeline {
	if locker == nil {
		locker = lock.NewLocal()
	}
	return &Pipeline{
		open:     open,
		store:    store,
		lock:     locker,
		notifier: notifier,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// Run executes one scrape for keyword, or the configured keyword when empty.
// The browser session is always closed before Run returns. Failures are logged,
// reported to the notifier and returned; the run is never retried here.
func (p *Pipeline) Run(ctx context.Context, keyword string) (*Report, error) {
	if keyword == "" {
		keyword = p.opts.Keyword
	}
	report := &Report{
		RunID:     uuid.NewString(),
		Keyword:   keyword,
		State:     StateIdle,
		States:    []State{StateIdle},
		StartedAt: p.now(),
	}
	logger := p.logger.With().Str("run_id", report.RunID).Logger()

	release, err := p.lock.Acquire(ctx)
	if errors.Is(err, lock.ErrLocked) {
		logger.Warn().Msg("⏭️ Skipping run, another run holds the lock")
		report.Err = ErrRunInProgress
		report.FinishedAt = p.now()
		return report, ErrRunInProgress
	}
	if err != nil {
		return p.finish(ctx, report, fmt.Errorf("failed to acquire run lock: %w", err), logger)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn().Err(err).Msg("⚠️ Failed to release run lock")
		}
	}()

	logger.Info().Str("keyword", keyword).Msg("🚀 Starting LinkedIn pipeline")
	err = p.runSession(ctx, report, logger)
	return p.finish(ctx, report, err, logger)
}

func (p *Pipeline) runSession(ctx context.Context, report *Report, logger zerolog.Logger) (err error) {
	session, err := p.open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open browser session: %w", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("⚠️ Failed to close browser")
			return
		}
		logger.Debug().Msg("browser released")
	}()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline panicked in state %s: %v", report.State, r)
		}
		if err != nil {
			p.capture(session, report, logger)
		}
	}()

	return p.steps(ctx, session, report, logger)
}

func (p *Pipeline) steps(ctx context.Context, session scraper.Session, report *Report, logger zerolog.Logger) error {
	if err := session.Login(ctx); err != nil {
		return err
	}
	if err := report.advance(StateLoggedIn); err != nil {
		return err
	}

	if err := session.Search(ctx, report.Keyword); err != nil {
		return err
	}
	if err := report.advance(StateSearched); err != nil {
		return err
	}

	html, err := session.Content(ctx)
	if err != nil {
		return err
	}
	candidates, err := scraper.ExtractListings(html, p.opts.JobLimit, p.now())
	if err != nil {
		return err
	}
	report.Collected = len(candidates)
	logger.Info().Int("count", len(candidates)).Int("limit", p.opts.JobLimit).Msg("📄 Collected job cards")
	if err := report.advance(StateCollected); err != nil {
		return err
	}

	enricher := scraper.NewEnricher(session, p.opts.ApplicantRetries, p.opts.ApplicantDelay, logger)
	results := make([]scraper.Applicants, len(candidates))
	for i, c := range candidates {
		results[i] = enricher.Enrich(ctx, scraper.NormalizeURL(c.RawURL))
		if _, ok := results[i].Count(); ok {
			report.WithApplicants++
		}
	}
	logger.Info().Int("with_applicants", report.WithApplicants).Int("count", len(candidates)).Msg("👥 Applicant counts fetched")
	if err := report.advance(StateEnriched); err != nil {
		return err
	}

	jobs := models.DedupeByURL(scraper.AssembleBatch(candidates, results))
	if path := p.opts.SnapshotPath; path != "" {
		if err := snapshot.Write(path, jobs); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
		report.SnapshotPath = path
		logger.Info().Str("path", path).Int("count", len(jobs)).Msg("💾 Snapshot written")
	}

	n, err := p.store.UpsertBatch(ctx, jobs)
	if err != nil {
		return err
	}
	report.Persisted = n
	logger.Info().Int("count", n).Msg("🗄️ Jobs upserted")
	return report.advance(StatePersisted)
}

func (p *Pipeline) capture(session scraper.Session, report *Report, logger zerolog.Logger) {
	shooter, ok := session.(screenshotter)
	if !ok {
		return
	}
	path, err := shooter.Screenshot("failed_" + string(report.State))
	if err != nil {
		logger.Debug().Err(err).Msg("no failure screenshot")
		return
	}
	report.Screenshot = path
}

func (p *Pipeline) finish(ctx context.Context, report *Report, err error, logger zerolog.Logger) (*Report, error) {
	if err != nil {
		report.fail(err)
	} else if aerr := report.advance(StateIdle); aerr != nil {
		err = aerr
		report.fail(err)
	}
	report.FinishedAt = p.now()

	if err != nil {
		logger.Error().Err(err).
			Str("kind", string(apperr.KindOf(err))).
			Str("failed_in", string(report.FailedIn)).
			Msg("❌ Pipeline failed")
	} else {
		logger.Info().
			Int("collected", report.Collected).
			Int("persisted", report.Persisted).
			Dur("took", report.Duration()).
			Msg("✅ Pipeline finished")
	}

	if p.notifier != nil {
		if nerr := p.notifier.NotifyRun(context.WithoutCancel(ctx), report); nerr != nil {
			logger.Warn().Err(nerr).Msg("⚠️ Failed to send run notification")
		}
	}
	return report, err
}
