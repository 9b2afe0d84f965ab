package cli

import (
	"context"
	"fmt"

	"github.com/DillanDevs/linkedin-scraping/internal/database"
	"github.com/DillanDevs/linkedin-scraping/internal/lock"
	"github.com/DillanDevs/linkedin-scraping/internal/pipeline"
	"github.com/DillanDevs/linkedin-scraping/internal/reporter"
	"github.com/DillanDevs/linkedin-scraping/internal/scraper"
	"github.com/DillanDevs/linkedin-scraping/internal/scraper/linkedin"
)

const lockKey = "linkedin-scraping:pipeline"

func (c *Context) openStore(ctx context.Context) (database.Repository, error) {
	if err := c.Config.Validate(); err != nil {
		return nil, err
	}
	repo, err := database.Open(ctx, c.Config.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		repo.Close()
		return nil, err
	}
	return repo, nil
}

// locker returns the Redis lock when REDIS_URL is set, else an in-process one.
// The returned cleanup closes the Redis client.
func (c *Context) locker(ctx context.Context) (lock.Locker, func(), error) {
	if c.Config.Lock.RedisURL == "" {
		return lock.NewLocal(), func() {}, nil
	}
	client, err := lock.Dial(ctx, c.Config.Lock.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	c.Logger.Info().Msg("🔒 Using Redis run lock")
	return lock.NewRedis(client, lockKey, c.Config.Lock.TTL), func() { client.Close() }, nil
}

func (c *Context) notifier() pipeline.Notifier {
	if !c.Config.Telegram.Enabled() {
		return nil
	}
	rep, err := reporter.NewTelegramReporter(c.Config.Telegram)
	if err != nil {
		c.Logger.Warn().Err(err).Msg("⚠️ Telegram disabled")
		return nil
	}
	c.Logger.Info().Msg("🤖 Telegram notifications enabled")
	return rep
}

// newPipeline wires the LinkedIn session, the store, the lock and the notifier.
func (c *Context) newPipeline(ctx context.Context) (*pipeline.Pipeline, func(), error) {
	if err := c.Config.ValidateScraper(); err != nil {
		return nil, nil, err
	}
	store, err := c.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	locker, closeLock, err := c.locker(ctx)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("unable to connect to redis: %w", err)
	}

	open := func(context.Context) (scraper.Session, error) {
		session, err := linkedin.Open(c.Config, c.Logger)
		if err != nil {
			return nil, err
		}
		return session, nil
	}
	p := pipeline.New(pipeline.OptionsFromConfig(c.Config.Scraper), open, store, locker, c.notifier(), c.Logger)
	return p, func() {
		closeLock()
		store.Close()
	}, nil
}
