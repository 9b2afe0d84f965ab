package linkedin

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/DillanDevs/linkedin-scraping/internal/apperr"
	"github.com/DillanDevs/linkedin-scraping/internal/browser"
	"github.com/DillanDevs/linkedin-scraping/internal/config"
	"github.com/DillanDevs/linkedin-scraping/utils"

	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog"
)

const (
	loginURL     = "https://www.linkedin.com/login"
	feedURL      = "https://www.linkedin.com/feed/"
	searchURL    = "https://www.linkedin.com/jobs/search/"
	loggedInMark = "#global-nav"
)

// Session drives one Chromium page through login, search and detail pages.
// It implements scraper.Session.
type Session struct {
	manager *browser.PlaywrightManager
	bctx    playwright.BrowserContext
	page    playwright.Page
	cfg     config.ScraperConfig
	creds   config.LinkedInConfig
	cookies bool
	shots   *utils.ScreenShotDebugger
	logger  zerolog.Logger
}

// Open launches the browser. The caller owns the session and must Close it.
func Open(cfg *config.Config, logger zerolog.Logger) (*Session, error) {
	manager, err := browser.NewPlaywright(cfg.Scraper.IsHeadless())
	if err != nil {
		return nil, err
	}

	var cookies []playwright.OptionalCookie
	if path := cfg.Scraper.CookiesPath; path != "" {
		cookies, err = browser.LoadCookies(path)
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("⚠️ Could not load LinkedIn cookies. Continuing with form login.")
			cookies = nil
		} else {
			logger.Info().Int("count", len(cookies)).Msg("🍪 Loaded LinkedIn cookies")
		}
	}

	bctx, err := manager.NewContext(cookies)
	if err != nil {
		manager.Close()
		return nil, err
	}

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		manager.Close()
		return nil, fmt.Errorf("failed to create new page: %w", err)
	}
	timeout := float64(cfg.Scraper.PageLoadTimeout.Milliseconds())
	page.SetDefaultTimeout(timeout)
	page.SetDefaultNavigationTimeout(timeout)

	return &Session{
		manager: manager,
		bctx:    bctx,
		page:    page,
		cfg:     cfg.Scraper,
		creds:   cfg.LinkedIn,
		cookies: len(cookies) > 0,
		shots:   utils.NewScreenShotDebugger(cfg.Scraper.ScreenshotDir, logger),
		logger:  logger,
	}, nil
}

func (s *Session) gotoOptions() playwright.PageGotoOptions {
	return playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(s.cfg.PageLoadTimeout.Milliseconds())),
	}
}

func (s *Session) Login(ctx context.Context) error {
	if s.cookies && s.feedReachable() {
		s.logger.Info().Msg("✅ Session cookies accepted, skipping login form")
		return nil
	}

	s.logger.Info().Msg("🔐 Logging in to LinkedIn...")
	if _, err := s.page.Goto(loginURL, s.gotoOptions()); err != nil {
		return apperr.Authentication("failed to load login page", err)
	}
	if err := browser.Sleep(ctx, s.cfg.ScrapeDelay); err != nil {
		return err
	}

	if err := s.page.Locator("#username").Fill(s.creds.User); err != nil {
		return apperr.Authentication("username field not found", err)
	}
	if err := s.page.Locator("#password").Fill(s.creds.Pass); err != nil {
		return apperr.Authentication("password field not found", err)
	}
	if err := s.page.Locator("button[type='submit']").Click(); err != nil {
		return apperr.Authentication("could not submit login form", err)
	}

	if _, err := s.page.WaitForSelector(loggedInMark, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(s.cfg.PageLoadTimeout.Milliseconds())),
	}); err != nil {
		if strings.Contains(s.page.URL(), "/checkpoint/") {
			return apperr.Authentication("LinkedIn asked for a security checkpoint", err)
		}
		return apperr.Authentication("login verification failed - global nav not found", err)
	}
	s.logger.Info().Msg("✅ Login confirmed.")

	if err := browser.Sleep(ctx, s.cfg.ScrapeDelay); err != nil {
		return err
	}
	if err := browser.MouseJiggle(s.page); err != nil {
		s.logger.Debug().Err(err).Msg("mouse jiggle failed")
	}
	return nil
}

func (s *Session) feedReachable() bool {
	if _, err := s.page.Goto(feedURL, s.gotoOptions()); err != nil {
		return false
	}
	_, err := s.page.WaitForSelector(loggedInMark, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(10000),
	})
	return err == nil
}

// SearchURL is the results page for keyword.
func SearchURL(keyword string) string {
	return searchURL + "?" + url.Values{"keywords": {keyword}}.Encode()
}

func (s *Session) Search(ctx context.Context, keyword string) error {
	target := SearchURL(keyword)
	s.logger.Info().Str("url", target).Msg("🌐 Visiting Job Search")
	if _, err := s.page.Goto(target, s.gotoOptions()); err != nil {
		return fmt.Errorf("failed to load job search page: %w", err)
	}
	if err := browser.Sleep(ctx, s.cfg.ScrapeDelay); err != nil {
		return err
	}

	if err := browser.ScrollToBottom(ctx, s.page, s.cfg.Scrolls, s.cfg.ScrollDelay); err != nil {
		return fmt.Errorf("failed to scroll results: %w", err)
	}
	s.logger.Debug().Int("scrolls", s.cfg.Scrolls).Msg("results scrolled")
	return nil
}

func (s *Session) Content(_ context.Context) (string, error) {
	html, err := s.page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return html, nil
}

// Fetch opens a detail page in the same tab and returns its HTML once it had
// ApplicantDelay to settle. Navigation errors are transient.
func (s *Session) Fetch(ctx context.Context, target string) (string, error) {
	if _, err := s.page.Goto(target, s.gotoOptions()); err != nil {
		return "", apperr.TransientFetch("failed to load job detail page", err)
	}
	if err := browser.Sleep(ctx, s.cfg.ApplicantDelay); err != nil {
		return "", err
	}
	html, err := s.page.Content()
	if err != nil {
		return "", apperr.TransientFetch("failed to read job detail page", err)
	}
	return html, nil
}

// Screenshot saves the current page for debugging and returns the file path.
func (s *Session) Screenshot(name string) (string, error) {
	return s.shots.CaptureAndLog(s.page, name, "Capturing "+name)
}

func (s *Session) Close() error {
	var errs []error
	if s.bctx != nil {
		errs = append(errs, s.bctx.Close())
		s.bctx = nil
	}
	if s.manager != nil {
		errs = append(errs, s.manager.Close())
		s.manager = nil
	}
	return errors.Join(errs...)
}
