package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog"
)

// ScreenShotDebugger saves full page screenshots when a run goes wrong.
type ScreenShotDebugger struct {
	outputDir string
	logger    zerolog.Logger
}

func NewScreenShotDebugger(dir string, logger zerolog.Logger) *ScreenShotDebugger {
	return &ScreenShotDebugger{
		outputDir: dir,
		logger:    logger,
	}
}

// Path is where a capture named name taken at ts is written.
func (s *ScreenShotDebugger) Path(name string, ts time.Time) string {
	return filepath.Join(s.outputDir, fmt.Sprintf("%s_%s.png", name, ts.Format("2006-01-02_15-04-05")))
}

func (s *ScreenShotDebugger) CaptureAndLog(page playwright.Page, name, message string) (string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create screenshot dir: %w", err)
	}
	path := s.Path(name, time.Now())
	s.logger.Info().Str("name", name).Msg("📸 " + message)

	_, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("⚠️ Failed to capture screenshot")
		return "", err
	}

	s.logger.Info().Str("path", path).Msg("Screenshot saved")
	return path, nil
}
