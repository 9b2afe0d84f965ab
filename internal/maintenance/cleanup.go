package maintenance

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Cleanup removes backup files in dir older than retentionDays by modification
// time and returns the removed paths. Other files are left alone and a missing
// dir is not an error.
func Cleanup(dir string, retentionDays int, now time.Time, logger zerolog.Logger) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("unable to read backup dir: %w", err)
	}

	cutoff := now.Add(-time.Duration(retentionDays) * 24 * time.Hour)
	var removed []string
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			logger.Warn().Err(err).Str("file", name).Msg("⚠️ Could not stat backup")
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("unable to remove %s: %w", path, err)
		}
		logger.Info().Str("file", path).Msg("🗑️ Removed old backup")
		removed = append(removed, path)
	}
	return removed, nil
}
