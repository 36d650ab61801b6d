package video

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// RunCleanupService handles the removal of old run directories
type RunCleanupService struct {
	logger        *slog.Logger
	baseDir       string
	retentionDays int
	now           func() time.Time
}

// NewRunCleanupService creates a new cleanup service
func NewRunCleanupService(logger *slog.Logger, baseDir string, retentionDays int) *RunCleanupService {
	return &RunCleanupService{
		logger:        logger,
		baseDir:       baseDir,
		retentionDays: retentionDays,
		now:           time.Now,
	}
}

// StartCleanupSchedule begins regular cleanup until stop is closed
func (s *RunCleanupService) StartCleanupSchedule(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.PerformCleanup()
			case <-stop:
				return
			}
		}
	}()

	s.logger.Info("Run cleanup service started",
		slog.Int("retention_days", s.retentionDays),
		slog.Duration("interval", interval))
}

// PerformCleanup removes run directories older than the retention period and
// returns how many were removed.
func (s *RunCleanupService) PerformCleanup() int {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Error("Error during run cleanup",
				slog.String("error", err.Error()))
		}
		return 0
	}

	cutoffTime := s.now().AddDate(0, 0, -s.retentionDays)
	removed := 0
	for _, entry := range entries {
		// Only directories named by a run identifier are ours
		if !entry.IsDir() {
			continue
		}
		if _, err := uuid.Parse(entry.Name()); err != nil {
			continue
		}

		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoffTime) {
			continue
		}

		path := filepath.Join(s.baseDir, entry.Name())
		s.logger.Info("Removing old run directory",
			slog.String("path", path),
			slog.Time("modified_time", info.ModTime()),
			slog.Time("cutoff_time", cutoffTime))

		if err := os.RemoveAll(path); err != nil {
			s.logger.Error("Failed to remove run directory",
				slog.String("path", path),
				slog.String("error", err.Error()))
			continue
		}
		// The run manifest sits beside its directory.
		if err := os.Remove(path + ".yaml"); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("Failed to remove run manifest",
				slog.String("path", path+".yaml"),
				slog.String("error", err.Error()))
		}
		removed++
	}
	return removed
}
