package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
	"github.com/serisow/shortsmith/pipeline"
)

// RunStarter starts a pipeline run in the background.
type RunStarter interface {
	RunAsync(ctx context.Context) (string, error)
	Running() bool
}

// Scheduler starts a run on a cron schedule. A tick that lands while a run
// is still going is skipped.
type Scheduler struct {
	cron     *cron.Cron
	entryID  cron.EntryID
	schedule string
	starter  RunStarter
	logger   *slog.Logger
}

func New(schedule string, starter RunStarter, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		schedule: schedule,
		starter:  starter,
		logger:   logger,
	}

	id, err := s.cron.AddFunc(schedule, s.tick)
	if err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	s.entryID = id
	return s, nil
}

func (s *Scheduler) Start() {
	s.logger.Info("Starting run scheduler", slog.String("schedule", s.schedule))
	s.cron.Start()
}

// Stop halts the schedule and returns a context done once a running tick returns.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) tick() {
	if s.starter.Running() {
		s.logger.Info("Scheduled run skipped, previous run still in progress")
		return
	}
	runID, err := s.starter.RunAsync(context.Background())
	switch {
	case errors.Is(err, pipeline.ErrRunInProgress):
		s.logger.Info("Scheduled run skipped, previous run still in progress")
	case err != nil:
		s.logger.Error("Scheduled run failed to start", slog.String("error", err.Error()))
	default:
		s.logger.Info("Scheduled run started", slog.String("run_id", runID))
	}
}
