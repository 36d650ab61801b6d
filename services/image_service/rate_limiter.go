package image_service

import (
	"context"
	"log/slog"
	"time"
)

// Clock abstracts time so pacing can be tested without sleeping.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RealClock is the wall clock.
var RealClock Clock = realClock{}

// RateLimiter allows at most Batch requests per Window. Before every
// Batch-th request it sleeps for whatever remains of the window measured
// from the start of the current batch.
type RateLimiter struct {
	Batch  int
	Window time.Duration

	clock      Clock
	logger     *slog.Logger
	batchStart time.Time
}

func NewRateLimiter(batch int, window time.Duration, clock Clock, logger *slog.Logger) *RateLimiter {
	if clock == nil {
		clock = RealClock
	}
	return &RateLimiter{
		Batch:  batch,
		Window: window,
		clock:  clock,
		logger: logger,
	}
}

// Start opens the first batch.
func (l *RateLimiter) Start() {
	l.batchStart = l.clock.Now()
}

// Wait is called before request i (0-based). It returns how long it slept.
func (l *RateLimiter) Wait(ctx context.Context, i int) (time.Duration, error) {
	if l.batchStart.IsZero() {
		l.Start()
	}
	if l.Batch <= 0 || i == 0 || i%l.Batch != 0 {
		return 0, nil
	}

	remaining := l.Window - l.clock.Now().Sub(l.batchStart)
	var slept time.Duration
	if remaining > 0 {
		l.logger.Info("Waiting to comply with image API rate limit",
			slog.Int("request", i+1),
			slog.Duration("remaining", remaining))
		if err := l.clock.Sleep(ctx, remaining); err != nil {
			return 0, err
		}
		slept = remaining
	}
	l.batchStart = l.clock.Now()
	return slept, nil
}
