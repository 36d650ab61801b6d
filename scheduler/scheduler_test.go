package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/serisow/shortsmith/pipeline"
)

type mockRunStarter struct {
	RunAsyncFunc func(ctx context.Context) (string, error)
	busy         bool
	calls        int
}

func (m *mockRunStarter) RunAsync(ctx context.Context) (string, error) {
	m.calls++
	return m.RunAsyncFunc(ctx)
}

func (m *mockRunStarter) Running() bool {
	return m.busy
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		schedule    string
		expectError bool
	}{
		{name: "five fields", schedule: "0 9 * * *"},
		{name: "descriptor", schedule: "@every 6h"},
		{name: "invalid", schedule: "every morning", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			starter := &mockRunStarter{RunAsyncFunc: func(ctx context.Context) (string, error) { return "", nil }}
			s, err := New(tt.schedule, starter, discardLogger())
			if tt.expectError {
				if err == nil {
					t.Errorf("expected an error for %q", tt.schedule)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(s.cron.Entries()) != 1 {
				t.Errorf("expected one cron entry, got %d", len(s.cron.Entries()))
			}
		})
	}
}

func TestTick(t *testing.T) {
	tests := []struct {
		name          string
		busy          bool
		err           error
		expectedCalls int
	}{
		{name: "run started", expectedCalls: 1},
		{name: "run in progress", err: pipeline.ErrRunInProgress, expectedCalls: 1},
		{name: "start failure", err: errors.New("disk full"), expectedCalls: 1},
		{name: "busy runner is not asked", busy: true, expectedCalls: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			starter := &mockRunStarter{RunAsyncFunc: func(ctx context.Context) (string, error) {
				return "run-1", tt.err
			}, busy: tt.busy}
			s, err := New("@hourly", starter, discardLogger())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			s.tick()

			if starter.calls != tt.expectedCalls {
				t.Errorf("expected %d start attempts, got %d", tt.expectedCalls, starter.calls)
			}
		})
	}
}
