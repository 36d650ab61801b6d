package pipeline

import (
	"log/slog"
	"sync"
	"time"

	"github.com/serisow/shortsmith/pipeline_type"
)

type ExecutionStatus string

const (
	StatusStarted   ExecutionStatus = "started"
	StatusCompleted ExecutionStatus = "completed"
	StatusFailed    ExecutionStatus = "failed"
)

type ExecutionResult struct {
	PipelineID    string                                 `json:"pipeline_id"`
	RunID         string                                 `json:"run_id"`
	Status        ExecutionStatus                        `json:"status"`
	Seed          int64                                  `json:"seed"`
	StartTime     int64                                  `json:"start_time"`
	EndTime       int64                                  `json:"end_time,omitempty"`
	SceneCount    int                                    `json:"scene_count"`
	ClipCount     int                                    `json:"clip_count"`
	Results       map[string][]pipeline_type.SceneResult `json:"results,omitempty"`
	VideoPath     string                                 `json:"video_path,omitempty"`
	Location      string                                 `json:"location,omitempty"`
	PublishErrors []string                               `json:"publish_errors,omitempty"`
	ErrorMessage  string                                 `json:"error_message,omitempty"`
	SubmittedAt   string                                 `json:"submitted_at"`
	CompletedAt   string                                 `json:"completed_at,omitempty"`
}

// ExecutionStore keeps run records in memory. Finished records expire once
// the cleanup loop is started.
type ExecutionStore struct {
	mutex        sync.RWMutex
	executions   map[string]*ExecutionResult
	timeProvider TimeProvider
	logger       *slog.Logger
	stopCleanup  chan struct{}
}

func NewExecutionStore(timeProvider TimeProvider, logger *slog.Logger) *ExecutionStore {
	if timeProvider == nil {
		timeProvider = RealTimeProvider
	}
	return &ExecutionStore{
		executions:   make(map[string]*ExecutionResult),
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// StartCleanup starts a goroutine that periodically removes expired results.
// - threshold: Duration after which finished results are considered expired.
// - cleanupInterval: How often the cleanup process runs.
func (s *ExecutionStore) StartCleanup(threshold, cleanupInterval time.Duration) {
	s.mutex.Lock()
	if s.stopCleanup != nil {
		s.mutex.Unlock()
		return
	}
	stop := make(chan struct{})
	s.stopCleanup = stop
	s.mutex.Unlock()

	ticker := time.NewTicker(cleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.PerformCleanup(threshold)
			case <-stop:
				return
			}
		}
	}()
}

func (s *ExecutionStore) StopCleanup() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.stopCleanup != nil {
		close(s.stopCleanup)
		s.stopCleanup = nil
	}
}

// PerformCleanup removes finished results older than threshold and returns how many it removed.
func (s *ExecutionStore) PerformCleanup(threshold time.Duration) int {
	now := s.timeProvider.Now()
	s.mutex.Lock()
	defer s.mutex.Unlock()

	removed := 0
	for runID, result := range s.executions {
		if result.CompletedAt == "" {
			continue
		}
		completedAt, err := time.Parse(time.RFC3339, result.CompletedAt)
		if err == nil && now.Sub(completedAt) > threshold {
			delete(s.executions, runID)
			removed++
			s.logger.Debug("Deleted execution result due to expiration", slog.String("run_id", runID))
		}
	}
	return removed
}

// Begin records runID as started unless it is already known.
func (s *ExecutionStore) Begin(pipelineID, runID string, seed int64) {
	now := s.timeProvider.Now()
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.executions[runID]; exists {
		return
	}
	s.executions[runID] = &ExecutionResult{
		PipelineID:  pipelineID,
		RunID:       runID,
		Status:      StatusStarted,
		Seed:        seed,
		StartTime:   now.Unix(),
		SubmittedAt: now.Format(time.RFC3339),
	}
}

// Get returns a copy of the record of runID.
func (s *ExecutionStore) Get(runID string) (ExecutionResult, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	result, exists := s.executions[runID]
	if !exists {
		return ExecutionResult{}, false
	}
	return *result, true
}

// Update applies fn to the record of runID under the store lock.
func (s *ExecutionStore) Update(runID string, fn func(*ExecutionResult)) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	result, exists := s.executions[runID]
	if !exists {
		return false
	}
	fn(result)
	return true
}

func (s *ExecutionStore) now() time.Time {
	return s.timeProvider.Now()
}
