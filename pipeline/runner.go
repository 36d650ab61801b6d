package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/serisow/shortsmith/artifact"
	"github.com/serisow/shortsmith/pipeline_type"
	"github.com/serisow/shortsmith/plugin_registry"
	"github.com/serisow/shortsmith/services/image_service"
)

// ErrRunInProgress is returned when a run is requested while another is active.
var ErrRunInProgress = errors.New("a run is already in progress")

// Runner starts shorts runs one at a time.
type Runner struct {
	Registry  *plugin_registry.PluginRegistry
	Store     *ExecutionStore
	OutputDir string
	// Seed is used for every run when non-zero.
	Seed   int64
	Logger *slog.Logger

	running atomic.Bool
}

func NewRunner(registry *plugin_registry.PluginRegistry, store *ExecutionStore, outputDir string, seed int64, logger *slog.Logger) *Runner {
	return &Runner{
		Registry:  registry,
		Store:     store,
		OutputDir: outputDir,
		Seed:      seed,
		Logger:    logger,
	}
}

func (r *Runner) Running() bool {
	return r.running.Load()
}

// Run executes one pipeline and blocks until it finishes. The run id is
// returned even when the pipeline fails.
func (r *Runner) Run(ctx context.Context) (string, error) {
	p, err := r.prepare()
	if err != nil {
		return "", err
	}
	defer r.running.Store(false)
	return p.Context.Run.ID, ExecutePipeline(ctx, p, r.Registry, r.Store, r.Logger)
}

// RunAsync starts a pipeline in the background and returns its run id.
func (r *Runner) RunAsync(ctx context.Context) (string, error) {
	p, err := r.prepare()
	if err != nil {
		return "", err
	}
	go func() {
		defer r.running.Store(false)
		// The outcome is recorded in the store and the log.
		_ = ExecutePipeline(ctx, p, r.Registry, r.Store, r.Logger)
	}()
	return p.Context.Run.ID, nil
}

func (r *Runner) prepare() (*Pipeline, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}

	run, err := artifact.NewRun(r.OutputDir)
	if err != nil {
		r.running.Store(false)
		return nil, err
	}

	seed := r.Seed
	if seed == 0 {
		seed = image_service.RandomSeed()
	}

	p := NewShortsPipeline()
	p.Context = pipeline_type.NewContext(run, seed)
	if r.Store != nil {
		// Registered before the id is handed out so status lookups never miss it.
		r.Store.Begin(p.ID, run.ID, seed)
	}
	return &p, nil
}
