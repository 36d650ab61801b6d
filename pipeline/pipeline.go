package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/serisow/shortsmith/artifact"
	"github.com/serisow/shortsmith/media_step"
	"github.com/serisow/shortsmith/pipeline_type"
	"github.com/serisow/shortsmith/plugin_registry"
	"github.com/serisow/shortsmith/publish_step"
	"github.com/serisow/shortsmith/script_step"
	"github.com/serisow/shortsmith/video_step"
)

const ShortsPipelineID = "shorts"

// The full pipeline data
type Pipeline struct {
	ID      string         `json:"id"`
	Label   string         `json:"label"`
	Steps   []PipelineStep `json:"steps"`
	Context *pipeline_type.Context
}

type PipelineStep struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Weight int    `json:"weight"`
}

// NewShortsPipeline returns the fixed stage sequence of a short.
func NewShortsPipeline() Pipeline {
	types := []string{
		script_step.StepType,
		media_step.ImageStepType,
		media_step.NarrationStepType,
		video_step.MotionStepType,
		video_step.AssembleStepType,
		video_step.ConcatStepType,
		publish_step.StepType,
	}
	steps := make([]PipelineStep, len(types))
	for i, t := range types {
		steps[i] = PipelineStep{ID: t, Type: t, Weight: i}
	}
	return Pipeline{ID: ShortsPipelineID, Label: "Vertical short", Steps: steps}
}

// ExecutePipeline runs the steps in weight order against p.Context. The run
// manifest is refreshed after every step, and the outcome is recorded in
// store when one is given.
func ExecutePipeline(ctx context.Context, p *Pipeline, registry *plugin_registry.PluginRegistry, store *ExecutionStore, logger *slog.Logger) error {
	if p.Context == nil || p.Context.Run == nil {
		return fmt.Errorf("pipeline %s has no run context", p.ID)
	}
	run := p.Context.Run

	if store != nil {
		store.Begin(p.ID, run.ID, p.Context.Seed)
	}

	steps := make([]PipelineStep, len(p.Steps))
	copy(steps, p.Steps)
	sort.SliceStable(steps, func(a, b int) bool { return steps[a].Weight < steps[b].Weight })

	logger.Info("Pipeline started",
		slog.String("pipeline_id", p.ID),
		slog.String("run_id", run.ID),
		slog.String("dir", run.Dir),
		slog.Int64("seed", p.Context.Seed))

	var execErr error
	for _, pipelineStep := range steps {
		step, err := registry.GetStepInstance(pipelineStep.Type)
		if err != nil {
			execErr = fmt.Errorf("%w (registered: %s)", err, strings.Join(registry.StepTypes(), ", "))
			break
		}

		started := time.Now()
		err = step.Execute(ctx, p.Context)
		writeManifest(p.Context, logger)
		if err != nil {
			execErr = fmt.Errorf("error executing step %s: %w", pipelineStep.ID, err)
			break
		}
		logger.Info("Step completed",
			slog.String("run_id", run.ID),
			slog.String("step", pipelineStep.ID),
			slog.Duration("elapsed", time.Since(started)))
	}

	if store != nil {
		recordOutcome(store, p, execErr)
	}

	if execErr != nil {
		logger.Error("Pipeline failed",
			slog.String("run_id", run.ID),
			slog.String("error", execErr.Error()))
		return execErr
	}
	logger.Info("Pipeline completed",
		slog.String("run_id", run.ID),
		slog.String("video", run.CombinedPath()))
	return nil
}

func writeManifest(pipelineContext *pipeline_type.Context, logger *slog.Logger) {
	if _, err := pipelineContext.Run.WriteManifest(pipelineContext.Seed, pipelineContext.SceneTexts()); err != nil {
		logger.Warn("Failed to write run manifest",
			slog.String("run_id", pipelineContext.Run.ID),
			slog.String("error", err.Error()))
	}
}

func recordOutcome(store *ExecutionStore, p *Pipeline, execErr error) {
	pipelineContext := p.Context
	results := make(map[string][]pipeline_type.SceneResult)
	for _, s := range p.Steps {
		if r := pipelineContext.Results(s.Type); len(r) > 0 {
			results[s.Type] = r
		}
	}
	videoPath, _ := pipelineContext.GetStepOutput(video_step.CombinedVideoKey)
	location, _ := pipelineContext.GetStepOutput(publish_step.LocationKey)
	publishErrs, _ := pipelineContext.GetStepOutput(publish_step.PublishErrsKey)

	now := store.now()
	store.Update(pipelineContext.Run.ID, func(r *ExecutionResult) {
		r.EndTime = now.Unix()
		r.CompletedAt = now.Format(time.RFC3339)
		r.SceneCount = len(pipelineContext.Scenes)
		r.ClipCount = len(pipelineContext.Run.Complete(artifact.KindClip))
		r.Results = results
		if v, ok := videoPath.(string); ok {
			r.VideoPath = v
		}
		if l, ok := location.(string); ok {
			r.Location = l
		}
		if errs, ok := publishErrs.([]string); ok {
			r.PublishErrors = append([]string(nil), errs...)
		}
		if execErr != nil {
			r.Status = StatusFailed
			r.ErrorMessage = execErr.Error()
		} else {
			r.Status = StatusCompleted
		}
	})
}
