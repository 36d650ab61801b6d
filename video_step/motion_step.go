package video_step

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/serisow/shortsmith/artifact"
	"github.com/serisow/shortsmith/pipeline_type"
	"github.com/serisow/shortsmith/video"
)

const MotionStepType = "motion_step"

// MotionStepImpl animates every still whose narration exists. The narration
// length sets the clip length. Indices missing either input are reported as
// skipped before the renderer is invoked.
type MotionStepImpl struct {
	FFmpeg   video.FFmpegExecutor
	Renderer video.ParallaxRenderer
	Logger   *slog.Logger
}

func (s *MotionStepImpl) Execute(ctx context.Context, pipelineContext *pipeline_type.Context) error {
	run := pipelineContext.Run
	rendered := 0

	for i := 1; i <= len(pipelineContext.Scenes); i++ {
		if reason, missing := missingInputs(run, i, artifact.KindImage, artifact.KindAudio); missing {
			s.Logger.Warn("Skipping parallax render",
				slog.String("run_id", run.ID),
				slog.Int("index", i),
				slog.String("reason", reason))
			pipelineContext.AddResult(MotionStepType, pipeline_type.Skipped(i, reason))
			continue
		}

		path, err := s.render(ctx, pipelineContext, i)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("parallax render interrupted: %w", ctx.Err())
			}
			s.Logger.Error("Parallax render failed",
				slog.String("run_id", run.ID),
				slog.Int("index", i),
				slog.String("error", err.Error()))
			run.Fail(i, artifact.KindParallax, err.Error())
			pipelineContext.AddResult(MotionStepType, pipeline_type.Failed(i, err.Error()))
			continue
		}

		run.Record(i, artifact.KindParallax, path)
		pipelineContext.AddResult(MotionStepType, pipeline_type.OK(i, path))
		rendered++
	}

	pipelineContext.SetStepOutput(MotionStepType, rendered)
	return nil
}

func (s *MotionStepImpl) render(ctx context.Context, pipelineContext *pipeline_type.Context, i int) (string, error) {
	run := pipelineContext.Run
	imagePath, _ := run.Lookup(i, artifact.KindImage)
	audioPath, _ := run.Lookup(i, artifact.KindAudio)

	duration, err := s.FFmpeg.GetAudioDuration(ctx, audioPath)
	if err != nil {
		return "", err
	}
	pipelineContext.SetDuration(i, duration)

	output := run.Path(artifact.KindParallax, i)
	if err := s.Renderer.Render(ctx, imagePath, output, duration); err != nil {
		return "", err
	}

	s.Logger.Info("Parallax clip rendered",
		slog.String("run_id", run.ID),
		slog.Int("index", i),
		slog.Float64("duration", duration))
	return output, nil
}

func (s *MotionStepImpl) GetType() string {
	return MotionStepType
}

// missingInputs reports the first required artifact absent for index i.
func missingInputs(run *artifact.Run, i int, kinds ...artifact.Kind) (string, bool) {
	for _, kind := range kinds {
		if _, ok := run.Lookup(i, kind); ok {
			continue
		}
		if reason, failed := run.Failure(i, kind); failed {
			return fmt.Sprintf("no %s: %s", kind, reason), true
		}
		return fmt.Sprintf("no %s", kind), true
	}
	return "", false
}
