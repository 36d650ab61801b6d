package video_step

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/serisow/shortsmith/artifact"
	"github.com/serisow/shortsmith/pipeline_type"
	"github.com/serisow/shortsmith/video"
)

const AssembleStepType = "assemble_step"

// AssembleStepImpl muxes each animated clip with its narration.
type AssembleStepImpl struct {
	FFmpeg video.FFmpegExecutor
	Logger *slog.Logger
}

func (s *AssembleStepImpl) Execute(ctx context.Context, pipelineContext *pipeline_type.Context) error {
	run := pipelineContext.Run
	complete := run.Complete(artifact.KindParallax, artifact.KindAudio)
	ready := make(map[int]bool, len(complete))
	for _, i := range complete {
		ready[i] = true
	}

	for i := 1; i <= len(pipelineContext.Scenes); i++ {
		if !ready[i] {
			reason, _ := missingInputs(run, i, artifact.KindParallax, artifact.KindAudio)
			pipelineContext.AddResult(AssembleStepType, pipeline_type.Skipped(i, reason))
			continue
		}

		videoPath, _ := run.Lookup(i, artifact.KindParallax)
		audioPath, _ := run.Lookup(i, artifact.KindAudio)
		duration, ok := pipelineContext.Duration(i)
		if !ok {
			var err error
			if duration, err = s.FFmpeg.GetAudioDuration(ctx, audioPath); err != nil {
				s.fail(pipelineContext, i, err)
				continue
			}
		}

		output := run.Path(artifact.KindClip, i)
		err := s.FFmpeg.MuxClip(ctx, video.MuxParams{
			VideoPath:  videoPath,
			AudioPath:  audioPath,
			OutputPath: output,
			Duration:   duration,
		})
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("clip assembly interrupted: %w", ctx.Err())
			}
			s.fail(pipelineContext, i, err)
			continue
		}

		run.Record(i, artifact.KindClip, output)
		pipelineContext.AddResult(AssembleStepType, pipeline_type.OK(i, output))
		s.Logger.Info("Clip assembled",
			slog.String("run_id", run.ID),
			slog.Int("index", i),
			slog.String("path", output))
	}

	pipelineContext.SetStepOutput(AssembleStepType, len(run.Complete(artifact.KindClip)))
	return nil
}

func (s *AssembleStepImpl) fail(pipelineContext *pipeline_type.Context, i int, err error) {
	s.Logger.Error("Clip assembly failed",
		slog.String("run_id", pipelineContext.Run.ID),
		slog.Int("index", i),
		slog.String("error", err.Error()))
	pipelineContext.Run.Fail(i, artifact.KindClip, err.Error())
	pipelineContext.AddResult(AssembleStepType, pipeline_type.Failed(i, err.Error()))
}

func (s *AssembleStepImpl) GetType() string {
	return AssembleStepType
}
