package media_step

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/serisow/shortsmith/artifact"
	"github.com/serisow/shortsmith/pipeline_type"
)

const NarrationStepType = "narration_step"

// SpeechSynthesizer produces MPEG audio for a text.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// NarrationStepImpl voices every scene text. A failed index is recorded and skipped.
type NarrationStepImpl struct {
	Synthesizer SpeechSynthesizer
	Logger      *slog.Logger
}

func (s *NarrationStepImpl) Execute(ctx context.Context, pipelineContext *pipeline_type.Context) error {
	run := pipelineContext.Run
	saved := 0

	for i, scene := range pipelineContext.Scenes {
		index := i + 1

		path, err := s.synthesize(ctx, run, index, scene.Text)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("narration interrupted: %w", ctx.Err())
			}
			s.Logger.Error("Failed to synthesize narration",
				slog.String("run_id", run.ID),
				slog.Int("index", index),
				slog.String("error", err.Error()))
			run.Fail(index, artifact.KindAudio, err.Error())
			pipelineContext.AddResult(NarrationStepType, pipeline_type.Failed(index, err.Error()))
			continue
		}

		run.Record(index, artifact.KindAudio, path)
		pipelineContext.AddResult(NarrationStepType, pipeline_type.OK(index, path))
		saved++
		s.Logger.Info("Narration saved",
			slog.String("run_id", run.ID),
			slog.Int("index", index),
			slog.String("path", path))
	}

	pipelineContext.SetStepOutput(NarrationStepType, saved)
	return nil
}

func (s *NarrationStepImpl) synthesize(ctx context.Context, run *artifact.Run, index int, text string) (string, error) {
	audio, err := s.Synthesizer.Synthesize(ctx, text)
	if err != nil {
		return "", err
	}

	path := run.Path(artifact.KindAudio, index)
	if err := os.WriteFile(path, audio, 0644); err != nil {
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}
	return path, nil
}

func (s *NarrationStepImpl) GetType() string {
	return NarrationStepType
}
