package media_step

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/serisow/shortsmith/artifact"
	"github.com/serisow/shortsmith/pipeline_type"
	"github.com/serisow/shortsmith/services/image_service"
)

const ImageStepType = "image_step"

// ImageGenerator produces JPEG bytes for a prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, seed int64) ([]byte, error)
}

// ImageStepImpl generates one still per scene, paced by the rate limiter.
// A failed index is recorded and skipped.
type ImageStepImpl struct {
	Generator ImageGenerator
	Limiter   *image_service.RateLimiter
	// SharedSeed reuses the run seed for every image; otherwise SeedSource
	// draws a seed per image.
	SharedSeed bool
	SeedSource func() int64
	Logger     *slog.Logger
}

func (s *ImageStepImpl) Execute(ctx context.Context, pipelineContext *pipeline_type.Context) error {
	run := pipelineContext.Run
	seedSource := s.SeedSource
	if seedSource == nil {
		seedSource = image_service.RandomSeed
	}

	s.Logger.Info("Generating images",
		slog.String("run_id", run.ID),
		slog.Int("count", len(pipelineContext.Scenes)),
		slog.Int64("seed", pipelineContext.Seed),
		slog.Bool("shared_seed", s.SharedSeed))

	if s.Limiter != nil {
		s.Limiter.Start()
	}

	saved := 0
	for i, scene := range pipelineContext.Scenes {
		index := i + 1
		if s.Limiter != nil {
			if _, err := s.Limiter.Wait(ctx, i); err != nil {
				return fmt.Errorf("image generation interrupted: %w", err)
			}
		}

		seed := pipelineContext.Seed
		if !s.SharedSeed {
			seed = seedSource()
		}

		path, err := s.generate(ctx, run, index, scene.ImageDescription, seed)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("image generation interrupted: %w", ctx.Err())
			}
			s.Logger.Error("Failed to retrieve or save image",
				slog.String("run_id", run.ID),
				slog.Int("index", index),
				slog.String("error", err.Error()))
			run.Fail(index, artifact.KindImage, err.Error())
			pipelineContext.AddResult(ImageStepType, pipeline_type.Failed(index, err.Error()))
			continue
		}

		run.Record(index, artifact.KindImage, path)
		pipelineContext.AddResult(ImageStepType, pipeline_type.OK(index, path))
		saved++
		s.Logger.Info("Image saved",
			slog.String("run_id", run.ID),
			slog.Int("index", index),
			slog.Int("total", len(pipelineContext.Scenes)),
			slog.String("path", path))
	}

	pipelineContext.SetStepOutput(ImageStepType, saved)
	return nil
}

func (s *ImageStepImpl) generate(ctx context.Context, run *artifact.Run, index int, description string, seed int64) (string, error) {
	data, err := s.Generator.GenerateImage(ctx, image_service.BuildPrompt(description), seed)
	if err != nil {
		return "", err
	}

	path := run.Path(artifact.KindImage, index)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	return path, nil
}

func (s *ImageStepImpl) GetType() string {
	return ImageStepType
}
