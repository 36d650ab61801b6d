package video_step

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/serisow/shortsmith/artifact"
	"github.com/serisow/shortsmith/pipeline_type"
	"github.com/serisow/shortsmith/video"
)

const (
	ConcatStepType   = "concat_step"
	CombinedVideoKey = "combined_video"
	ConcatClipsKey   = "clip_count"
)

var ErrNoClips = errors.New("no assembled clips to concatenate")

// ConcatStepImpl joins the assembled clips in numeric index order into the
// run's combined video.
type ConcatStepImpl struct {
	FFmpeg video.FFmpegExecutor
	Width  int
	Height int
	FPS    int
	Logger *slog.Logger
}

func (s *ConcatStepImpl) Execute(ctx context.Context, pipelineContext *pipeline_type.Context) error {
	run := pipelineContext.Run

	var paths []string
	for _, i := range run.Complete(artifact.KindClip) {
		path, _ := run.Lookup(i, artifact.KindClip)
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		return ErrNoClips
	}

	ordered, err := artifact.SortByIndex(paths)
	if err != nil {
		return fmt.Errorf("failed to order clips: %w", err)
	}

	output := run.CombinedPath()
	s.Logger.Info("Concatenating clips",
		slog.String("run_id", run.ID),
		slog.Int("clip_count", len(ordered)),
		slog.Int("scene_count", len(pipelineContext.Scenes)))

	err = s.FFmpeg.ConcatClips(ctx, video.ConcatParams{
		ClipPaths:  ordered,
		OutputPath: output,
		Width:      s.Width,
		Height:     s.Height,
		FPS:        s.FPS,
	})
	if err != nil {
		return fmt.Errorf("failed to concatenate clips: %w", err)
	}

	pipelineContext.SetStepOutput(CombinedVideoKey, output)
	pipelineContext.SetStepOutput(ConcatClipsKey, len(ordered))
	s.Logger.Info("Combined video written",
		slog.String("run_id", run.ID),
		slog.String("path", output))
	return nil
}

func (s *ConcatStepImpl) GetType() string {
	return ConcatStepType
}
