package video

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// FFmpegExecutorImpl implements the FFmpegExecutor interface
type FFmpegExecutorImpl struct {
	logger *slog.Logger
	runner CommandRunner
}

// NewFFmpegExecutor creates a new FFmpeg executor instance
func NewFFmpegExecutor(logger *slog.Logger, runner CommandRunner) *FFmpegExecutorImpl {
	if runner == nil {
		runner = NewExecRunner(logger)
	}
	return &FFmpegExecutorImpl{
		logger: logger,
		runner: runner,
	}
}

// GetAudioDuration gets the duration of an audio file using ffprobe
func (fe *FFmpegExecutorImpl) GetAudioDuration(ctx context.Context, filePath string) (float64, error) {
	output, err := fe.runner.Run(ctx, "ffprobe", "-i", filePath, "-show_entries", "format=duration", "-v", "quiet", "-of", "csv=p=0")
	if err != nil {
		return 0, fmt.Errorf("ffprobe execution failed: %w", err)
	}
	return parseDuration(string(output))
}

func parseDuration(output string) (float64, error) {
	durationStr := strings.TrimSpace(output)
	duration, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration %q: %w", durationStr, err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("non-positive duration %v", duration)
	}
	return duration, nil
}

// MuxClip lays the narration under the animated clip, cut to the narration length.
func (fe *FFmpegExecutorImpl) MuxClip(ctx context.Context, params MuxParams) error {
	if err := fe.run(ctx, muxArgs(params)); err != nil {
		return &VideoGenerationError{Stage: "mux", Err: err}
	}
	fe.logger.Debug("Clip muxed",
		slog.String("output", params.OutputPath),
		slog.Float64("duration", params.Duration))
	return nil
}

func muxArgs(params MuxParams) []string {
	video := ffmpeg.Input(params.VideoPath).Video()
	audio := ffmpeg.Input(params.AudioPath).Audio()
	return ffmpeg.Output([]*ffmpeg.Stream{video, audio}, params.OutputPath, ffmpeg.KwArgs{
		"c:v":     "libx264",
		"c:a":     "aac",
		"pix_fmt": "yuv420p",
		"t":       fmt.Sprintf("%.3f", params.Duration),
	}).OverWriteOutput().GetArgs()
}

// ConcatClips composes the clips in the given order onto a fixed canvas.
// Each clip is scaled to fit and centered, then the normalized clips are
// joined without a second encode.
func (fe *FFmpegExecutorImpl) ConcatClips(ctx context.Context, params ConcatParams) error {
	if len(params.ClipPaths) == 0 {
		return &VideoGenerationError{Stage: "concat", Err: fmt.Errorf("no clips to concatenate")}
	}

	workDir, err := os.MkdirTemp("", "shortsmith-concat-*")
	if err != nil {
		return &VideoGenerationError{Stage: "concat", Err: fmt.Errorf("failed to create work directory: %w", err)}
	}
	defer os.RemoveAll(workDir)

	var list strings.Builder
	for i, clip := range params.ClipPaths {
		normalized := filepath.Join(workDir, fmt.Sprintf("%03d.mp4", i))
		if err := fe.run(ctx, normalizeArgs(clip, normalized, params)); err != nil {
			return &VideoGenerationError{Stage: "normalize", Err: fmt.Errorf("%s: %w", clip, err)}
		}
		fmt.Fprintf(&list, "file '%s'\n", escapeConcatPath(normalized))
	}

	listPath := filepath.Join(workDir, "concat.txt")
	if err := os.WriteFile(listPath, []byte(list.String()), 0644); err != nil {
		return &VideoGenerationError{Stage: "concat", Err: fmt.Errorf("failed to write concat list: %w", err)}
	}

	if err := fe.run(ctx, concatArgs(listPath, params.OutputPath)); err != nil {
		return &VideoGenerationError{Stage: "concat", Err: err}
	}

	fe.logger.Info("Clips concatenated",
		slog.Int("clip_count", len(params.ClipPaths)),
		slog.String("output", params.OutputPath))
	return nil
}

func normalizeArgs(input, output string, params ConcatParams) []string {
	in := ffmpeg.Input(input)
	width, height := strconv.Itoa(params.Width), strconv.Itoa(params.Height)
	video := in.Video().
		Filter("scale", ffmpeg.Args{width, height}, ffmpeg.KwArgs{"force_original_aspect_ratio": "decrease"}).
		Filter("pad", ffmpeg.Args{width, height, "(ow-iw)/2", "(oh-ih)/2"}, ffmpeg.KwArgs{"color": "black"}).
		Filter("setsar", ffmpeg.Args{"1"}).
		Filter("fps", ffmpeg.Args{strconv.Itoa(params.FPS)})

	return ffmpeg.Output([]*ffmpeg.Stream{video, in.Audio()}, output, ffmpeg.KwArgs{
		"c:v":     "libx264",
		"c:a":     "aac",
		"ar":      "44100",
		"ac":      "2",
		"pix_fmt": "yuv420p",
	}).OverWriteOutput().GetArgs()
}

// escapeConcatPath quotes a path for a single-quoted concat demuxer entry.
func escapeConcatPath(path string) string {
	return strings.ReplaceAll(path, "'", `'\''`)
}

func concatArgs(listPath, output string) []string {
	return ffmpeg.Input(listPath, ffmpeg.KwArgs{"f": "concat", "safe": "0"}).
		Output(output, ffmpeg.KwArgs{"c": "copy", "movflags": "+faststart"}).
		OverWriteOutput().
		GetArgs()
}

func (fe *FFmpegExecutorImpl) run(ctx context.Context, args []string) error {
	_, err := fe.runner.Run(ctx, "ffmpeg", args...)
	return err
}
