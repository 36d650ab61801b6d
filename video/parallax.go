package video

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// CommandRenderer delegates to an external depth renderer. Template fields
// may contain {image}, {output}, {duration}, {fps}, {width} and {height}.
type CommandRenderer struct {
	Template string
	FPS      int
	Width    int
	Height   int

	runner CommandRunner
	logger *slog.Logger
}

func NewCommandRenderer(template string, fps, width, height int, runner CommandRunner, logger *slog.Logger) *CommandRenderer {
	if runner == nil {
		runner = NewExecRunner(logger)
	}
	return &CommandRenderer{
		Template: template,
		FPS:      fps,
		Width:    width,
		Height:   height,
		runner:   runner,
		logger:   logger,
	}
}

func (r *CommandRenderer) Render(ctx context.Context, imagePath, outputPath string, duration float64) error {
	fields := strings.Fields(r.Template)
	if len(fields) == 0 {
		return &VideoGenerationError{Stage: "parallax", Err: fmt.Errorf("empty renderer command")}
	}

	replacer := strings.NewReplacer(
		"{image}", imagePath,
		"{output}", outputPath,
		"{duration}", strconv.FormatFloat(duration, 'f', 3, 64),
		"{fps}", strconv.Itoa(r.FPS),
		"{width}", strconv.Itoa(r.Width),
		"{height}", strconv.Itoa(r.Height),
	)
	args := make([]string, len(fields)-1)
	for i, field := range fields[1:] {
		args[i] = replacer.Replace(field)
	}

	if _, err := r.runner.Run(ctx, fields[0], args...); err != nil {
		return &VideoGenerationError{Stage: "parallax", Err: err}
	}
	if _, err := os.Stat(outputPath); err != nil {
		return &VideoGenerationError{Stage: "parallax", Err: fmt.Errorf("renderer produced no output: %w", err)}
	}
	return nil
}

// ZoompanRenderer is the built-in fallback: a slow centered push-in over the still.
type ZoompanRenderer struct {
	FPS     int
	Size    int
	MaxZoom float64

	runner CommandRunner
	logger *slog.Logger
}

func NewZoompanRenderer(fps, size int, runner CommandRunner, logger *slog.Logger) *ZoompanRenderer {
	if runner == nil {
		runner = NewExecRunner(logger)
	}
	return &ZoompanRenderer{
		FPS:     fps,
		Size:    size,
		MaxZoom: 1.15,
		runner:  runner,
		logger:  logger,
	}
}

func (r *ZoompanRenderer) Render(ctx context.Context, imagePath, outputPath string, duration float64) error {
	if duration <= 0 {
		return &VideoGenerationError{Stage: "parallax", Err: fmt.Errorf("invalid duration %v", duration)}
	}
	if _, err := r.runner.Run(ctx, "ffmpeg", r.args(imagePath, outputPath, duration)...); err != nil {
		return &VideoGenerationError{Stage: "parallax", Err: err}
	}
	return nil
}

func (r *ZoompanRenderer) args(imagePath, outputPath string, duration float64) []string {
	frames := int(duration*float64(r.FPS)) + 1
	zoomSpeed := (r.MaxZoom - 1.0) / float64(frames)
	size := fmt.Sprintf("%dx%d", r.Size, r.Size)

	// Upscale first so zoompan does not jitter on integer pixel offsets.
	stream := ffmpeg.Input(imagePath, ffmpeg.KwArgs{"loop": "1", "framerate": strconv.Itoa(r.FPS)}).
		Filter("scale", ffmpeg.Args{strconv.Itoa(r.Size * 4), "-1"}).
		Filter("zoompan", ffmpeg.Args{}, ffmpeg.KwArgs{
			"z":   fmt.Sprintf("min(1.0+%f*on,%.2f)", zoomSpeed, r.MaxZoom),
			"d":   "1",
			"x":   "iw/2-(iw/zoom/2)",
			"y":   "ih/2-(ih/zoom/2)",
			"s":   size,
			"fps": strconv.Itoa(r.FPS),
		})

	return stream.Output(outputPath, ffmpeg.KwArgs{
		"t":       fmt.Sprintf("%.3f", duration),
		"c:v":     "libx264",
		"pix_fmt": "yuv420p",
	}).OverWriteOutput().GetArgs()
}
