package video

import (
	"context"
)

// MuxParams describes one animated clip paired with its narration.
type MuxParams struct {
	VideoPath  string
	AudioPath  string
	OutputPath string
	Duration   float64
}

// ConcatParams describes the final composition.
type ConcatParams struct {
	ClipPaths  []string
	OutputPath string
	Width      int
	Height     int
	FPS        int
}

// FFmpegExecutor handles probing and encoding
type FFmpegExecutor interface {
	GetAudioDuration(ctx context.Context, filePath string) (float64, error)
	MuxClip(ctx context.Context, params MuxParams) error
	ConcatClips(ctx context.Context, params ConcatParams) error
}

// ParallaxRenderer turns a still image into an animated clip of the given duration.
type ParallaxRenderer interface {
	Render(ctx context.Context, imagePath, outputPath string, duration float64) error
}

// CommandRunner executes an external program and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// VideoGenerationError represents errors in the video generation process
type VideoGenerationError struct {
	Stage string
	Err   error
}

func (e *VideoGenerationError) Error() string {
	return e.Stage + ": " + e.Err.Error()
}

func (e *VideoGenerationError) Unwrap() error {
	return e.Err
}
