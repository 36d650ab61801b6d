package video

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
)

type execRunner struct {
	logger *slog.Logger
}

// NewExecRunner runs commands on the host, logging stderr when they fail.
func NewExecRunner(logger *slog.Logger) CommandRunner {
	return &execRunner{logger: logger}
}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.logger.Debug("Executing command",
		slog.String("command", name),
		slog.String("args", strings.Join(args, " ")))

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", name, err)
	}

	stderrOutput, _ := io.ReadAll(stderr)

	if err := cmd.Wait(); err != nil {
		r.logger.Error("Command execution failed",
			slog.String("command", name),
			slog.String("error", err.Error()),
			slog.String("stderr", tail(string(stderrOutput), 4000)))
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}

	return stdout.Bytes(), nil
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
