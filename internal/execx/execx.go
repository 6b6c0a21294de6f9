// Package execx runs the external tools the pipeline depends on
// (yt-dlp, ffmpeg, whisper). The interface exists so packages that shell
// out stay testable without the binaries installed.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes an external command and returns its stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

type runner struct{}

func New() Runner {
	return runner{}
}

// ErrToolNotFound marks a missing binary so callers can report an
// actionable message ("is it installed and on PATH?").
var ErrToolNotFound = errors.New("tool not found")

func (runner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: %s is not installed or not on PATH", ErrToolNotFound, name)
		}
		// Include stderr: ffmpeg and friends put their diagnostics there.
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return "", fmt.Errorf("%s: %w", name, err)
	}

	return stdout.String(), nil
}
