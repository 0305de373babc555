// Package ffmpeg wraps invocation of the external ffmpeg binary. All
// diagnostics ffmpeg produces, including the loudnorm JSON block, arrive on
// stderr, so that is what Run captures and returns.
package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// ErrNotFound means the ffmpeg binary is not resolvable on PATH. This is
// checked before any file is touched, so a run never partially completes
// because of a missing tool.
var ErrNotFound = errors.New("ffmpeg binary not found")

// Runner executes ffmpeg with the given arguments and returns captured
// stderr output. Implemented by ExecRunner; tests substitute fakes.
type Runner interface {
	Run(ctx context.Context, args ...string) (stderr string, err error)
}

// ExecRunner invokes a real ffmpeg binary through os/exec.
type ExecRunner struct {
	Bin string
}

// NewExecRunner resolves the binary up front and fails fast if it is absent.
func NewExecRunner(bin string) (*ExecRunner, error) {
	if bin == "" {
		bin = "ffmpeg"
	}
	if _, err := exec.LookPath(bin); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, bin)
	}
	return &ExecRunner{Bin: bin}, nil
}

func (r *ExecRunner) Run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, r.Bin, args...)
	cmd.Env = append(os.Environ(), "LC_ALL=C")
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}
