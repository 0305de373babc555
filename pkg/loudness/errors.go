package loudness

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedMeasurement means ffmpeg ran but its stderr did not contain a
// parseable loudnorm JSON block. The caller falls back to single-pass
// normalization instead of failing the file.
var ErrMalformedMeasurement = errors.New("loudnorm output not parseable")

// AnalysisError means the measurement pass itself exited non-zero.
type AnalysisError struct {
	Path   string
	Detail string
	Err    error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis of %s failed: %v: %s", e.Path, e.Err, e.Detail)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// NormalizationError means the apply pass failed for one file. Non-fatal at
// the batch level: the file is recorded as failed and the run continues.
type NormalizationError struct {
	Path   string
	Detail string
	Err    error
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalization of %s failed: %v: %s", e.Path, e.Err, e.Detail)
}

func (e *NormalizationError) Unwrap() error { return e.Err }

// FilesystemError means mirroring or the final rename failed, as opposed to
// ffmpeg itself.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }

const errTailLines = 4

// tail keeps only the last few non-empty stderr lines, which is where ffmpeg
// puts the actual failure reason.
func tail(stderr string) string {
	var lines []string
	for _, l := range strings.Split(stderr, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, strings.TrimSpace(l))
		}
	}
	if len(lines) > errTailLines {
		lines = lines[len(lines)-errTailLines:]
	}
	return strings.Join(lines, " | ")
}
