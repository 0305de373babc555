package loudness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dfwcyc/audio-normalizer/models"
	"github.com/dfwcyc/audio-normalizer/pkg/ffmpeg"
)

// Normalizer performs the apply pass, encoding the corrected file to MP3 at
// a fixed bitrate and sample rate. The source file is never modified.
type Normalizer struct {
	Runner     ffmpeg.Runner
	Targets    models.LoudnessTargets
	Bitrate    string
	SampleRate int
}

// partialSuffix marks in-progress output. The destination name only appears
// once the rename succeeds, so an interrupted run can never leave a partial
// file that passes the already-normalized skip check.
const partialSuffix = ".partial"

// filterSpec builds the loudnorm filter string. With a measurement the second
// pass runs in linear mode using the measured statistics; without one it is
// plain single-pass loudnorm, less accurate but tolerant of input the
// measurement pass could not handle.
func (n *Normalizer) filterSpec(m *models.LoudnessMeasurement) string {
	base := fmt.Sprintf("loudnorm=I=%.1f:TP=%.1f:LRA=%.1f",
		n.Targets.IntegratedLUFS, n.Targets.TruePeakDBTP, n.Targets.RangeLU)
	if m == nil {
		return base
	}
	return base + fmt.Sprintf(
		":measured_I=%.2f:measured_TP=%.2f:measured_LRA=%.2f:measured_thresh=%.2f:offset=%.2f:linear=true",
		m.InputI, m.InputTP, m.InputLRA, m.InputThresh, m.TargetOffset)
}

// Normalize writes the loudness-corrected output for src at dest, creating
// missing destination directories. A nil measurement selects single-pass
// mode. Output is written next to dest and renamed into place on success.
func (n *Normalizer) Normalize(ctx context.Context, src, dest string, m *models.LoudnessMeasurement) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return &FilesystemError{Op: "create directory", Path: filepath.Dir(dest), Err: err}
	}

	tmp := dest + partialSuffix
	args := []string{
		"-hide_banner", "-nostats", "-y",
		"-i", src, "-vn",
		"-af", n.filterSpec(m),
		"-ar", strconv.Itoa(n.SampleRate),
		"-b:a", n.Bitrate,
		"-c:a", "libmp3lame",
		"-f", "mp3",
		tmp,
	}

	out, err := n.Runner.Run(ctx, args...)
	if err != nil {
		os.Remove(tmp)
		return &NormalizationError{Path: src, Detail: tail(out), Err: err}
	}

	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return &FilesystemError{Op: "finalize", Path: dest, Err: err}
	}
	return nil
}
