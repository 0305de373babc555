package loudness

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dfwcyc/audio-normalizer/models"
)

// encodeRunner pretends to be ffmpeg's apply pass: on success it writes the
// output file (the last argument), on failure it writes nothing.
type encodeRunner struct {
	fail  bool
	calls [][]string
}

func (r *encodeRunner) Run(_ context.Context, args ...string) (string, error) {
	r.calls = append(r.calls, args)
	if r.fail {
		return "track.mp3: Invalid data found when processing input\n", errors.New("exit status 1")
	}
	out := args[len(args)-1]
	if err := os.WriteFile(out, []byte("mp3 payload"), 0o644); err != nil {
		return "", err
	}
	return "", nil
}

func testTargets() models.LoudnessTargets {
	return models.LoudnessTargets{IntegratedLUFS: -16.0, RangeLU: 7.0, TruePeakDBTP: -1.0}
}

func newTestNormalizer(r *encodeRunner) *Normalizer {
	return &Normalizer{Runner: r, Targets: testTargets(), Bitrate: "192k", SampleRate: 44100}
}

func TestNormalizeTwoPass(t *testing.T) {
	runner := &encodeRunner{}
	n := newTestNormalizer(runner)
	dest := filepath.Join(t.TempDir(), "out", "track.mp3")

	m := &models.LoudnessMeasurement{
		InputI: -23.04, InputTP: -5.83, InputLRA: 6.90, InputThresh: -33.49, TargetOffset: 0.21,
	}
	if err := n.Normalize(context.Background(), "in/track.mp3", dest, m); err != nil {
		t.Fatalf("Normalize() failed: %v", err)
	}

	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("destination file missing: %v", err)
	}
	if _, err := os.Stat(dest + partialSuffix); err == nil {
		t.Error("partial file left behind after successful rename")
	}

	args := strings.Join(runner.calls[0], " ")
	for _, want := range []string{
		"loudnorm=I=-16.0:TP=-1.0:LRA=7.0",
		"measured_I=-23.04",
		"measured_TP=-5.83",
		"measured_LRA=6.90",
		"measured_thresh=-33.49",
		"offset=0.21",
		"linear=true",
		"-ar 44100",
		"-b:a 192k",
		"-c:a libmp3lame",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("ffmpeg args missing %q: %s", want, args)
		}
	}
}

func TestNormalizeSinglePass(t *testing.T) {
	runner := &encodeRunner{}
	n := newTestNormalizer(runner)
	dest := filepath.Join(t.TempDir(), "track.mp3")

	if err := n.Normalize(context.Background(), "in/track.mp3", dest, nil); err != nil {
		t.Fatalf("Normalize() failed: %v", err)
	}

	args := strings.Join(runner.calls[0], " ")
	if !strings.Contains(args, "loudnorm=I=-16.0:TP=-1.0:LRA=7.0") {
		t.Errorf("single-pass filter missing from args: %s", args)
	}
	if strings.Contains(args, "measured_I") {
		t.Errorf("single-pass args carry measured values: %s", args)
	}
}

func TestNormalizeCreatesParentDirs(t *testing.T) {
	runner := &encodeRunner{}
	n := newTestNormalizer(runner)
	dest := filepath.Join(t.TempDir(), "a", "b", "c", "track.mp3")

	if err := n.Normalize(context.Background(), "in/track.mp3", dest, nil); err != nil {
		t.Fatalf("Normalize() failed: %v", err)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("destination file missing: %v", err)
	}
}

func TestNormalizeFailureLeavesNoOutput(t *testing.T) {
	runner := &encodeRunner{fail: true}
	n := newTestNormalizer(runner)
	dest := filepath.Join(t.TempDir(), "track.mp3")

	err := n.Normalize(context.Background(), "in/bad.mp3", dest, nil)
	var normErr *NormalizationError
	if !errors.As(err, &normErr) {
		t.Fatalf("Normalize() error = %v, want *NormalizationError", err)
	}
	if normErr.Detail == "" {
		t.Error("NormalizationError.Detail is empty, want captured stderr")
	}

	if _, statErr := os.Stat(dest); statErr == nil {
		t.Error("destination file exists after failed normalization")
	}
	if _, statErr := os.Stat(dest + partialSuffix); statErr == nil {
		t.Error("partial file left behind after failure")
	}
}

func TestNormalizeMkdirFailure(t *testing.T) {
	runner := &encodeRunner{}
	n := newTestNormalizer(runner)

	// A file where a directory is needed makes MkdirAll fail.
	root := t.TempDir()
	blocker := filepath.Join(root, "blocked")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := n.Normalize(context.Background(), "in/track.mp3", filepath.Join(blocker, "track.mp3"), nil)
	var fsErr *FilesystemError
	if !errors.As(err, &fsErr) {
		t.Fatalf("Normalize() error = %v, want *FilesystemError", err)
	}
	if len(runner.calls) != 0 {
		t.Error("ffmpeg invoked despite mirroring failure")
	}
}
