// Package loudness runs ffmpeg's two-pass loudnorm filter: a measurement
// pass that parses the JSON block loudnorm prints to stderr, and an apply
// pass that encodes the corrected output.
package loudness

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dfwcyc/audio-normalizer/models"
	"github.com/dfwcyc/audio-normalizer/pkg/ffmpeg"
)

// Analyzer performs the measurement pass against fixed loudness targets.
type Analyzer struct {
	Runner  ffmpeg.Runner
	Targets models.LoudnessTargets
}

// measurementJSON mirrors the block loudnorm emits with print_format=json.
// All values arrive as strings, some of which can be "-inf".
type measurementJSON struct {
	InputI       string `json:"input_i"`
	InputTP      string `json:"input_tp"`
	InputLRA     string `json:"input_lra"`
	InputThresh  string `json:"input_thresh"`
	TargetOffset string `json:"target_offset"`
}

// Measure runs the first pass: loudnorm in print-only mode, output discarded
// through the null muxer. Returns AnalysisError when ffmpeg exits non-zero
// and ErrMalformedMeasurement when the JSON block is missing or broken.
func (a *Analyzer) Measure(ctx context.Context, path string) (*models.LoudnessMeasurement, error) {
	filter := fmt.Sprintf("loudnorm=I=%.1f:TP=%.1f:LRA=%.1f:print_format=json",
		a.Targets.IntegratedLUFS, a.Targets.TruePeakDBTP, a.Targets.RangeLU)

	out, err := a.Runner.Run(ctx, "-hide_banner", "-nostats", "-i", path,
		"-af", filter, "-f", "null", "-")
	if err != nil {
		return nil, &AnalysisError{Path: path, Detail: tail(out), Err: err}
	}
	return ParseMeasurement(out)
}

// ParseMeasurement extracts the loudnorm JSON block from ffmpeg stderr. The
// block is the only {...} region loudnorm prints, surrounded by the usual
// banner and stream noise.
func ParseMeasurement(stderr string) (*models.LoudnessMeasurement, error) {
	start := strings.Index(stderr, "{")
	end := strings.LastIndex(stderr, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("%w: no JSON block in ffmpeg output", ErrMalformedMeasurement)
	}

	var raw measurementJSON
	if err := json.Unmarshal([]byte(stderr[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMeasurement, err)
	}

	m := &models.LoudnessMeasurement{}
	for _, f := range []struct {
		src string
		dst *float64
	}{
		{raw.InputI, &m.InputI},
		{raw.InputTP, &m.InputTP},
		{raw.InputLRA, &m.InputLRA},
		{raw.InputThresh, &m.InputThresh},
		{raw.TargetOffset, &m.TargetOffset},
	} {
		v, err := parseLoudnormValue(f.src)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}
	return m, nil
}

// parseLoudnormValue handles loudnorm's numeric strings. "-inf" shows up for
// silent input; it is mapped to the -99 sentinel the filter itself uses.
func parseLoudnormValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "-inf" {
		return -99.0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad value %q", ErrMalformedMeasurement, s)
	}
	return v, nil
}
