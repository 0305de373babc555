// Package verify re-measures audio files and reports compliance with the
// broadcast loudness target.
package verify

import (
	"context"
	"fmt"
	"math"

	"github.com/dfwcyc/audio-normalizer/models"
	"github.com/dfwcyc/audio-normalizer/pkg/loudness"
	"github.com/dfwcyc/audio-normalizer/pkg/scan"
)

// LUFSTolerance is the acceptance band around the integrated target. The
// true-peak ceiling has no band: measured peak must not exceed it at all.
const LUFSTolerance = 0.5

// Check classifies one measurement against the targets and names every
// violated constraint.
func Check(m *models.LoudnessMeasurement, targets models.LoudnessTargets) (bool, []string) {
	var issues []string
	if math.Abs(m.InputI-targets.IntegratedLUFS) > LUFSTolerance {
		issues = append(issues, fmt.Sprintf("LUFS %.1f (target: %.1f±%.1f)",
			m.InputI, targets.IntegratedLUFS, LUFSTolerance))
	}
	if m.InputTP > targets.TruePeakDBTP {
		issues = append(issues, fmt.Sprintf("peak %.1f dBTP exceeds %.1f dBTP",
			m.InputTP, targets.TruePeakDBTP))
	}
	return len(issues) == 0, issues
}

// Verifier re-runs the measurement pass against already-written files.
type Verifier struct {
	Analyzer *loudness.Analyzer
	Targets  models.LoudnessTargets
}

// ReportFile measures one file. With judge set the compliance bands are
// applied; without it the report carries the raw numbers only.
func (v *Verifier) ReportFile(ctx context.Context, f models.AudioFile, judge bool) models.ComplianceReport {
	rep := models.ComplianceReport{File: f}

	m, err := v.Analyzer.Measure(ctx, f.Path)
	if err != nil {
		rep.Err = err
		return rep
	}

	rep.IntegratedLUFS = m.InputI
	rep.TruePeakDBTP = m.InputTP
	if judge {
		rep.Judged = true
		rep.WithinTolerance, rep.Issues = Check(m, v.Targets)
	}
	return rep
}

// ReconcileCounts counts discoverable audio files on each side of the
// mirror. A missing side counts as zero.
func ReconcileCounts(sourceRoot, destRoot string) (srcCount, destCount int, match bool) {
	srcCount = scan.Count(sourceRoot)
	destCount = scan.Count(destRoot)
	return srcCount, destCount, srcCount == destCount
}
