package models

// FileStatus is the terminal state of one file in a batch run.
type FileStatus string

const (
	StatusSucceeded FileStatus = "succeeded"
	StatusFailed    FileStatus = "failed"
	StatusSkipped   FileStatus = "skipped"
)

// AudioFile is one discovered input: its absolute path plus its position
// relative to the source root. The relative path determines where the output
// lands under the destination root.
type AudioFile struct {
	Path    string
	RelPath string
}

// NormalizationResult holds the outcome of processing one file.
type NormalizationResult struct {
	Source      AudioFile
	Destination string
	Status      FileStatus
	Err         error
	// Measurement is nil when the first pass failed and the normalizer fell
	// back to single-pass mode.
	Measurement *LoudnessMeasurement
	SinglePass  bool
}

// Silent reports whether this file measured as having no usable signal.
func (r NormalizationResult) Silent() bool {
	return r.Measurement != nil && r.Measurement.Silent()
}

// RunSummary aggregates a whole batch. Ephemeral: rendered to the console
// (and optionally the run-history ledger) at the end of a run.
type RunSummary struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
	Silent    int
}

// ComplianceReport is the verifier's verdict on one file. In source mode the
// measurement is informational: Judged stays false and no tolerance is
// applied.
type ComplianceReport struct {
	File            AudioFile
	IntegratedLUFS  float64
	TruePeakDBTP    float64
	Judged          bool
	WithinTolerance bool
	Issues          []string
	Err             error
}
