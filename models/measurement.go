package models

// LoudnessMeasurement is the parsed first-pass loudnorm output for one file.
// Produced by the analyzer, consumed immediately by the normalizer for the
// same file; never persisted.
type LoudnessMeasurement struct {
	InputI       float64 // integrated loudness, LUFS
	InputLRA     float64 // loudness range, LU
	InputTP      float64 // true peak, dBTP
	InputThresh  float64 // gating threshold, LUFS
	TargetOffset float64 // linear gain offset for the second pass
}

// silenceFloorLUFS: loudnorm reports around -99 LUFS (or -inf) for input with
// no usable signal. Anything at or below this floor is treated as silence.
const silenceFloorLUFS = -70.0

// Silent reports whether the measurement indicates no usable signal. A silent
// measurement is still a successful one; it is surfaced in the run summary,
// not treated as an error.
func (m LoudnessMeasurement) Silent() bool {
	return m.InputI <= silenceFloorLUFS
}
