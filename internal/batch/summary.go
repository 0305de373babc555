package batch

import (
	"fmt"
	"io"
	"strings"

	"github.com/dfwcyc/audio-normalizer/models"
)

func tally(s *models.RunSummary, r models.NormalizationResult) {
	switch r.Status {
	case models.StatusSucceeded:
		s.Succeeded++
	case models.StatusFailed:
		s.Failed++
	case models.StatusSkipped:
		s.Skipped++
	}
	if r.Silent() {
		s.Silent++
	}
}

func marker(r models.NormalizationResult) string {
	switch r.Status {
	case models.StatusSucceeded:
		return "✓"
	case models.StatusSkipped:
		return "↷"
	default:
		return "✗"
	}
}

// printProgress emits one progress block per completed file: index, total,
// percentage, relative path, then detail lines for the interesting cases.
func printProgress(w io.Writer, done, total int, r models.NormalizationResult) {
	pct := 0
	if total > 0 {
		pct = done * 100 / total
	}
	fmt.Fprintf(w, "[%d/%d] %3d%% %s %s\n", done, total, pct, marker(r), r.Source.RelPath)

	switch {
	case r.Status == models.StatusSkipped:
		fmt.Fprintln(w, "  already normalized, skipping")
	case r.Status == models.StatusFailed:
		fmt.Fprintf(w, "  error: %v\n", r.Err)
	case r.SinglePass:
		fmt.Fprintln(w, "  measurement unavailable, used single-pass mode")
	case r.Measurement != nil && r.Measurement.Silent():
		fmt.Fprintf(w, "  current: %.1f LUFS (low signal / silent)\n", r.Measurement.InputI)
	case r.Measurement != nil:
		fmt.Fprintf(w, "  current: %.1f LUFS\n", r.Measurement.InputI)
	}
}

// PrintSummary renders the end-of-run totals. Every file lands in exactly
// one of the counters, so nothing is silently dropped.
func PrintSummary(w io.Writer, s models.RunSummary, destRoot string) {
	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 50))
	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  ✓ succeeded: %d\n", s.Succeeded)
	if s.Skipped > 0 {
		fmt.Fprintf(w, "  ↷ skipped (already normalized): %d\n", s.Skipped)
	}
	if s.Failed > 0 {
		fmt.Fprintf(w, "  ✗ failed: %d\n", s.Failed)
	}
	if s.Silent > 0 {
		fmt.Fprintf(w, "  low-signal files: %d\n", s.Silent)
	}
	fmt.Fprintf(w, "  total files: %d\n", s.Total)
	fmt.Fprintf(w, "\nNormalized files saved to: %s\n", destRoot)
}
