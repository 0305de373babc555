// Package batch drives the normalization pipeline over a mirrored directory
// tree: discover, skip-if-present, analyze, normalize, aggregate.
package batch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/dfwcyc/audio-normalizer/models"
	"github.com/dfwcyc/audio-normalizer/pkg/db"
	"github.com/dfwcyc/audio-normalizer/pkg/loudness"
	"github.com/dfwcyc/audio-normalizer/pkg/scan"
)

// Job is one file dispatched to a worker.
type Job struct {
	Index int
	File  models.AudioFile
}

// Options control a single batch run.
type Options struct {
	SourceRoot string
	DestRoot   string
	Workers    int
}

// Driver wires the analyzer and normalizer into the per-file state machine:
// Pending -> Skipped | Analyzing -> Normalizing -> Succeeded | Failed.
type Driver struct {
	Analyzer   *loudness.Analyzer
	Normalizer *loudness.Normalizer
	Logger     *slog.Logger
	History    *db.DB    // nil disables the run ledger
	Out        io.Writer // progress stream; defaults to stdout
}

func (d *Driver) out() io.Writer {
	if d.Out != nil {
		return d.Out
	}
	return os.Stdout
}

// Run processes every file and returns the aggregate summary plus per-file
// results. Per-file errors never escape this method; they become failed
// results and the batch continues.
func (d *Driver) Run(ctx context.Context, opts Options, files []models.AudioFile) (models.RunSummary, []models.NormalizationResult) {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	if err := os.MkdirAll(opts.DestRoot, 0o755); err != nil {
		d.Logger.Error("failed to create destination root", "dir", opts.DestRoot, "error", err)
	}

	history := d.History
	var runID int64
	if history != nil {
		id, err := history.CreateRun(opts.SourceRoot, opts.DestRoot)
		if err != nil {
			d.Logger.Warn("run history disabled for this run", "error", err)
			history = nil
		}
		runID = id
	}

	var wg sync.WaitGroup
	jobs := make(chan Job, len(files))
	results := make(chan models.NormalizationResult, len(files))

	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go d.worker(ctx, w, &wg, opts, jobs, results)
	}

	for i, f := range files {
		jobs <- Job{Index: i, File: f}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	summary := models.RunSummary{Total: len(files)}
	all := make([]models.NormalizationResult, 0, len(files))
	done := 0
	for res := range results {
		done++
		all = append(all, res)
		tally(&summary, res)
		printProgress(d.out(), done, len(files), res)
		if history != nil {
			if err := history.RecordFile(runID, res); err != nil {
				d.Logger.Warn("failed to record file in history", "file", res.Source.RelPath, "error", err)
			}
		}
	}

	if done < len(files) {
		d.Logger.Warn("run interrupted", "processed", done, "total", len(files))
	}

	if history != nil {
		if err := history.FinishRun(runID, summary); err != nil {
			d.Logger.Warn("failed to finish history run", "error", err)
		}
	}

	return summary, all
}

func (d *Driver) worker(ctx context.Context, id int, wg *sync.WaitGroup, opts Options, jobs <-chan Job, results chan<- models.NormalizationResult) {
	defer wg.Done()
	for job := range jobs {
		// Stop between files on interrupt. Files already renamed into place
		// stay valid; the in-flight ffmpeg is killed via the context and its
		// partial output removed.
		if ctx.Err() != nil {
			return
		}
		d.Logger.Info("processing file", "worker_id", id, "file", job.File.RelPath)
		results <- d.processFile(ctx, opts, job.File)
	}
}

func (d *Driver) processFile(ctx context.Context, opts Options, f models.AudioFile) models.NormalizationResult {
	res := models.NormalizationResult{
		Source:      f,
		Destination: filepath.Join(opts.DestRoot, scan.AsMP3(f.RelPath)),
	}

	if _, err := os.Stat(res.Destination); err == nil {
		res.Status = models.StatusSkipped
		return res
	}

	m, err := d.Analyzer.Measure(ctx, f.Path)
	if err != nil {
		// Both a failed run and an unparseable JSON block drop to
		// single-pass mode rather than failing the file.
		d.Logger.Warn("analysis failed, using single-pass mode", "file", f.RelPath, "error", err)
		res.SinglePass = true
	} else {
		res.Measurement = m
	}

	if err := d.Normalizer.Normalize(ctx, f.Path, res.Destination, res.Measurement); err != nil {
		d.Logger.Error("normalization failed", "file", f.RelPath, "error", err)
		res.Status = models.StatusFailed
		res.Err = err
		return res
	}

	res.Status = models.StatusSucceeded
	return res
}
