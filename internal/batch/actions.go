package batch

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dfwcyc/audio-normalizer/models"
	"github.com/dfwcyc/audio-normalizer/pkg/db"
	"github.com/dfwcyc/audio-normalizer/pkg/ffmpeg"
	"github.com/dfwcyc/audio-normalizer/pkg/loudness"
	"github.com/dfwcyc/audio-normalizer/pkg/scan"
	"github.com/urfave/cli/v2"
)

// NormalizeAction is the `aun normalize` entry point. Exit status is nonzero
// only when the batch could not start at all (missing source root, ffmpeg not
// resolvable); individual file failures are reported and exit zero.
func NormalizeAction(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}
	applyFlags(c, cfg)

	// Resolve ffmpeg before touching any file, so a missing tool can never
	// leave a half-processed tree.
	runner, err := ffmpeg.NewExecRunner(cfg.FFmpegBin)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}

	printHeader(cfg)

	var files []models.AudioFile
	if c.NArg() > 0 {
		f, err := scan.ResolveSingle(cfg.SourceDir, c.Args().First())
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
		}
		fmt.Printf("Single file mode: %s\n", f.RelPath)
		files = []models.AudioFile{f}
	} else {
		fmt.Println("Scanning for audio files...")
		files, err = scan.Discover(cfg.SourceDir)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
		}
	}

	if len(files) == 0 {
		fmt.Printf("No audio files found in %s\n", cfg.SourceDir)
		return nil
	}
	fmt.Printf("Found %d audio files\n\n", len(files))

	var history *db.DB
	if cfg.History {
		history, err = db.Open(cfg.HistoryDB)
		if err != nil {
			logger.Warn("run history disabled", "error", err)
		} else {
			defer history.Close()
		}
	}

	driver := &Driver{
		Analyzer: &loudness.Analyzer{Runner: runner, Targets: cfg.Targets},
		Normalizer: &loudness.Normalizer{
			Runner:     runner,
			Targets:    cfg.Targets,
			Bitrate:    cfg.Bitrate,
			SampleRate: cfg.SampleRate,
		},
		Logger:  logger,
		History: history,
	}

	opts := Options{SourceRoot: cfg.SourceDir, DestRoot: cfg.OutputDir, Workers: cfg.Workers}
	summary, _ := driver.Run(c.Context, opts, files)
	PrintSummary(os.Stdout, summary, cfg.OutputDir)
	return nil
}

func applyFlags(c *cli.Context, cfg *models.Config) {
	if c.IsSet("src") {
		cfg.SourceDir = c.String("src")
	}
	if c.IsSet("dest") {
		cfg.OutputDir = c.String("dest")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("ffmpeg") {
		cfg.FFmpegBin = c.String("ffmpeg")
	}
	if c.Bool("no-history") {
		cfg.History = false
	}
}

func printHeader(cfg *models.Config) {
	fmt.Println("Audio Normalizer")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Target: %.1f LUFS (Broadcast Standard)\n", cfg.Targets.IntegratedLUFS)
	fmt.Printf("%s\n\n", strings.Repeat("=", 50))
}
