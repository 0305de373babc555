package verify

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dfwcyc/audio-normalizer/models"
	"github.com/dfwcyc/audio-normalizer/pkg/ffmpeg"
	"github.com/dfwcyc/audio-normalizer/pkg/loudness"
	"github.com/dfwcyc/audio-normalizer/pkg/scan"
	"github.com/urfave/cli/v2"
)

// VerifyAction is the `aun verify` entry point. Default mode checks the
// normalized tree against the compliance bands; --source measures the source
// tree for diagnostic comparison without judging it.
func VerifyAction(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}
	if c.IsSet("src") {
		cfg.SourceDir = c.String("src")
	}
	if c.IsSet("dest") {
		cfg.OutputDir = c.String("dest")
	}
	if c.IsSet("ffmpeg") {
		cfg.FFmpegBin = c.String("ffmpeg")
	}

	checkSource := c.Bool("source")
	targetDir := cfg.OutputDir
	dirName := "normalized"
	if checkSource {
		targetDir = cfg.SourceDir
		dirName = "source"
	}

	runner, err := ffmpeg.NewExecRunner(cfg.FFmpegBin)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}

	fmt.Println("Audio Verification")
	fmt.Println(strings.Repeat("=", 50))
	if checkSource {
		fmt.Println("Analyzing source files loudness levels")
	} else {
		fmt.Println("Checking normalized files against broadcast standards")
	}
	fmt.Printf("%s\n\n", strings.Repeat("=", 50))

	singleFile := c.NArg() > 0
	var files []models.AudioFile
	if singleFile {
		arg := c.Args().First()
		if !checkSource {
			// All normalized output is MP3 whatever the source container was.
			arg = scan.AsMP3(arg)
		}
		f, err := scan.ResolveSingle(targetDir, arg)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
		}
		fmt.Printf("Single file mode (%s): %s\n\n", dirName, f.RelPath)
		files = []models.AudioFile{f}
	} else {
		fmt.Printf("Scanning %s directory...\n\n", dirName)
		files, err = scan.Discover(targetDir)
		if err != nil {
			msg := fmt.Sprintf("Error: %v", err)
			if !checkSource {
				msg += "\nRun `aun normalize` first."
			}
			return cli.Exit(msg, 1)
		}
	}

	if len(files) == 0 {
		fmt.Printf("No %s files found\n", dirName)
		return nil
	}

	v := &Verifier{
		Analyzer: &loudness.Analyzer{Runner: runner, Targets: cfg.Targets},
		Targets:  cfg.Targets,
	}

	compliant, nonCompliant, failed := 0, 0, 0
	for i, f := range files {
		fmt.Printf("[%d/%d] %s\n", i+1, len(files), f.RelPath)

		rep := v.ReportFile(c.Context, f, !checkSource)
		switch {
		case rep.Err != nil:
			failed++
			logger.Error("failed to analyze file", "file", f.RelPath, "error", rep.Err)
			fmt.Println("  ✗ failed to analyze")
		case !rep.Judged:
			fmt.Printf("  LUFS: %.1f | Peak: %.1f dBTP\n", rep.IntegratedLUFS, rep.TruePeakDBTP)
		case rep.WithinTolerance:
			compliant++
			fmt.Printf("  ✓ LUFS: %.1f (target: %.1f±%.1f) | Peak: %.1f dBTP\n",
				rep.IntegratedLUFS, cfg.Targets.IntegratedLUFS, LUFSTolerance, rep.TruePeakDBTP)
		default:
			nonCompliant++
			fmt.Printf("  ✗ LUFS: %.1f (target: %.1f±%.1f) | Peak: %.1f dBTP\n",
				rep.IntegratedLUFS, cfg.Targets.IntegratedLUFS, LUFSTolerance, rep.TruePeakDBTP)
			for _, issue := range rep.Issues {
				fmt.Printf("    → %s\n", issue)
			}
		}
		fmt.Println()
	}

	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("Summary:")

	if !checkSource && !singleFile {
		srcCount, destCount, match := ReconcileCounts(cfg.SourceDir, cfg.OutputDir)
		if match {
			fmt.Printf("  ✓ file count matches source (%d files)\n", destCount)
		} else {
			fmt.Printf("  ⚠ file count mismatch: %d source, %d normalized\n", srcCount, destCount)
		}
	}

	if checkSource {
		fmt.Printf("  analyzed %d source files (informational)\n", len(files)-failed)
	} else {
		checked := len(files) - failed
		if compliant == checked && checked > 0 {
			fmt.Printf("  ✓ all files at target loudness (%.1f LUFS ±%.1f)\n",
				cfg.Targets.IntegratedLUFS, LUFSTolerance)
		} else {
			fmt.Printf("  ⚠ %d/%d files compliant\n", compliant, checked)
		}
		if nonCompliant > 0 {
			fmt.Println("  consider re-running `aun normalize`")
		}
	}
	if failed > 0 {
		fmt.Printf("  ✗ failed to analyze: %d\n", failed)
	}

	return nil
}
