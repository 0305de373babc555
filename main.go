package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dfwcyc/audio-normalizer/internal/batch"
	"github.com/dfwcyc/audio-normalizer/internal/history"
	"github.com/dfwcyc/audio-normalizer/internal/verify"
	"github.com/urfave/cli/v2"
)

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Usage: "path to YAML config file"},
		&cli.StringFlag{Name: "src", Usage: "source directory to read audio from"},
		&cli.StringFlag{Name: "dest", Usage: "destination directory for normalized output"},
		&cli.StringFlag{Name: "ffmpeg", Usage: "ffmpeg binary to use"},
		&cli.BoolFlag{Name: "quiet", Usage: "only log errors"},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:  "aun",
		Usage: "normalize audio loudness to broadcast standard and verify the results",
		Commands: []*cli.Command{
			{
				Name:      "normalize",
				Usage:     "two-pass loudness-normalize the source tree (or one file) into the destination tree",
				ArgsUsage: "[file]",
				Flags: append(commonFlags(),
					&cli.IntFlag{Name: "workers", Usage: "number of files to process in parallel", Value: 1},
					&cli.BoolFlag{Name: "no-history", Usage: "do not record this run in the history ledger"},
				),
				Action: batch.NormalizeAction,
			},
			{
				Name:      "verify",
				Usage:     "re-measure normalized files and report compliance with the loudness target",
				ArgsUsage: "[file]",
				Flags: append(commonFlags(),
					&cli.BoolFlag{Name: "source", Usage: "measure source files instead (informational, no pass/fail)"},
				),
				Action: verify.VerifyAction,
			},
			{
				Name:  "history",
				Usage: "list recorded normalization runs",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Usage: "path to YAML config file"},
					&cli.IntFlag{Name: "limit", Usage: "number of runs to show", Value: 20},
				},
				Action: history.Action,
			},
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
