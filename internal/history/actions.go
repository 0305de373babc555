// Package history exposes the recorded run ledger on the CLI.
package history

import (
	"fmt"
	"strings"

	"github.com/dfwcyc/audio-normalizer/models"
	"github.com/dfwcyc/audio-normalizer/pkg/db"
	"github.com/urfave/cli/v2"
)

// Action lists recorded batch runs in a table, newest first.
func Action(c *cli.Context) error {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}

	database, err := db.Open(cfg.HistoryDB)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded")
		return nil
	}

	fmt.Printf("%-6s %-20s %-8s %-10s %-8s %-8s %-8s %s\n",
		"ID", "Started", "Total", "Succeeded", "Failed", "Skipped", "Silent", "Source -> Dest")
	fmt.Println(strings.Repeat("-", 100))

	for _, r := range runs {
		fmt.Printf("%-6d %-20s %-8d %-10d %-8d %-8d %-8d %s -> %s\n",
			r.RunID,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Total,
			r.Succeeded,
			r.Failed,
			r.Skipped,
			r.Silent,
			r.SourceRoot,
			r.DestRoot,
		)
	}

	fmt.Printf("\nTotal: %d runs\n", len(runs))
	return nil
}
