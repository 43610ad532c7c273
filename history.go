package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sstent/stravasync/internal/config"
	"github.com/sstent/stravasync/internal/db"
)

// History command flags
var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent export runs",
	Long:  `Lists recent export runs recorded in the local SQLite database, newest first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		runs, err := db.Open(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open run database: %w", err)
		}
		defer runs.Close()

		recent, err := runs.RecentRuns(historyLimit)
		if err != nil {
			return fmt.Errorf("failed to get runs: %w", err)
		}

		if len(recent) == 0 {
			fmt.Println("No export runs recorded yet")
			return nil
		}

		for _, run := range recent {
			status := "✅"
			if run.Status != "ok" {
				status = "❌"
			}
			fmt.Printf("%s Run %d | %s | fetched=%d added=%d pruned=%d total=%d\n",
				status, run.ID,
				run.StartedAt.Format("2006-01-02 15:04:05"),
				run.Fetched, run.Added, run.Pruned, run.Total)
			if run.Error != "" {
				fmt.Printf("   error: %s\n", run.Error)
			}
		}

		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to show")

	rootCmd.AddCommand(historyCmd)
}
