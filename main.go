package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stravasync",
	Short: "StravaSync exports Strava activities to a JSON document on Google Drive",
	Long: `StravaSync is a CLI application that:
1. Authenticates with the Strava API and Google Drive
2. Fetches recent activities in weekly batches, including lap splits
3. Merges them into the previously exported JSON document, deduplicating by id
4. Prunes workouts older than the retention window and uploads the result
5. Records each export run in a SQLite database`,
}

// Root command flags
var configPath string

func main() {
	Execute()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the JSON config file")
}
