package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/sstent/stravasync/internal/config"
	"github.com/sstent/stravasync/internal/db"
	"github.com/sstent/stravasync/internal/drive"
	"github.com/sstent/stravasync/internal/export"
	"github.com/sstent/stravasync/internal/strava"
)

// Export command flags
var daysBack int

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recent Strava activities to Google Drive",
	Long: `Fetches activities newer than the last exported workout (in weekly
batches), merges them into the stored JSON export, prunes workouts older
than the retention window and uploads the result to Google Drive.

The remote file is only overwritten after the merged document has been
fully built, so a failed run leaves the previous export untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cmd.Flags().Changed("days-back") {
			cfg.DaysBack = daysBack
		}

		runs, err := db.Open(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open run database: %w", err)
		}
		defer runs.Close()

		started := time.Now().UTC()
		result, runErr := runExport(cmd.Context(), cfg, logger)

		run := db.Run{
			StartedAt:  started,
			FinishedAt: time.Now().UTC(),
			Status:     "ok",
		}
		if runErr != nil {
			run.Status = "error"
			run.Error = runErr.Error()
		} else {
			run.Fetched = result.Fetched
			run.Added = result.Added
			run.Pruned = result.Pruned
			run.Total = result.Total
		}
		if err := runs.RecordRun(run); err != nil {
			logger.Warn("failed to record run", "error", err)
		}

		if runErr != nil {
			logger.Error("export failed, previous remote export left untouched", "error", runErr)
			return runErr
		}

		logger.Info("export complete",
			"fetched", result.Fetched, "added", result.Added,
			"pruned", result.Pruned, "total", result.Total)
		return nil
	},
}

func runExport(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*export.Result, error) {
	tokens := strava.NewTokenProvider(cfg, logger)
	client := strava.NewClient(cfg, tokens, logger)

	svc, err := drive.NewService(ctx, cfg.GoogleCredentialsPath, cfg.GoogleTokenPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Drive client: %w", err)
	}
	store := drive.NewStore(svc, cfg.LocalExportPath, logger)

	reconciler := export.NewReconciler(client, store, cfg.RemoteFilename, cfg.DaysBack, logger)
	return reconciler.Run(ctx)
}

func init() {
	exportCmd.Flags().IntVar(&daysBack, "days-back", export.DefaultDaysBack, "Number of days to look back for activities")

	rootCmd.AddCommand(exportCmd)
}
