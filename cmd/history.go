package cmd

import (
	"fmt"

	"scene-merge/core/config"
	"scene-merge/core/database"
	"scene-merge/core/history"
	"scene-merge/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var historyLimit int

// historyCmd lists recent merge runs from the database.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent merge runs",
	Long:  `Lists the most recent merge runs recorded in the history database, newest first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		l, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		records, err := history.NewStore(db).Recent(historyLimit)
		if err != nil {
			return err
		}

		if len(records) == 0 {
			l.Info("No merge runs recorded yet")
			return nil
		}

		for _, r := range records {
			l.Info("Merge run",
				zap.Uint("id", r.ID),
				zap.String("session_id", r.SessionID),
				zap.String("base", r.BaseName),
				zap.String("source", r.SourceName),
				zap.String("target", r.TargetName),
				zap.Int("actions", r.ActionCount),
				zap.Int("conflicts", r.ConflictCount),
				zap.Bool("applied", r.Applied),
				zap.Time("created_at", r.CreatedAt),
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list")
	RootCmd.AddCommand(historyCmd)
}
