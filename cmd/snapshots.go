package cmd

import (
	"context"
	"fmt"

	"scene-merge/core/config"
	"scene-merge/core/logger"
	"scene-merge/core/snapshot"
	"scene-merge/core/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// snapshotsCmd lists the documents available in object storage.
var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List snapshot and comparison documents in storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		l, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}

		names, err := snapshot.NewLoader(client, cfg.Storage.Bucket).List(context.Background())
		if err != nil {
			return err
		}

		if len(names) == 0 {
			l.Info("No documents in bucket", zap.String("bucket", cfg.Storage.Bucket))
			return nil
		}
		for _, name := range names {
			l.Info("Document", zap.String("object", name))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(snapshotsCmd)
}
