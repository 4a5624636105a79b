package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"scene-merge/core/config"
	"scene-merge/core/database"
	"scene-merge/core/history"
	"scene-merge/core/logger"
	"scene-merge/core/merge"
	"scene-merge/core/snapshot"
	"scene-merge/core/storage"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the merge command
	mergeBase        string
	mergeSource      string
	mergeTarget      string
	mergeBaseSource  string
	mergeBaseTarget  string
	mergeFromStorage bool
	mergeOut         string
	mergeApply       bool
	mergeAcceptAll   bool
	mergeDryRun      bool
	mergeYesConfirm  bool
	mergeSaveHistory bool
)

// mergeCmd runs a three-way merge and optionally applies it.
var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge two edited snapshots against their common ancestor",
	Long: `Merge reconciles a source and a target snapshot against their shared
base snapshot, using two precomputed comparison documents.

Reports the resulting action list including conflicts.
Optionally apply the actions to the target and write the merged snapshot.

Examples:
  # Report only (plan)
  merge --base base.json --source source.json --target target.json \
        --base-source bs.json --base-target bt.json

  # Apply, accepting every conflict in favor of the source
  merge ... --apply --accept-conflicts --yes --out merged.json

  # Read documents from the configured object storage
  merge ... --storage --apply --yes --out merged.json`,
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVar(&mergeBase, "base", "", "Base snapshot document (file path or object name)")
	mergeCmd.Flags().StringVar(&mergeSource, "source", "", "Source snapshot document")
	mergeCmd.Flags().StringVar(&mergeTarget, "target", "", "Target snapshot document")
	mergeCmd.Flags().StringVar(&mergeBaseSource, "base-source", "", "Comparison document between base and source")
	mergeCmd.Flags().StringVar(&mergeBaseTarget, "base-target", "", "Comparison document between base and target")
	mergeCmd.Flags().BoolVar(&mergeFromStorage, "storage", false, "Read documents from object storage instead of local files")
	mergeCmd.Flags().StringVar(&mergeOut, "out", "", "Write the merged snapshot to this file (default: stdout)")
	mergeCmd.Flags().BoolVar(&mergeApply, "apply", false, "Apply the actions to the target")
	mergeCmd.Flags().BoolVar(&mergeAcceptAll, "accept-conflicts", false, "Accept the source side of every undecided conflict")
	mergeCmd.Flags().BoolVar(&mergeDryRun, "dry-run", false, "Force dry-run (no output even with --apply)")
	mergeCmd.Flags().BoolVar(&mergeYesConfirm, "yes", false, "Auto-confirm applying (non-interactive)")
	mergeCmd.Flags().BoolVar(&mergeSaveHistory, "save-history", false, "Record the run in the merge history database")

	for _, flag := range []string{"base", "source", "target", "base-source", "base-target"} {
		_ = mergeCmd.MarkFlagRequired(flag)
	}

	RootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	l.Info("Starting three-way merge")

	baseDoc, sourceDoc, targetDoc, baseToSourceCmp, baseToTargetCmp, err := loadMergeInputs(ctx, cfg)
	if err != nil {
		return err
	}

	base, err := baseDoc.Build()
	if err != nil {
		return fmt.Errorf("failed to build base graph: %w", err)
	}
	source, err := sourceDoc.Build()
	if err != nil {
		return fmt.Errorf("failed to build source graph: %w", err)
	}
	target, err := targetDoc.Build()
	if err != nil {
		return fmt.Errorf("failed to build target graph: %w", err)
	}

	baseToSource, err := baseToSourceCmp.Resolve(base, source)
	if err != nil {
		return fmt.Errorf("failed to resolve base/source comparison: %w", err)
	}
	baseToTarget, err := baseToTargetCmp.Resolve(base, target)
	if err != nil {
		return fmt.Errorf("failed to resolve base/target comparison: %w", err)
	}

	// Step 1: Plan (always runs)
	op, err := merge.NewOperation(baseToSource, baseToTarget)
	if err != nil {
		return fmt.Errorf("failed to plan merge: %w", err)
	}
	cfg.Merge.Configure(op)

	// Step 2: Print report
	printMergeReport(l, op)

	// Step 3: Check if applying is requested
	if !mergeApply {
		l.Info("No actions applied. Use --apply to merge into the target snapshot.")
		return nil
	}

	if mergeDryRun {
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}

	summary := op.Summarize()
	if summary.Conflicts > 0 && !mergeAcceptAll {
		l.Warn("Undecided conflicts will be skipped; use --accept-conflicts or the session API to decide them",
			zap.Int("conflicts", summary.Conflicts))
	}

	// Check confirmation
	if !confirmApply() {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	// Execute actions
	l.Info("Applying actions...")
	applied, skipped, err := op.Apply(merge.ApplyOptions{AcceptConflicts: mergeAcceptAll})
	if err != nil {
		return fmt.Errorf("failed to apply merge: %w", err)
	}
	l.Info("Successfully applied actions", zap.Int("applied", applied), zap.Int("skipped", skipped))

	merged := snapshot.FromGraph(targetDoc.Name, op.Target())
	if mergeOut != "" {
		if err := snapshot.WriteFile(mergeOut, merged); err != nil {
			return err
		}
		l.Info("Merged snapshot written", zap.String("path", mergeOut))
	} else {
		if err := merged.Encode(os.Stdout); err != nil {
			return err
		}
	}

	if mergeSaveHistory {
		if err := saveMergeRun(cfg, baseDoc.Name, sourceDoc.Name, targetDoc.Name, summary); err != nil {
			l.Warn("Failed to record merge run", zap.Error(err))
		}
	}

	return nil
}

// loadMergeInputs reads the three snapshots and two comparisons from
// local files or, with --storage, from the configured object storage.
func loadMergeInputs(ctx context.Context, cfg *config.Config) (*snapshot.Document, *snapshot.Document, *snapshot.Document, *snapshot.Comparison, *snapshot.Comparison, error) {
	if !mergeFromStorage {
		baseDoc, err := snapshot.ReadFile(mergeBase)
		if err != nil {
			return nil, nil, nil, nil, nil, err
		}
		sourceDoc, err := snapshot.ReadFile(mergeSource)
		if err != nil {
			return nil, nil, nil, nil, nil, err
		}
		targetDoc, err := snapshot.ReadFile(mergeTarget)
		if err != nil {
			return nil, nil, nil, nil, nil, err
		}
		baseToSource, err := snapshot.ReadComparisonFile(mergeBaseSource)
		if err != nil {
			return nil, nil, nil, nil, nil, err
		}
		baseToTarget, err := snapshot.ReadComparisonFile(mergeBaseTarget)
		if err != nil {
			return nil, nil, nil, nil, nil, err
		}
		return baseDoc, sourceDoc, targetDoc, baseToSource, baseToTarget, nil
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to connect to storage: %w", err)
	}
	loader := snapshot.NewLoader(client, cfg.Storage.Bucket)

	baseDoc, err := loader.Snapshot(ctx, mergeBase)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	sourceDoc, err := loader.Snapshot(ctx, mergeSource)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	targetDoc, err := loader.Snapshot(ctx, mergeTarget)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	baseToSource, err := loader.Comparison(ctx, mergeBaseSource)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	baseToTarget, err := loader.Comparison(ctx, mergeBaseTarget)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	return baseDoc, sourceDoc, targetDoc, baseToSource, baseToTarget, nil
}

// printMergeReport prints a formatted merge report using logger.
func printMergeReport(l *zap.Logger, op *merge.Operation) {
	s := op.Summarize()

	l.Info("Merge report",
		zap.Int("total_actions", s.Total),
		zap.Int("conflicts", s.Conflicts),
	)
	for kind, count := range s.ByKind {
		l.Info("Planned actions", zap.String("kind", string(kind)), zap.Int("count", count))
	}

	actions := op.Actions()
	// Show sample of actions (max 5 for logger)
	maxShow := 5
	if len(actions) < maxShow {
		maxShow = len(actions)
	}
	for i := 0; i < maxShow; i++ {
		l.Info("Action", zap.String("summary", actions[i].Describe()))
	}
	if len(actions) > maxShow {
		l.Info("More actions not shown", zap.Int("count", len(actions)-maxShow))
	}
}

// confirmApply prompts the user for confirmation or uses the --yes flag.
func confirmApply() bool {
	if mergeYesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to apply the merge: ")
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(strings.ToLower(answer)) == "yes"
}

func saveMergeRun(cfg *config.Config, baseName, sourceName, targetName string, summary merge.Summary) error {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	store := history.NewStore(db)
	if err := store.Migrate(); err != nil {
		return err
	}
	return store.Save(&history.Record{
		SessionID:     uuid.NewString(),
		BaseName:      baseName,
		SourceName:    sourceName,
		TargetName:    targetName,
		ActionCount:   summary.Total,
		ConflictCount: summary.Conflicts,
		Applied:       true,
	})
}
