package commands

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/s3cli/internal/cli/prompt"
	"github.com/marmos91/s3cli/internal/concurrency"
	"github.com/marmos91/s3cli/internal/deleteengine"
	s3clierrors "github.com/marmos91/s3cli/internal/errors"
	syncengine "github.com/marmos91/s3cli/internal/sync"
	"github.com/marmos91/s3cli/internal/transfer"
	"github.com/marmos91/s3cli/internal/uri"
)

var (
	syncDelete        bool
	syncSizeOnly      bool
	syncDryRun        bool
	syncForce         bool
	syncInclude       []string
	syncExclude       []string
	syncMaxConcurrent int
)

var syncCmd = &cobra.Command{
	Use:   "sync SOURCE_DIR s3://bucket/prefix",
	Short: "Reconcile a local directory against an S3 prefix",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch("sync", func(inv *invocation) (batchResult, error) {
			return runSync(inv, args[0], args[1])
		})(cmd, args)
	},
}

func init() {
	flags := syncCmd.Flags()
	flags.BoolVar(&syncDelete, "delete", false, "remove destination objects absent from the source")
	flags.BoolVar(&syncSizeOnly, "size-only", false, "skip the modification-time comparison, compare by size alone")
	flags.BoolVar(&syncDryRun, "dryrun", false, "print the reconciliation plan without transferring or deleting")
	flags.BoolVar(&syncForce, "force", false, "skip the confirmation prompt when --delete is set")
	flags.StringSliceVar(&syncInclude, "include", nil, "glob/regex patterns to include")
	flags.StringSliceVar(&syncExclude, "exclude", nil, "glob/regex patterns to exclude")
	flags.IntVar(&syncMaxConcurrent, "max-concurrent", 0, "override the configured worker count for this invocation")
}

func runSync(inv *invocation, sourceDir, dest string) (batchResult, error) {
	destURI, err := uri.Parse(dest)
	if err != nil {
		return nil, s3clierrors.Wrap(s3clierrors.KindInvalidUri, err, "invalid destination uri").WithOperation("sync")
	}

	if syncDelete && !syncDryRun {
		ok, err := prompt.ConfirmWithForce("this will delete destination objects absent from the source, continue?", syncForce)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, s3clierrors.New(s3clierrors.KindCancelled, "sync cancelled")
		}
	}

	workers := inv.cfg.MaxConcurrent
	if syncMaxConcurrent > 0 {
		workers = syncMaxConcurrent
	}

	transferEngine := transfer.NewEngine(inv.client, inv.cfg)
	deleteEngine := deleteengine.NewEngine(inv.client, inv.cfg)
	retry := concurrency.DefaultRetryConfig(inv.cfg.MaxRetries)
	engine := syncengine.NewEngine(inv.client, transferEngine, deleteEngine, workers, retry)

	result, err := engine.Run(inv.ctx, syncengine.Request{
		SourceDir:   sourceDir,
		Destination: destURI,
		Include:     syncInclude,
		Exclude:     syncExclude,
		Delete:      syncDelete,
		SizeOnly:    syncSizeOnly,
		DryRun:      syncDryRun,
		Force:       syncForce,
	})
	if err != nil {
		return result.Outcome, err
	}

	if syncDryRun {
		printSyncPlan(inv, result.Plan)
		return nil, nil
	}
	return result.Outcome, nil
}

func printSyncPlan(inv *invocation, plan []syncengine.PlannedItem) {
	for _, item := range plan {
		inv.printer.Printf("%s\t%s\t%s\n", item.Action, item.RelativeKey, item.Reason)
	}
}
