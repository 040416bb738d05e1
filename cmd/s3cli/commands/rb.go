package commands

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/s3cli/internal/cli/prompt"
	"github.com/marmos91/s3cli/internal/deleteengine"
	s3clierrors "github.com/marmos91/s3cli/internal/errors"
	"github.com/marmos91/s3cli/internal/uri"
)

var (
	rbForce   bool
	rbAll     bool
	rbPattern string
	rbConfirm bool
	rbDryRun  bool
)

var rbCmd = &cobra.Command{
	Use:   "rb [s3://bucket]",
	Short: "Remove a bucket, every bucket matching --pattern, or --all buckets",
	Args:  cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		selectors := 0
		if len(args) > 0 {
			selectors++
		}
		if rbPattern != "" {
			selectors++
		}
		if rbAll {
			selectors++
		}
		if selectors == 0 {
			return s3clierrors.New(s3clierrors.KindInvalidArgument, "rb requires a bucket uri, --pattern, or --all")
		}
		if selectors > 1 {
			return s3clierrors.New(s3clierrors.KindInvalidArgument, "a bucket uri, --pattern, and --all are mutually exclusive")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		var target string
		if len(args) > 0 {
			target = args[0]
		}
		return dispatch("rb", func(inv *invocation) (batchResult, error) {
			return nil, runRb(inv, target)
		})(cmd, args)
	},
}

func init() {
	flags := rbCmd.Flags()
	flags.BoolVar(&rbForce, "force", false, "remove non-empty buckets by deleting their contents first")
	flags.BoolVar(&rbAll, "all", false, "remove every bucket visible to the account")
	flags.StringVar(&rbPattern, "pattern", "", "wildcard or regular expression (auto-detected) matching multiple bucket names to remove")
	flags.BoolVar(&rbConfirm, "confirm", false, "skip the interactive confirmation for --pattern/--all")
	flags.BoolVar(&rbDryRun, "dryrun", false, "print what would be removed without removing")
}

func runRb(inv *invocation, target string) error {
	engine := deleteengine.NewEngine(inv.client, inv.cfg)

	if rbAll {
		return runRbPattern(inv, engine, "*", "every bucket")
	}

	if rbPattern != "" {
		return runRbPattern(inv, engine, rbPattern, "every bucket matching "+rbPattern)
	}

	u, err := uri.Parse(target)
	if err != nil {
		return s3clierrors.Wrap(s3clierrors.KindInvalidUri, err, "invalid s3 uri").WithOperation("rb")
	}

	outcome, err := engine.RemoveBucket(inv.ctx, u.Bucket, rbForce, rbDryRun)
	if err != nil {
		return err
	}
	if outcome.HasFailures() {
		return s3clierrors.New(s3clierrors.KindConflict, "bucket not fully removed").WithOperation("rb").WithBucket(u.Bucket)
	}
	inv.printer.Success("removed " + u.String())
	return nil
}

func runRbPattern(inv *invocation, engine *deleteengine.Engine, glob, description string) error {
	if !rbConfirm && !rbDryRun {
		ok, err := prompt.ConfirmDanger("remove "+description, glob)
		if err != nil {
			return err
		}
		if !ok {
			return s3clierrors.New(s3clierrors.KindCancelled, "rb cancelled")
		}
		rbConfirm = true
	}
	outcomes, err := engine.RemoveBucketsByPattern(inv.ctx, glob, rbForce, rbConfirm || rbDryRun, rbDryRun)
	if err != nil {
		return err
	}
	for _, o := range outcomes {
		if o.HasFailures() {
			inv.printer.Error("failed to remove " + o.Bucket)
		} else {
			inv.printer.Success("removed " + o.Bucket)
		}
	}
	return nil
}
