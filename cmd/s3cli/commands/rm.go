package commands

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/s3cli/internal/cli/prompt"
	"github.com/marmos91/s3cli/internal/deleteengine"
	s3clierrors "github.com/marmos91/s3cli/internal/errors"
	"github.com/marmos91/s3cli/internal/pattern"
	"github.com/marmos91/s3cli/internal/uri"
)

var (
	rmRecursive bool
	rmDryRun    bool
	rmForce     bool
	rmInclude   []string
	rmExclude   []string
)

var rmCmd = &cobra.Command{
	Use:   "rm s3://bucket/key",
	Short: "Delete an object or, with --recursive, every object under a prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch("rm", func(inv *invocation) (batchResult, error) {
			return runRm(inv, args[0])
		})(cmd, args)
	},
}

func init() {
	flags := rmCmd.Flags()
	flags.BoolVarP(&rmRecursive, "recursive", "r", false, "delete every object under the given prefix")
	flags.BoolVar(&rmDryRun, "dryrun", false, "print what would be deleted without deleting")
	flags.BoolVar(&rmForce, "force", false, "skip the confirmation prompt for --recursive")
	flags.StringSliceVar(&rmInclude, "include", nil, "glob/regex patterns to include (recursive only)")
	flags.StringSliceVar(&rmExclude, "exclude", nil, "glob/regex patterns to exclude (recursive only)")
}

func runRm(inv *invocation, target string) (batchResult, error) {
	u, err := uri.Parse(target)
	if err != nil {
		return nil, s3clierrors.Wrap(s3clierrors.KindInvalidUri, err, "invalid s3 uri").WithOperation("rm")
	}

	engine := deleteengine.NewEngine(inv.client, inv.cfg)

	if !rmRecursive {
		outcome, err := engine.DeleteKeys(inv.ctx, u.Bucket, []string{u.Key}, rmDryRun)
		return outcome, err
	}

	include, exclude, err := pattern.CompileFilters(rmInclude, rmExclude)
	if err != nil {
		return nil, s3clierrors.Wrap(s3clierrors.KindPatternError, err, "invalid include/exclude pattern").WithOperation("rm")
	}

	if !rmDryRun {
		ok, err := prompt.ConfirmWithForce("this will recursively delete every object under "+u.String()+", continue?", rmForce)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, s3clierrors.New(s3clierrors.KindCancelled, "rm cancelled")
		}
	}

	outcome, err := engine.DeletePrefix(inv.ctx, u.Bucket, u.Key, include, exclude, rmDryRun)
	return outcome, err
}
