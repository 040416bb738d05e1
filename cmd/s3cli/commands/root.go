// Package commands implements the s3cli verbs as cobra subcommands.
package commands

import (
	s3clierrors "github.com/marmos91/s3cli/internal/errors"
	"github.com/spf13/cobra"
)

// Version information injected at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "s3cli",
	Short: "s3cli - an S3-compatible object store client",
	Long: `s3cli is a command-line client for S3-compatible object stores, with
aws-cli-compatible verbs for listing, transferring, synchronizing, and
deleting objects and buckets.

Use "s3cli [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main() once.
//
// cobra's own argument-parsing and PreRunE failures never reach dispatch,
// so exitCode would otherwise be left at its zero value (success) on a
// usage error; Execute catches that case here instead of making every verb
// remember to set it.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && exitCode == s3clierrors.ExitSuccess {
		exitCode = s3clierrors.ExitConfigError
	}
	return err
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&flagDebug, "debug", false, "enable debug logging and metrics dump on exit")
	flags.StringVar(&flagEndpoint, "endpoint", "", "S3 endpoint URL override (e.g. for S3-compatible stores)")
	flags.StringVar(&flagRegion, "region", "", "AWS region override")
	flags.DurationVar(&flagTimeout, "timeout", 0, "per-request HTTP timeout override")
	flags.StringVar(&flagProfile, "profile", "", "named credentials profile")
	flags.StringVar(&flagOutput, "output", "table", "output format: table, json, yaml")

	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(cpCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(mbCmd)
	rootCmd.AddCommand(rbCmd)
	rootCmd.AddCommand(presignCmd)
	rootCmd.AddCommand(headObjectCmd)
	rootCmd.AddCommand(duCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
