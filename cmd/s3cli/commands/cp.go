package commands

import (
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/marmos91/s3cli/internal/concurrency"
	s3clierrors "github.com/marmos91/s3cli/internal/errors"
	"github.com/marmos91/s3cli/internal/pattern"
	"github.com/marmos91/s3cli/internal/scanner"
	"github.com/marmos91/s3cli/internal/transfer"
	"github.com/marmos91/s3cli/internal/uri"
)

var (
	cpRecursive     bool
	cpDryRun        bool
	cpForce         bool
	cpInclude       []string
	cpExclude       []string
	cpMaxConcurrent int
)

var cpCmd = &cobra.Command{
	Use:   "cp SOURCE DESTINATION",
	Short: "Copy a file or prefix between the local filesystem and S3",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch("cp", func(inv *invocation) (batchResult, error) {
			return runCp(inv, args[0], args[1])
		})(cmd, args)
	},
}

func init() {
	flags := cpCmd.Flags()
	flags.BoolVarP(&cpRecursive, "recursive", "r", false, "copy an entire directory or prefix")
	flags.BoolVar(&cpDryRun, "dryrun", false, "print what would be copied without transferring")
	flags.BoolVar(&cpForce, "force", false, "overwrite an existing local file when downloading (uploads always overwrite)")
	flags.StringSliceVar(&cpInclude, "include", nil, "glob/regex patterns to include (recursive only)")
	flags.StringSliceVar(&cpExclude, "exclude", nil, "glob/regex patterns to exclude (recursive only)")
	flags.IntVar(&cpMaxConcurrent, "max-concurrent", 0, "override the configured worker count for this invocation (recursive only)")
}

func runCp(inv *invocation, src, dst string) (batchResult, error) {
	transferEngine := transfer.NewEngine(inv.client, inv.cfg)

	srcLocal := uri.IsLocal(src)
	dstLocal := uri.IsLocal(dst)

	if srcLocal == dstLocal {
		return nil, s3clierrors.New(s3clierrors.KindInvalidArgument, "exactly one of source or destination must be an s3:// uri")
	}

	if !cpRecursive {
		return nil, runCpSingle(inv, transferEngine, src, dst, srcLocal)
	}
	return runCpRecursive(inv, transferEngine, src, dst, srcLocal)
}

func runCpSingle(inv *invocation, engine *transfer.Engine, src, dst string, srcLocal bool) error {
	if srcLocal {
		info, err := os.Stat(src)
		if err != nil {
			return s3clierrors.Wrap(s3clierrors.KindInvalidArgument, err, "cannot stat source file").WithOperation("cp")
		}
		destURI, err := uri.Parse(dst)
		if err != nil {
			return s3clierrors.Wrap(s3clierrors.KindInvalidUri, err, "invalid destination uri").WithOperation("cp")
		}
		file := scanner.StableFile{
			AbsolutePath: src,
			RelativeKey:  filepath.Base(src),
			Size:         uint64(info.Size()),
			Mtime:        info.ModTime(),
		}
		_, err = engine.Upload(inv.ctx, transfer.UploadRequest{
			File:        file,
			Destination: destURI,
			DryRun:      cpDryRun,
			Force:       cpForce,
			Command:     "cp",
		})
		return err
	}

	srcURI, err := uri.Parse(src)
	if err != nil {
		return s3clierrors.Wrap(s3clierrors.KindInvalidUri, err, "invalid source uri").WithOperation("cp")
	}
	head, err := inv.client.HeadObject(inv.ctx, &s3.HeadObjectInput{
		Bucket: aws.String(srcURI.Bucket),
		Key:    aws.String(srcURI.Key),
	})
	if err != nil {
		return classifyError(err, "cp", srcURI.Bucket, srcURI.Key)
	}
	_, err = engine.Download(inv.ctx, transfer.DownloadRequest{
		Source:      srcURI,
		Size:        aws.ToInt64(head.ContentLength),
		Destination: dst,
		DryRun:      cpDryRun,
		Force:       cpForce,
		Command:     "cp",
	})
	return err
}

func runCpRecursive(inv *invocation, engine *transfer.Engine, src, dst string, srcLocal bool) (batchResult, error) {
	if !srcLocal {
		return nil, s3clierrors.New(s3clierrors.KindInvalidArgument, "--recursive download is not supported; use sync instead")
	}

	destURI, err := uri.Parse(dst)
	if err != nil {
		return nil, s3clierrors.Wrap(s3clierrors.KindInvalidUri, err, "invalid destination uri").WithOperation("cp")
	}

	includeMatchers, excludeMatchers, err := compileCpFilters()
	if err != nil {
		return nil, err
	}

	workers := inv.cfg.MaxConcurrent
	if cpMaxConcurrent > 0 {
		workers = cpMaxConcurrent
	}

	retry := concurrency.DefaultRetryConfig(inv.cfg.MaxRetries)
	pool := concurrency.NewPool(workers, retry)
	pool.Start(inv.ctx)

	idx := 0
	for outcome, scanErr := range scanner.Scan(inv.ctx, src, scanner.Options{}) {
		if scanErr != nil {
			pool.Cancel()
			pool.Close()
			return pool.Outcome(), scanErr
		}
		if outcome.Stable == nil {
			continue
		}
		file := *outcome.Stable
		if !cpPassesFilters(file.RelativeKey, includeMatchers, excludeMatchers) {
			continue
		}

		dest := destURI
		dest.Key = filepath.ToSlash(filepath.Join(destURI.Key, file.RelativeKey))

		pool.Submit(idx, func(tc concurrency.TaskContext) error {
			_, uploadErr := engine.Upload(inv.ctx, transfer.UploadRequest{
				File:        file,
				Destination: dest,
				DryRun:      cpDryRun,
				Force:       cpForce,
				Command:     "cp",
			})
			return uploadErr
		})
		idx++
	}

	pool.Close()
	return pool.Outcome(), nil
}

func compileCpFilters() (include, exclude []pattern.Matcher, err error) {
	include, exclude, err = pattern.CompileFilters(cpInclude, cpExclude)
	if err != nil {
		return nil, nil, s3clierrors.Wrap(s3clierrors.KindPatternError, err, "invalid include/exclude pattern").WithOperation("cp")
	}
	return include, exclude, nil
}

func cpPassesFilters(key string, include, exclude []pattern.Matcher) bool {
	return pattern.PassesFilters(key, include, exclude)
}
