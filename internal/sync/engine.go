package sync

import (
	"context"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/marmos91/s3cli/internal/concurrency"
	"github.com/marmos91/s3cli/internal/deleteengine"
	s3clierrors "github.com/marmos91/s3cli/internal/errors"
	"github.com/marmos91/s3cli/internal/filter"
	"github.com/marmos91/s3cli/internal/pattern"
	"github.com/marmos91/s3cli/internal/scanner"
	"github.com/marmos91/s3cli/internal/transfer"
	"github.com/marmos91/s3cli/internal/uri"
)

// Engine reconciles a local directory against an S3 prefix by composing
// the scanner (local stability), the concurrency fabric (bounded
// parallelism), the transfer engine (uploads), and the delete engine
// (--delete removals).
type Engine struct {
	client   *s3.Client
	transfer *transfer.Engine
	delete   *deleteengine.Engine
	workers  int
	retry    concurrency.RetryConfig
}

// NewEngine builds a sync Engine sharing client across the listing,
// transfer, and delete paths.
func NewEngine(client *s3.Client, transferEngine *transfer.Engine, deleteEngine *deleteengine.Engine, workers int, retry concurrency.RetryConfig) *Engine {
	return &Engine{client: client, transfer: transferEngine, delete: deleteEngine, workers: workers, retry: retry}
}

// Request describes one sync invocation.
type Request struct {
	SourceDir   string
	Destination uri.S3URI
	Include     []string
	Exclude     []string
	Delete      bool
	SizeOnly    bool
	DryRun      bool
	Force       bool
}

// Result is the outcome of a full sync: the plan that was computed and the
// aggregate of every upload task actually executed. --delete removals are
// not counted in Outcome.
type Result struct {
	Plan    []PlannedItem
	Outcome *concurrency.BatchOutcome
}

// Run scans Request.SourceDir, lists Request.Destination, builds a
// reconciliation plan filtered by Include/Exclude, and — unless DryRun —
// executes every planned upload through the concurrency fabric, then
// removes every planned delete in one DeleteKeys call.
func (e *Engine) Run(ctx context.Context, req Request) (Result, error) {
	source, err := e.scanSource(ctx, req)
	if err != nil {
		return Result{}, err
	}

	dest, err := e.listDestination(ctx, req.Destination)
	if err != nil {
		return Result{}, err
	}

	plan := Plan(source, dest, Options{Delete: req.Delete, SizeOnly: req.SizeOnly})

	if req.DryRun {
		return Result{Plan: plan, Outcome: &concurrency.BatchOutcome{}}, nil
	}

	pool := concurrency.NewPool(e.workers, e.retry)
	pool.Start(ctx)

	var deleteKeys []string
	for i, item := range plan {
		switch item.Action {
		case ActionUpload:
			item := item
			pool.Submit(i, func(concurrency.TaskContext) error {
				destination := uri.S3URI{Bucket: req.Destination.Bucket, Key: path.Join(req.Destination.Key, item.RelativeKey)}
				_, err := e.transfer.Upload(ctx, transfer.UploadRequest{
					File:        item.Source,
					Destination: destination,
					Force:       req.Force,
					Command:     "sync",
				})
				return err
			})
		case ActionDelete:
			deleteKeys = append(deleteKeys, path.Join(req.Destination.Key, item.RelativeKey))
		}
	}

	pool.Close()

	if len(deleteKeys) > 0 {
		if _, err := e.delete.DeleteKeys(ctx, req.Destination.Bucket, deleteKeys, false); err != nil {
			return Result{Plan: plan, Outcome: pool.Outcome()}, err
		}
	}

	return Result{Plan: plan, Outcome: pool.Outcome()}, nil
}

func (e *Engine) scanSource(ctx context.Context, req Request) (map[string]scanner.StableFile, error) {
	includeMatcher, excludeMatcher, err := compileFilters(req.Include, req.Exclude)
	if err != nil {
		return nil, err
	}

	result := make(map[string]scanner.StableFile)
	for outcome, err := range scanner.Scan(ctx, req.SourceDir, scanner.Options{}) {
		if err != nil {
			return nil, s3clierrors.Wrap(s3clierrors.KindFatal, err, "scanning source directory").WithOperation("sync")
		}
		if outcome.Stable == nil {
			continue
		}
		if !passesFilters(outcome.Stable.RelativeKey, includeMatcher, excludeMatcher) {
			continue
		}
		result[outcome.Stable.RelativeKey] = *outcome.Stable
	}
	return result, nil
}

func (e *Engine) listDestination(ctx context.Context, dest uri.S3URI) (map[string]filter.EnhancedObjectInfo, error) {
	result := make(map[string]filter.EnhancedObjectInfo)

	prefix := dest.Key
	if prefix != "" && prefix[len(prefix)-1] != '/' {
		prefix += "/"
	}

	paginator := s3.NewListObjectsV2Paginator(e.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(dest.Bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, s3clierrors.Wrap(s3clierrors.KindNetworkError, err, "listing destination prefix").
				WithOperation("sync").WithBucket(dest.Bucket)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			relKey := (*obj.Key)[len(prefix):]
			size := uint64(0)
			if obj.Size != nil {
				size = uint64(*obj.Size)
			}
			modified := time.Time{}
			if obj.LastModified != nil {
				modified = *obj.LastModified
			}
			result[relKey] = filter.EnhancedObjectInfo{
				Key:      relKey,
				Size:     size,
				Modified: modified,
			}
		}
	}

	return result, nil
}

func compileFilters(include, exclude []string) (includeMatchers, excludeMatchers []pattern.Matcher, err error) {
	return pattern.CompileFilters(include, exclude)
}

func passesFilters(key string, include, exclude []pattern.Matcher) bool {
	return pattern.PassesFilters(key, include, exclude)
}
