package deleteengine

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	s3clierrors "github.com/marmos91/s3cli/internal/errors"
	"github.com/marmos91/s3cli/internal/pattern"
)

// RemoveBucket deletes bucket. A non-empty bucket is refused unless force
// is set, in which case its contents are recursively deleted first.
func (e *Engine) RemoveBucket(ctx context.Context, bucket string, force, dryRun bool) (DeleteOutcome, error) {
	keys, err := e.listPrefix(ctx, bucket, "", nil, nil)
	if err != nil {
		return DeleteOutcome{}, err
	}

	if len(keys) > 0 && !force {
		return DeleteOutcome{}, s3clierrors.New(s3clierrors.KindConflict,
			"bucket is not empty, use --force to remove its contents first").
			WithOperation("rb").WithBucket(bucket)
	}

	if dryRun {
		return DeleteOutcome{Bucket: bucket, Deleted: append(keys, bucket), DryRun: true}, nil
	}

	outcome := DeleteOutcome{Bucket: bucket, Failed: make(map[string]error)}
	if len(keys) > 0 {
		contentOutcome, err := e.DeleteKeys(ctx, bucket, keys, false)
		if err != nil {
			return contentOutcome, err
		}
		outcome = contentOutcome
		if outcome.HasFailures() {
			return outcome, s3clierrors.New(s3clierrors.KindConflict,
				"bucket contents could not be fully removed, bucket left intact").
				WithOperation("rb").WithBucket(bucket)
		}
	}

	if _, err := e.client.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return outcome, classifyDeleteError(err, bucket)
	}

	outcome.Deleted = append(outcome.Deleted, bucket)
	return outcome, nil
}

// RemoveBucketsByPattern lists every bucket, filters by glob, and removes
// each match. Confirm must be explicit; without it, no bucket is touched.
func (e *Engine) RemoveBucketsByPattern(ctx context.Context, glob string, force, confirm, dryRun bool) ([]DeleteOutcome, error) {
	if !confirm {
		return nil, s3clierrors.New(s3clierrors.KindInvalidArgument,
			"pattern-based bucket removal requires --confirm").
			WithOperation("rb")
	}

	matcher, err := pattern.Compile(glob)
	if err != nil {
		return nil, err
	}

	list, err := e.client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, classifyDeleteError(err, "")
	}

	var outcomes []DeleteOutcome
	for _, b := range list.Buckets {
		if b.Name == nil || !matcher.Match(*b.Name) {
			continue
		}
		outcome, err := e.RemoveBucket(ctx, *b.Name, force, dryRun)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}
