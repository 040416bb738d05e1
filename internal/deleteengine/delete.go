package deleteengine

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/marmos91/s3cli/internal/config"
	s3clierrors "github.com/marmos91/s3cli/internal/errors"
	"github.com/marmos91/s3cli/internal/pattern"
	"github.com/marmos91/s3cli/internal/s3client"
)

// Engine batch-deletes objects and verifies the backend honored the
// request, HEAD-checking each deleted key afterward to catch backends that silently ignore a
// DeleteObjects call missing an integrity header.
type Engine struct {
	client   *s3.Client
	checksum types.ChecksumAlgorithm
}

// NewEngine builds an Engine bound to client, attaching cfg's configured
// checksum algorithm to every batch-delete request.
func NewEngine(client *s3.Client, cfg *config.ResolvedConfig) *Engine {
	return &Engine{
		client:   client,
		checksum: s3client.ChecksumAlgorithm(cfg.ChecksumAlgorithm),
	}
}

// DeleteKeys removes every key in keys from bucket, batching into groups of
// at most 1000, then HEADs each key reported deleted to confirm none survived.
// A key reported deleted but still present on HEAD is recorded as a
// phantom delete rather than a success.
func (e *Engine) DeleteKeys(ctx context.Context, bucket string, keys []string, dryRun bool) (DeleteOutcome, error) {
	start := time.Now()

	if dryRun {
		return DeleteOutcome{Bucket: bucket, Deleted: keys, DryRun: true}, nil
	}

	outcome := DeleteOutcome{Bucket: bucket, Failed: make(map[string]error)}

	for i := 0; i < len(keys); i += maxBatchSize {
		if err := ctx.Err(); err != nil {
			for _, k := range keys[i:] {
				outcome.Failed[k] = err
			}
			return outcome, s3clierrors.Wrap(s3clierrors.KindTimeout, err, "cancelled mid-batch").WithOperation("rm")
		}

		end := i + maxBatchSize
		if end > len(keys) {
			end = len(keys)
		}
		batch := keys[i:end]

		objects := make([]types.ObjectIdentifier, len(batch))
		for j, k := range batch {
			objects[j] = types.ObjectIdentifier{Key: aws.String(k)}
		}

		result, err := e.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &types.Delete{
				Objects: objects,
				Quiet:   aws.Bool(false),
			},
			ChecksumAlgorithm: e.checksum,
		})
		if err != nil {
			wrapped := classifyDeleteError(err, bucket)
			for _, k := range batch {
				outcome.Failed[k] = wrapped
			}
			continue
		}

		failedInBatch := make(map[string]bool, len(result.Errors))
		for _, derr := range result.Errors {
			if derr.Key == nil {
				continue
			}
			failedInBatch[*derr.Key] = true
			outcome.Failed[*derr.Key] = fmt.Errorf("%s: %s", aws.ToString(derr.Code), aws.ToString(derr.Message))
		}

		for _, k := range batch {
			if !failedInBatch[k] {
				outcome.Deleted = append(outcome.Deleted, k)
			}
		}
	}

	phantoms, err := e.findPhantoms(ctx, bucket, outcome.Deleted)
	if err != nil {
		return outcome, err
	}
	outcome.Phantoms = phantoms

	outcome.Duration = time.Since(start)
	return outcome, nil
}

// findPhantoms HEADs every key reported deleted and returns the subset
// that still exists, per the bulk delete engine's residual-key contract.
func (e *Engine) findPhantoms(ctx context.Context, bucket string, deletedKeys []string) ([]string, error) {
	var phantoms []string
	for _, key := range deletedKeys {
		_, err := e.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err == nil {
			phantoms = append(phantoms, key)
			continue
		}
		if !isNotFound(err) {
			return phantoms, classifyDeleteError(err, bucket)
		}
	}
	return phantoms, nil
}

// DeletePrefix lists every key under prefix (paginated), keeping only keys
// that pass include/exclude (either may be nil, meaning "no filter"),
// deletes the survivors in batches, and HEAD-checks each key reported
// deleted for phantoms. Keys filtered out are left under the prefix.
func (e *Engine) DeletePrefix(ctx context.Context, bucket, prefix string, include, exclude []pattern.Matcher, dryRun bool) (DeleteOutcome, error) {
	keys, err := e.listPrefix(ctx, bucket, prefix, include, exclude)
	if err != nil {
		return DeleteOutcome{}, err
	}
	return e.DeleteKeys(ctx, bucket, keys, dryRun)
}

func (e *Engine) listPrefix(ctx context.Context, bucket, prefix string, include, exclude []pattern.Matcher) ([]string, error) {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(e.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classifyDeleteError(err, bucket)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			if len(include) > 0 || len(exclude) > 0 {
				if !pattern.PassesFilters(*obj.Key, include, exclude) {
					continue
				}
			}
			keys = append(keys, *obj.Key)
		}
	}
	return keys, nil
}
