package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for S3 CLI operations, following OpenTelemetry semantic
// conventions where applicable.
const (
	AttrOperation  = "s3cli.operation" // Verb: ls, cp, sync, rm, mb, rb, presign, head-object, du
	AttrBucket     = "aws.s3.bucket"
	AttrKey        = "aws.s3.key"
	AttrRegion     = "aws.region"
	AttrEndpoint   = "s3cli.endpoint"
	AttrSize       = "s3cli.object_size"
	AttrPartNumber = "s3cli.part_number"
	AttrPartSize   = "s3cli.part_size"
	AttrChecksum   = "s3cli.checksum"
	AttrPattern    = "s3cli.pattern"
	AttrEntries    = "s3cli.entries"
	AttrDeleted    = "s3cli.deleted"
	AttrAttempt    = "s3cli.attempt"
	AttrMaxRetries = "s3cli.max_retries"
	AttrDryRun     = "s3cli.dry_run"
)

// Operation returns an attribute for the CLI verb being executed.
func Operation(op string) attribute.KeyValue {
	return attribute.String(AttrOperation, op)
}

// Bucket returns an attribute for an S3 bucket name.
func Bucket(name string) attribute.KeyValue {
	return attribute.String(AttrBucket, name)
}

// StorageKey returns an attribute for an S3 object key.
func StorageKey(key string) attribute.KeyValue {
	return attribute.String(AttrKey, key)
}

// Region returns an attribute for an AWS region.
func Region(region string) attribute.KeyValue {
	return attribute.String(AttrRegion, region)
}

// Endpoint returns an attribute for a custom S3 endpoint.
func Endpoint(endpoint string) attribute.KeyValue {
	return attribute.String(AttrEndpoint, endpoint)
}

// Size returns an attribute for an object or file size in bytes.
func Size(size int64) attribute.KeyValue {
	return attribute.Int64(AttrSize, size)
}

// PartNumber returns an attribute for a multipart upload part number.
func PartNumber(n int32) attribute.KeyValue {
	return attribute.Int(AttrPartNumber, int(n))
}

// PartSize returns an attribute for a multipart upload part size.
func PartSize(size int64) attribute.KeyValue {
	return attribute.Int64(AttrPartSize, size)
}

// Checksum returns an attribute for a content checksum.
func Checksum(sum string) attribute.KeyValue {
	return attribute.String(AttrChecksum, sum)
}

// Pattern returns an attribute for a glob/regex filter pattern.
func Pattern(pattern string) attribute.KeyValue {
	return attribute.String(AttrPattern, pattern)
}

// Entries returns an attribute for the number of objects visited.
func Entries(n int) attribute.KeyValue {
	return attribute.Int(AttrEntries, n)
}

// Deleted returns an attribute for the number of objects deleted.
func Deleted(n int) attribute.KeyValue {
	return attribute.Int(AttrDeleted, n)
}

// Attempt returns an attribute for a retry attempt number.
func Attempt(n int) attribute.KeyValue {
	return attribute.Int(AttrAttempt, n)
}

// MaxRetries returns an attribute for the maximum retry attempts.
func MaxRetries(n int) attribute.KeyValue {
	return attribute.Int(AttrMaxRetries, n)
}

// DryRun returns an attribute indicating whether the operation is a dry run.
func DryRun(dryRun bool) attribute.KeyValue {
	return attribute.Bool(AttrDryRun, dryRun)
}

// StartOperationSpan starts the root span for a CLI verb invocation.
func StartOperationSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{Operation(operation)}
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, "s3cli."+operation, trace.WithAttributes(allAttrs...))
}

// StartTransferSpan starts a span for a single-object upload or download.
func StartTransferSpan(ctx context.Context, operation, bucket, key string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{Bucket(bucket), StorageKey(key)}
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, "s3cli.transfer."+operation, trace.WithAttributes(allAttrs...))
}

// StartRetrySpan starts a span for a single retry attempt of an S3 API call.
func StartRetrySpan(ctx context.Context, apiCall string, attempt, maxRetries int) (context.Context, trace.Span) {
	return StartSpan(ctx, "s3cli.retry."+apiCall, trace.WithAttributes(
		Attempt(attempt),
		MaxRetries(maxRetries),
	))
}
