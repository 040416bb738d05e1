package logger

import (
	"log/slog"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements for log aggregation and querying.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// CLI Invocation
	// ========================================================================
	KeyOperation = "operation" // Verb being executed: ls, cp, sync, rm, mb, rb, presign, head-object, du
	KeyPath      = "path"      // Local filesystem path
	KeyPattern   = "pattern"   // Glob/regex filter pattern

	// ========================================================================
	// S3 Object Addressing
	// ========================================================================
	KeyBucket   = "bucket"   // S3 bucket name
	KeyKey      = "key"      // Object key
	KeyRegion   = "region"   // AWS region
	KeyEndpoint = "endpoint" // Custom S3 endpoint (non-AWS-hosted or loopback alias)

	// ========================================================================
	// Transfer
	// ========================================================================
	KeySize        = "size"        // Object or file size in bytes
	KeyPartNumber  = "part_number" // Multipart upload part number
	KeyPartSize    = "part_size"   // Multipart upload part size in bytes
	KeyChecksum    = "checksum"    // Content checksum (CRC32C, SHA256, etc.)
	KeyTransferred = "transferred" // Cumulative bytes transferred

	// ========================================================================
	// Listing & Filtering
	// ========================================================================
	KeyEntries      = "entries"      // Number of objects returned/visited
	KeyMaxEntries   = "max_entries"  // max-results / page size cap
	KeyMatched      = "matched"      // Number of objects surviving filter
	KeyContinuation = "continuation" // ListObjectsV2 continuation token, truncated for logging

	// ========================================================================
	// Deletion
	// ========================================================================
	KeyDeleted  = "deleted"  // Number of objects deleted in a batch
	KeyFailed   = "failed"   // Number of objects that failed to delete
	KeyVerified = "verified" // Post-delete re-list verification result

	// ========================================================================
	// Retry & Concurrency
	// ========================================================================
	KeyAttempt    = "attempt"     // Retry attempt number
	KeyMaxRetries = "max_retries" // Maximum retry attempts
	KeyBackoffMs  = "backoff_ms"  // Computed backoff delay in milliseconds
	KeyWorkers    = "workers"     // Number of concurrent workers in use

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyErrorCode  = "error_code"  // Taxonomy error code (see internal/errors)
	KeyExitCode   = "exit_code"   // Process exit code
	KeySource     = "source"      // Where a value was resolved from: flag, env, file, default
	KeyRequestID  = "request_id"  // AWS request ID echoed back from the S3 API
)

// ============================================================================
// Field constructors for type safety
// These functions provide type-safe construction of slog.Attr values.
// ============================================================================

// TraceID returns a slog.Attr for OpenTelemetry trace ID.
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID.
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// Operation returns a slog.Attr for the CLI verb being executed.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Path returns a slog.Attr for a local filesystem path.
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Pattern returns a slog.Attr for a glob/regex filter pattern.
func Pattern(p string) slog.Attr {
	return slog.String(KeyPattern, p)
}

// Bucket returns a slog.Attr for an S3 bucket name.
func Bucket(name string) slog.Attr {
	return slog.String(KeyBucket, name)
}

// Key returns a slog.Attr for an S3 object key.
func Key(k string) slog.Attr {
	return slog.String(KeyKey, k)
}

// Region returns a slog.Attr for an AWS region.
func Region(r string) slog.Attr {
	return slog.String(KeyRegion, r)
}

// Endpoint returns a slog.Attr for a custom S3 endpoint.
func Endpoint(e string) slog.Attr {
	return slog.String(KeyEndpoint, e)
}

// Size returns a slog.Attr for an object or file size in bytes.
func Size(s int64) slog.Attr {
	return slog.Int64(KeySize, s)
}

// PartNumber returns a slog.Attr for a multipart upload part number.
func PartNumber(n int32) slog.Attr {
	return slog.Int(KeyPartNumber, int(n))
}

// PartSize returns a slog.Attr for a multipart upload part size.
func PartSize(s int64) slog.Attr {
	return slog.Int64(KeyPartSize, s)
}

// Checksum returns a slog.Attr for a content checksum.
func Checksum(sum string) slog.Attr {
	return slog.String(KeyChecksum, sum)
}

// Transferred returns a slog.Attr for cumulative bytes transferred.
func Transferred(n int64) slog.Attr {
	return slog.Int64(KeyTransferred, n)
}

// Entries returns a slog.Attr for the number of objects returned or visited.
func Entries(n int) slog.Attr {
	return slog.Int(KeyEntries, n)
}

// MaxEntries returns a slog.Attr for a page size cap.
func MaxEntries(n int) slog.Attr {
	return slog.Int(KeyMaxEntries, n)
}

// Matched returns a slog.Attr for the number of objects surviving a filter.
func Matched(n int) slog.Attr {
	return slog.Int(KeyMatched, n)
}

// Deleted returns a slog.Attr for the number of objects deleted in a batch.
func Deleted(n int) slog.Attr {
	return slog.Int(KeyDeleted, n)
}

// Failed returns a slog.Attr for the number of objects that failed an operation.
func Failed(n int) slog.Attr {
	return slog.Int(KeyFailed, n)
}

// Verified returns a slog.Attr for the outcome of post-delete verification.
func Verified(ok bool) slog.Attr {
	return slog.Bool(KeyVerified, ok)
}

// Attempt returns a slog.Attr for a retry attempt number.
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}

// MaxRetries returns a slog.Attr for the maximum retry attempts.
func MaxRetries(n int) slog.Attr {
	return slog.Int(KeyMaxRetries, n)
}

// BackoffMs returns a slog.Attr for a computed backoff delay in milliseconds.
func BackoffMs(ms float64) slog.Attr {
	return slog.Float64(KeyBackoffMs, ms)
}

// Workers returns a slog.Attr for the number of concurrent workers in use.
func Workers(n int) slog.Attr {
	return slog.Int(KeyWorkers, n)
}

// DurationMs returns a slog.Attr for a duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a taxonomy error code.
func ErrorCode(code string) slog.Attr {
	return slog.String(KeyErrorCode, code)
}

// ExitCode returns a slog.Attr for a process exit code.
func ExitCode(code int) slog.Attr {
	return slog.Int(KeyExitCode, code)
}

// Source returns a slog.Attr for where a configuration value was resolved from.
func Source(src string) slog.Attr {
	return slog.String(KeySource, src)
}

// RequestID returns a slog.Attr for the AWS request ID echoed back from the S3 API.
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}
