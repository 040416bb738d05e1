package commands

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/smithy-go"

	s3clierrors "github.com/marmos91/s3cli/internal/errors"
)

// classifyError maps a raw aws-sdk-go-v2 error into the taxonomy for verbs
// that call the S3 client directly from the dispatcher (ls, mb, rb,
// presign, head-object, du) rather than through the transfer or delete
// engines, which carry their own identically-shaped classifiers.
func classifyError(err error, operation, bucket, key string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return s3clierrors.Wrap(s3clierrors.KindTimeout, err, "request timed out").
			WithOperation(operation).WithBucket(bucket).WithKey(key)
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return s3clierrors.Wrap(s3clierrors.KindNetworkError, err, "network error").
			WithOperation(operation).WithBucket(bucket).WithKey(key)
	}

	var httpErr interface{ HTTPStatusCode() int }
	status := 0
	if errors.As(err, &httpErr) {
		status = httpErr.HTTPStatusCode()
	}

	switch {
	case status == http.StatusForbidden || apiErr.ErrorCode() == "AccessDenied":
		return s3clierrors.Wrap(s3clierrors.KindAuthError, err, "access denied").
			WithOperation(operation).WithBucket(bucket).WithKey(key)
	case status == http.StatusNotFound || apiErr.ErrorCode() == "NoSuchKey" || apiErr.ErrorCode() == "NoSuchBucket" || apiErr.ErrorCode() == "NotFound":
		return s3clierrors.Wrap(s3clierrors.KindNotFound, err, "not found").
			WithOperation(operation).WithBucket(bucket).WithKey(key)
	case status == http.StatusConflict || status == http.StatusPreconditionFailed || apiErr.ErrorCode() == "BucketAlreadyOwnedByYou" || apiErr.ErrorCode() == "BucketAlreadyExists":
		return s3clierrors.Wrap(s3clierrors.KindConflict, err, "precondition failed").
			WithOperation(operation).WithBucket(bucket).WithKey(key)
	case status >= 500 && status < 600:
		return s3clierrors.Wrap(s3clierrors.KindNetworkError, err, "server error").
			WithOperation(operation).WithBucket(bucket).WithKey(key)
	case status == http.StatusRequestTimeout || status == http.StatusTooManyRequests:
		return s3clierrors.Wrap(s3clierrors.KindTimeout, err, "request throttled or timed out").
			WithOperation(operation).WithBucket(bucket).WithKey(key)
	default:
		return s3clierrors.Wrap(s3clierrors.KindFatal, err, "request failed").
			WithOperation(operation).WithBucket(bucket).WithKey(key)
	}
}
