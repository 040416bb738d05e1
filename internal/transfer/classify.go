package transfer

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/smithy-go"

	s3clierrors "github.com/marmos91/s3cli/internal/errors"
)

// classifyS3Error maps an aws-sdk-go-v2 error into the taxonomy per the
// transfer engine's failure-mode contract: network/timeout and 5xx are
// retryable, 403/credential errors are fatal AuthErrors, 404 is NotFound,
// 409/412 are non-retryable Conflicts.
func classifyS3Error(err error, operation, bucket, key string) error {
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
	case status == http.StatusNotFound || apiErr.ErrorCode() == "NoSuchKey" || apiErr.ErrorCode() == "NotFound":
		return s3clierrors.Wrap(s3clierrors.KindNotFound, err, "object not found").
			WithOperation(operation).WithBucket(bucket).WithKey(key)
	case status == http.StatusConflict || status == http.StatusPreconditionFailed:
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
