package deleteengine

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/smithy-go"

	s3clierrors "github.com/marmos91/s3cli/internal/errors"
)

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return true
		}
	}
	var httpErr interface{ HTTPStatusCode() int }
	if errors.As(err, &httpErr) && httpErr.HTTPStatusCode() == http.StatusNotFound {
		return true
	}
	return false
}

func classifyDeleteError(err error, bucket string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return s3clierrors.Wrap(s3clierrors.KindTimeout, err, "request timed out").
			WithOperation("rm").WithBucket(bucket)
	}

	if isNotFound(err) {
		return s3clierrors.Wrap(s3clierrors.KindNotFound, err, "not found").
			WithOperation("rm").WithBucket(bucket)
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return s3clierrors.Wrap(s3clierrors.KindNetworkError, err, "network error").
			WithOperation("rm").WithBucket(bucket)
	}

	var httpErr interface{ HTTPStatusCode() int }
	status := 0
	if errors.As(err, &httpErr) {
		status = httpErr.HTTPStatusCode()
	}

	switch {
	case status == http.StatusForbidden || apiErr.ErrorCode() == "AccessDenied":
		return s3clierrors.Wrap(s3clierrors.KindAuthError, err, "access denied").
			WithOperation("rm").WithBucket(bucket)
	case status >= 500 && status < 600:
		return s3clierrors.Wrap(s3clierrors.KindNetworkError, err, "server error").
			WithOperation("rm").WithBucket(bucket)
	case status == http.StatusRequestTimeout || status == http.StatusTooManyRequests:
		return s3clierrors.Wrap(s3clierrors.KindTimeout, err, "request throttled or timed out").
			WithOperation("rm").WithBucket(bucket)
	default:
		return s3clierrors.Wrap(s3clierrors.KindFatal, err, "request failed").
			WithOperation("rm").WithBucket(bucket)
	}
}
