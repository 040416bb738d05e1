package transfer

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s3clierrors "github.com/marmos91/s3cli/internal/errors"
)

func TestPartSizeFor(t *testing.T) {
	assert.Equal(t, uint64(minPartSize), partSizeFor(1024))
	assert.Equal(t, uint64(minPartSize), partSizeFor(minMultipartSize))

	huge := uint64(200 * 1024 * 1024 * 1024) // 200 GiB
	got := partSizeFor(huge)
	assert.Greater(t, got, uint64(minPartSize))
	assert.LessOrEqual(t, (huge+got-1)/got, uint64(maxParts))
}

type fakeAPIError struct {
	code   string
	status int
}

func (f fakeAPIError) Error() string               { return f.code }
func (f fakeAPIError) ErrorCode() string            { return f.code }
func (f fakeAPIError) ErrorMessage() string         { return f.code }
func (f fakeAPIError) ErrorFault() smithy.ErrorFault { return smithy.FaultUnknown }
func (f fakeAPIError) HTTPStatusCode() int          { return f.status }

func TestClassifyS3Error_ContextCancelled(t *testing.T) {
	err := classifyS3Error(context.Canceled, "cp", "bucket", "key")
	var wrapped *s3clierrors.Error
	require.True(t, errors.As(err, &wrapped))
	assert.Equal(t, s3clierrors.KindTimeout, wrapped.Kind)
}

func TestClassifyS3Error_NonAPIError(t *testing.T) {
	err := classifyS3Error(errors.New("dial tcp: connection refused"), "cp", "bucket", "key")
	var wrapped *s3clierrors.Error
	require.True(t, errors.As(err, &wrapped))
	assert.Equal(t, s3clierrors.KindNetworkError, wrapped.Kind)
}

func TestClassifyS3Error_MapsStatusCodes(t *testing.T) {
	cases := []struct {
		name string
		err  fakeAPIError
		kind s3clierrors.Kind
	}{
		{"forbidden", fakeAPIError{code: "AccessDenied", status: http.StatusForbidden}, s3clierrors.KindAuthError},
		{"not found", fakeAPIError{code: "NoSuchKey", status: http.StatusNotFound}, s3clierrors.KindNotFound},
		{"conflict", fakeAPIError{code: "Conflict", status: http.StatusConflict}, s3clierrors.KindConflict},
		{"precondition", fakeAPIError{code: "PreconditionFailed", status: http.StatusPreconditionFailed}, s3clierrors.KindConflict},
		{"server error", fakeAPIError{code: "InternalError", status: http.StatusInternalServerError}, s3clierrors.KindNetworkError},
		{"throttled", fakeAPIError{code: "SlowDown", status: http.StatusTooManyRequests}, s3clierrors.KindTimeout},
		{"unmapped", fakeAPIError{code: "Unknown", status: http.StatusTeapot}, s3clierrors.KindFatal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := classifyS3Error(tc.err, "cp", "bucket", "key")
			var wrapped *s3clierrors.Error
			require.True(t, errors.As(err, &wrapped))
			assert.Equal(t, tc.kind, wrapped.Kind)
		})
	}
}

func TestRenameAtomic_SameFilesystem(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")

	require.NoError(t, os.WriteFile(src, []byte("payload"), 0644))
	require.NoError(t, renameAtomic(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err))
}

func TestIsCrossDeviceError(t *testing.T) {
	_, err := os.Open(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.False(t, isCrossDeviceError(err))
}
