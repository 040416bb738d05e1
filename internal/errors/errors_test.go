package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	t.Run("PlainMessage", func(t *testing.T) {
		e := New(KindNotFound, "object missing")
		assert.Equal(t, "NotFound: object missing", e.Error())
	})

	t.Run("WithBucketAndKey", func(t *testing.T) {
		e := New(KindNotFound, "object missing").WithBucket("b").WithKey("k.txt")
		assert.Equal(t, "NotFound: object missing (s3://b/k.txt)", e.Error())
	})

	t.Run("WithBucketOnly", func(t *testing.T) {
		e := New(KindConflict, "bucket exists").WithBucket("b")
		assert.Equal(t, "Conflict: bucket exists (s3://b)", e.Error())
	})

	t.Run("WithCause", func(t *testing.T) {
		cause := errors.New("dial tcp: timeout")
		e := Wrap(KindNetworkError, cause, "upload failed")
		assert.Contains(t, e.Error(), "upload failed")
		assert.Contains(t, e.Error(), "dial tcp: timeout")
	})
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	e := Wrap(KindFatal, cause, "boom")
	assert.Equal(t, cause, errors.Unwrap(e))
}

func TestIs(t *testing.T) {
	e1 := New(KindNotFound, "missing")
	e2 := New(KindNotFound, "other message")
	e3 := New(KindConflict, "missing")

	assert.True(t, errors.Is(e1, e2))
	assert.False(t, errors.Is(e1, e3))
}

func TestExitCodeForKind(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindInvalidUri, ExitConfigError},
		{KindInvalidArgument, ExitConfigError},
		{KindPatternError, ExitConfigError},
		{KindFilterParseError, ExitConfigError},
		{KindConfigError, ExitConfigError},
		{KindAuthError, ExitAuthError},
		{KindNetworkError, ExitNetworkError},
		{KindCancelled, ExitItemFailure},
		{KindFatal, ExitItemFailure},
		{KindNotFound, ExitItemFailure},
		{KindConflict, ExitItemFailure},
		{KindPhantomDelete, ExitItemFailure},
		{KindTimeout, ExitItemFailure},
	}

	for _, c := range cases {
		t.Run(string(c.kind), func(t *testing.T) {
			assert.Equal(t, c.want, ExitCodeForKind(c.kind))
			assert.Equal(t, c.want, New(c.kind, "x").ExitCode())
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(KindTimeout))
	assert.True(t, IsRetryable(KindNetworkError))
	assert.False(t, IsRetryable(KindNotFound))
	assert.False(t, IsRetryable(KindAuthError))
}

func TestIsShortCircuit(t *testing.T) {
	assert.True(t, IsShortCircuit(KindInvalidUri))
	assert.True(t, IsShortCircuit(KindConfigError))
	assert.False(t, IsShortCircuit(KindNotFound))
	assert.False(t, IsShortCircuit(KindPhantomDelete))
}
