package commands

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marmos91/s3cli/internal/deleteengine"
	s3clierrors "github.com/marmos91/s3cli/internal/errors"
)

func TestResolveExitCode_Success(t *testing.T) {
	assert.Equal(t, s3clierrors.ExitSuccess, resolveExitCode(nil, nil))
}

func TestResolveExitCode_StructuredErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		kind s3clierrors.Kind
		want int
	}{
		{"invalid uri", s3clierrors.KindInvalidUri, s3clierrors.ExitConfigError},
		{"config error", s3clierrors.KindConfigError, s3clierrors.ExitConfigError},
		{"auth error", s3clierrors.KindAuthError, s3clierrors.ExitAuthError},
		{"network error", s3clierrors.KindNetworkError, s3clierrors.ExitNetworkError},
		{"not found folds to item failure", s3clierrors.KindNotFound, s3clierrors.ExitItemFailure},
		{"cancelled folds to item failure", s3clierrors.KindCancelled, s3clierrors.ExitItemFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s3clierrors.New(tt.kind, "boom")
			assert.Equal(t, tt.want, resolveExitCode(err, nil))
		})
	}
}

func TestResolveExitCode_UnstructuredErrorFallsBackToItemFailure(t *testing.T) {
	err := errors.New("some plain error")
	assert.Equal(t, s3clierrors.ExitItemFailure, resolveExitCode(err, nil))
}

func TestResolveExitCode_BatchOutcomeWithFailuresWithoutError(t *testing.T) {
	outcome := deleteengine.DeleteOutcome{
		Bucket: "my-bucket",
		Failed: map[string]error{"key.txt": errors.New("denied")},
	}
	assert.Equal(t, s3clierrors.ExitItemFailure, resolveExitCode(nil, outcome))
}

func TestResolveExitCode_BatchOutcomeWithPhantomsWithoutError(t *testing.T) {
	outcome := deleteengine.DeleteOutcome{
		Bucket:   "my-bucket",
		Phantoms: []string{"still-there.txt"},
	}
	assert.Equal(t, s3clierrors.ExitItemFailure, resolveExitCode(nil, outcome))
}

func TestResolveExitCode_BatchOutcomeClean(t *testing.T) {
	outcome := deleteengine.DeleteOutcome{
		Bucket:  "my-bucket",
		Deleted: []string{"a.txt", "b.txt"},
	}
	assert.Equal(t, s3clierrors.ExitSuccess, resolveExitCode(nil, outcome))
}

func TestResolveExitCode_ErrorTakesPriorityOverOutcome(t *testing.T) {
	outcome := deleteengine.DeleteOutcome{Bucket: "my-bucket"}
	err := s3clierrors.New(s3clierrors.KindAuthError, "denied")
	assert.Equal(t, s3clierrors.ExitAuthError, resolveExitCode(err, outcome))
}

func TestErrKind_StructuredError(t *testing.T) {
	err := s3clierrors.New(s3clierrors.KindTimeout, "slow").WithOperation("cp")
	kind, ok := errKind(err)
	assert.True(t, ok)
	assert.Equal(t, s3clierrors.KindTimeout, kind)
}

func TestErrKind_WrappedStructuredError(t *testing.T) {
	inner := s3clierrors.New(s3clierrors.KindNetworkError, "dial failed")
	wrapped := errors.Join(errors.New("context"), inner)
	kind, ok := errKind(wrapped)
	assert.True(t, ok)
	assert.Equal(t, s3clierrors.KindNetworkError, kind)
}

func TestErrKind_PlainError(t *testing.T) {
	_, ok := errKind(errors.New("plain"))
	assert.False(t, ok)
}

// batchResult must be satisfiable by both outcome shapes dispatch can be
// handed, without any adapter code.
func TestBatchResult_DeleteOutcomeSatisfiesInterface(t *testing.T) {
	var _ batchResult = deleteengine.DeleteOutcome{}
}

func TestExitCode_ReflectsLastDispatch(t *testing.T) {
	defer func() { exitCode = s3clierrors.ExitSuccess }()

	exitCode = s3clierrors.ExitNetworkError
	assert.Equal(t, s3clierrors.ExitNetworkError, ExitCode())
}
