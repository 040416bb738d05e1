// Package errors provides a structured error taxonomy for s3cli with error
// codes, exit-code mapping, and retry hints.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// Kind represents the category of an s3cli error.
type Kind string

const (
	KindInvalidUri       Kind = "InvalidUri"
	KindInvalidArgument  Kind = "InvalidArgument"
	KindPatternError     Kind = "PatternError"
	KindFilterParseError Kind = "FilterParseError"
	KindConfigError      Kind = "ConfigError"
	KindAuthError        Kind = "AuthError"
	KindNetworkError     Kind = "NetworkError"
	KindNotFound         Kind = "NotFound"
	KindConflict         Kind = "Conflict"
	KindPhantomDelete    Kind = "PhantomDelete"
	KindCancelled        Kind = "Cancelled"
	KindTimeout          Kind = "Timeout"
	KindFatal            Kind = "Fatal"

	// KindPartialFailure labels the errors_total metric for a batch
	// (cp/sync/rm) that completed with some per-item failures but no
	// whole-invocation error; the individual items' own kinds aren't
	// visible past the batchResult interface.
	KindPartialFailure Kind = "PartialFailure"
)

// Process exit codes. These four are fixed; everything else is an
// item-level failure folded into exit 1 via BatchOutcome.
const (
	ExitSuccess      = 0
	ExitItemFailure  = 1
	ExitConfigError  = 2
	ExitNetworkError = 3
	ExitAuthError    = 4
)

// Error is a structured s3cli error carrying a taxonomy kind, retry hint,
// and optional operation/resource context for diagnostics.
type Error struct {
	Kind      Kind
	Message   string
	Cause     error
	Operation string // Verb: ls, cp, sync, rm, mb, rb, presign, head-object, du
	Bucket    string
	Key       string
	Timestamp time.Time
}

// Error implements the error interface.
func (e *Error) Error() string {
	var loc string
	switch {
	case e.Bucket != "" && e.Key != "":
		loc = fmt.Sprintf("s3://%s/%s", e.Bucket, e.Key)
	case e.Bucket != "":
		loc = fmt.Sprintf("s3://%s", e.Bucket)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Kind, e.Message)
	if loc != "" {
		fmt.Fprintf(&b, " (%s)", loc)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %s", e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause for errors.Is/errors.As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New creates a new Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Timestamp: time.Now()}
}

// Wrap creates a new Error of the given kind wrapping cause.
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause, Timestamp: time.Now()}
}

// WithOperation sets the CLI verb that produced the error.
func (e *Error) WithOperation(op string) *Error {
	e.Operation = op
	return e
}

// WithBucket sets the bucket the error pertains to.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey sets the object key the error pertains to.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// ExitCode returns the process exit code for an error of this kind.
// Only the parse-time/config/network/auth kinds short-circuit the process;
// everything else is folded into item-level failure accounting (exit 1)
// by the caller's BatchOutcome.
func (e *Error) ExitCode() int {
	return ExitCodeForKind(e.Kind)
}

// ExitCodeForKind maps a taxonomy Kind directly to a process exit code.
func ExitCodeForKind(kind Kind) int {
	switch kind {
	case KindInvalidUri, KindInvalidArgument, KindPatternError, KindFilterParseError, KindConfigError:
		return ExitConfigError
	case KindAuthError:
		return ExitAuthError
	case KindNetworkError:
		return ExitNetworkError
	case KindCancelled, KindFatal:
		return ExitItemFailure
	default:
		// NotFound, Conflict, PhantomDelete, Timeout: item-level failures,
		// never short-circuit the process on their own.
		return ExitItemFailure
	}
}

// IsRetryable reports whether an error of this kind should be retried by
// the concurrency fabric's backoff loop. Timeout is retryable up to the
// configured attempt cap; once the attempts are exhausted the last error is
// reported with its own kind (see internal/concurrency).
func IsRetryable(kind Kind) bool {
	switch kind {
	case KindTimeout, KindNetworkError:
		return true
	default:
		return false
	}
}

// IsShortCircuit reports whether an error of this kind should abort the
// whole invocation instead of being collected as a per-item failure.
// Only parse-time and configuration errors short-circuit; everything else
// flows into the BatchOutcome's per-item failure list.
func IsShortCircuit(kind Kind) bool {
	switch kind {
	case KindInvalidUri, KindInvalidArgument, KindPatternError, KindFilterParseError, KindConfigError:
		return true
	default:
		return false
	}
}
