// Package errors classifies SDK failures so callers can tell a bad request
// from a flaky network and decide on retries themselves.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind is the failure class of an SDK error.
type Kind int

const (
	// KindAuthentication: credentials missing or unusable. Raised before any
	// network activity.
	KindAuthentication Kind = iota + 1

	// KindValidation: a locally checkable precondition failed (for example a
	// ping progress outside 1-100). Raised before any network activity.
	KindValidation

	// KindTransport: no response was obtained (connectivity, timeout,
	// cancelled request).
	KindTransport

	// KindServerRejected: the server answered with a non-success status.
	KindServerRejected

	// KindMalformed: a response arrived but could not be decoded into the
	// expected shape.
	KindMalformed
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "Authentication"
	case KindValidation:
		return "Validation"
	case KindTransport:
		return "Transport"
	case KindServerRejected:
		return "ServerRejected"
	case KindMalformed:
		return "Malformed"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Sentinels matched by (*Error).Is so callers can write
// errors.Is(err, ErrTransport) without type assertions.
var (
	ErrAuthentication = stderrors.New("authentication failed")
	ErrValidation     = stderrors.New("validation failed")
	ErrTransport      = stderrors.New("transport failure")
	ErrServerRejected = stderrors.New("server rejected request")
	ErrMalformed      = stderrors.New("malformed response")

	// ErrNotFound matches server rejections with HTTP 404.
	ErrNotFound = stderrors.New("not found")
)

// Error is the single error type returned by every client operation.
type Error struct {
	Kind       Kind
	Op         string // operation name, e.g. "get user"
	StatusCode int    // HTTP status (0 when no response was received)
	Code       string // server-provided error code, if any
	Message    string // human-readable message (server message when available)
	Underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Underlying != nil {
		msg = e.Underlying.Error()
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: [%s] HTTP %d: %s", e.Op, e.Kind, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s: [%s] %s", e.Op, e.Kind, msg)
}

// Unwrap returns the underlying error for error chain compatibility.
func (e *Error) Unwrap() error {
	return e.Underlying
}

// Is matches the kind sentinels and ErrNotFound.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrAuthentication:
		return e.Kind == KindAuthentication
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrServerRejected:
		return e.Kind == KindServerRejected
	case ErrMalformed:
		return e.Kind == KindMalformed
	case ErrNotFound:
		return e.Kind == KindServerRejected && e.StatusCode == http.StatusNotFound
	}
	return false
}

// Retryable reports whether repeating the same call may succeed.
//   - transport failures are retryable, except a context the caller cancelled
//   - 408, 429 and 5xx rejections are retryable
//   - everything else (4xx, validation, auth, malformed) is not
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindTransport:
		return !stderrors.Is(e.Underlying, context.Canceled)
	case KindServerRejected:
		return isRetryableStatus(e.StatusCode)
	default:
		return false
	}
}

func isRetryableStatus(statusCode int) bool {
	switch {
	case statusCode == http.StatusRequestTimeout, statusCode == http.StatusTooManyRequests:
		return true
	case statusCode >= 500 && statusCode < 600:
		return true
	default:
		return false
	}
}

// KindOf returns the kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsRetryable reports whether err is an *Error that may succeed on retry.
func IsRetryable(err error) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Retryable()
	}
	return false
}
