package client

import sdkerrors "github.com/readmill/readmill-api/client/internal/errors"

// Error is returned by every Client operation that fails after the context
// check. Inspect it with errors.As, or match kinds with errors.Is against the
// sentinels below.
type Error = sdkerrors.Error

// ErrorKind classifies an Error.
type ErrorKind = sdkerrors.Kind

const (
	KindAuthentication = sdkerrors.KindAuthentication
	KindValidation     = sdkerrors.KindValidation
	KindTransport      = sdkerrors.KindTransport
	KindServerRejected = sdkerrors.KindServerRejected
	KindMalformed      = sdkerrors.KindMalformed
)

// Re-export shared SDK errors so callers compare against a single symbol.
var (
	ErrAuthentication = sdkerrors.ErrAuthentication
	ErrValidation     = sdkerrors.ErrValidation
	ErrTransport      = sdkerrors.ErrTransport
	ErrServerRejected = sdkerrors.ErrServerRejected
	ErrMalformed      = sdkerrors.ErrMalformed
	ErrNotFound       = sdkerrors.ErrNotFound
)

// KindOf returns the kind of err, or 0 when err did not come from the client.
func KindOf(err error) ErrorKind { return sdkerrors.KindOf(err) }

// IsRetryable reports whether err may succeed if the caller repeats the call.
// The client itself never retries.
func IsRetryable(err error) bool { return sdkerrors.IsRetryable(err) }
