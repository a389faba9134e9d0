package errors

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// serverErrorBody is the error envelope the Readmill API answers with:
// {"error": "Not Found", "code": 404, "message": "no such user"}.
// code may be numeric or textual.
type serverErrorBody struct {
	Error   string          `json:"error"`
	Code    json.RawMessage `json:"code"`
	Message string          `json:"message"`
}

// NewHTTPError builds a ServerRejected error from a non-success response.
// The body is parsed as the standard error envelope when possible and kept
// verbatim as the message otherwise.
func NewHTTPError(op string, statusCode int, body []byte) *Error {
	e := &Error{
		Kind:       KindServerRejected,
		Op:         op,
		StatusCode: statusCode,
		Underlying: fmt.Errorf("%s failed: HTTP %d", op, statusCode),
	}

	var env serverErrorBody
	if err := json.Unmarshal(body, &env); err == nil && (env.Error != "" || env.Message != "") {
		e.Code = decodeCode(env.Code)
		e.Message = env.Message
		if e.Message == "" {
			e.Message = env.Error
		}
		return e
	}
	e.Message = strings.TrimSpace(string(body))
	return e
}

func decodeCode(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.Itoa(n)
	}
	return ""
}

// NewTransportError wraps a failure where no response was obtained.
func NewTransportError(op string, err error) *Error {
	return &Error{
		Kind:       KindTransport,
		Op:         op,
		Underlying: fmt.Errorf("%s network error: %w", op, err),
	}
}

// NewMalformedError wraps a decode failure on a received response.
func NewMalformedError(op string, statusCode int, err error) *Error {
	return &Error{
		Kind:       KindMalformed,
		Op:         op,
		StatusCode: statusCode,
		Underlying: fmt.Errorf("%s decode: %w", op, err),
	}
}

// NewValidationError reports a local precondition failure.
func NewValidationError(op, msg string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: msg}
}

// NewAuthenticationError reports missing or unusable credentials.
func NewAuthenticationError(op, msg string) *Error {
	return &Error{Kind: KindAuthentication, Op: op, Message: msg}
}
