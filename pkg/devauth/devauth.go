// Package devauth provides development mode credentials.
// The fake backend in client/readmilltest accepts them by default so local
// tools can talk to it without an OAuth handshake.
package devauth

// Token and Secret are the development OAuth pair.
// These values are intentionally obvious and should never be used in production.
const (
	Token  = "LOCAL_DEV_MODE_TOKEN"
	Secret = "LOCAL_DEV_MODE_NOT_FOR_PRODUCTION"
)
