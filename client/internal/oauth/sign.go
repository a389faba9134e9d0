// Package oauth holds the request-signing scheme shared by the client
// transport and the fake backend.
//
// Every request carries the access token in the Authorization header and an
// HMAC-SHA256 signature, keyed by the token secret, over the method, the
// escaped path and a unix timestamp. The secret itself never travels.
package oauth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderTimestamp     = "X-Readmill-Timestamp"
	HeaderSignature     = "X-Readmill-Signature"

	scheme = "OAuth "
)

// Sign returns the hex signature for method, path and timestamp.
func Sign(secret, method, path, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(method + "\n" + path + "\n" + timestamp))
	return hex.EncodeToString(mac.Sum(nil))
}

// Apply sets the authorization headers on req.
func Apply(req *http.Request, token, secret string, now time.Time) {
	ts := strconv.FormatInt(now.Unix(), 10)
	req.Header.Set(HeaderAuthorization, scheme+token)
	req.Header.Set(HeaderTimestamp, ts)
	req.Header.Set(HeaderSignature, Sign(secret, req.Method, req.URL.EscapedPath(), ts))
}

// Token extracts the access token from req, or "" when absent.
func Token(req *http.Request) string {
	v := req.Header.Get(HeaderAuthorization)
	if !strings.HasPrefix(v, scheme) {
		return ""
	}
	return strings.TrimPrefix(v, scheme)
}

// Verify reports whether req carries a valid signature for secret.
func Verify(req *http.Request, secret string) bool {
	ts := req.Header.Get(HeaderTimestamp)
	sig := req.Header.Get(HeaderSignature)
	if ts == "" || sig == "" {
		return false
	}
	want := Sign(secret, req.Method, req.URL.EscapedPath(), ts)
	return hmac.Equal([]byte(want), []byte(sig))
}
