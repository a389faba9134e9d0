package client

import (
	"net/http"
	"net/http/httputil"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/readmill/readmill-api/client/internal/oauth"
)

// debugTransport logs every request/response at debug level.
//
// Enable with READMILL_DEBUG=true (or DEBUG=true) or WithDebugLogging(true).
// Bodies are dumped in full, so keep it out of production. The OAuth token
// and signature are redacted; the secret is never on the wire.
type debugTransport struct{ base http.RoundTripper }

func (dt *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := dt.base
	if base == nil {
		base = http.DefaultTransport
	}

	// A body without GetBody cannot be re-read, so it is left out of the dump.
	dumpBody := req.Body == nil || req.GetBody != nil
	if reqDump, err := httputil.DumpRequestOut(redacted(req), dumpBody); err == nil {
		log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Str("request_dump", string(reqDump)).Msg("HTTP request")
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		log.Error().Err(err).Str("method", req.Method).Str("url", req.URL.String()).Msg("HTTP request failed")
		return nil, err
	}

	if respDump, err := httputil.DumpResponse(resp, true); err == nil {
		log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Int("status_code", resp.StatusCode).Str("response_dump", string(respDump)).Msg("HTTP response")
	}
	return resp, nil
}

// redacted returns a copy of req with credential headers masked and, when
// possible, a fresh body so dumping does not drain the original.
func redacted(req *http.Request) *http.Request {
	cp := req.Clone(req.Context())
	for _, h := range []string{oauth.HeaderAuthorization, oauth.HeaderSignature} {
		if cp.Header.Get(h) != "" {
			cp.Header.Set(h, "[REDACTED]")
		}
	}
	if req.Body != nil && req.GetBody != nil {
		if body, err := req.GetBody(); err == nil {
			cp.Body = body
		}
	}
	return cp
}

// debugLoggingRequested checks if HTTP debug logging should be enabled.
// Either READMILL_DEBUG=true or DEBUG=true turns it on.
func debugLoggingRequested() bool {
	return os.Getenv("READMILL_DEBUG") == "true" || os.Getenv("DEBUG") == "true"
}
