package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	sdkerrors "github.com/readmill/readmill-api/client/internal/errors"
)

// HTTPClient interface for dependency injection
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Activity brackets every dispatched request (push before, pop after).
type Activity interface {
	Push()
	Pop()
}

// Endpoint is everything a call needs to reach the service. Authorization
// headers are added by the transport underneath HTTP.
type Endpoint struct {
	HTTP      HTTPClient
	BaseURL   string
	Activity  Activity // optional
	UserAgent string   // optional
}

// call describes one request/response exchange.
type call struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	accept []int // success statuses; defaults to 200
	// ack accepts any 2xx, and an empty body then leaves out untouched.
	ack bool
	// check runs after decoding; a failure means the body was unusable.
	check func() error
}

var (
	statusOK      = []int{http.StatusOK}
	statusCreated = []int{http.StatusOK, http.StatusCreated}
)

// do performs c and decodes the JSON response into out (when non-nil).
func (ep Endpoint) do(ctx context.Context, c call, out any) error {
	if err := ctx.Err(); err != nil {
		return sdkerrors.NewTransportError(c.op, err)
	}

	var body io.Reader
	if c.body != nil {
		b, err := json.Marshal(c.body)
		if err != nil {
			return sdkerrors.NewValidationError(c.op, err.Error())
		}
		body = bytes.NewReader(b)
	}

	u := ep.BaseURL + c.path
	if len(c.query) > 0 {
		u += "?" + c.query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, c.method, u, body)
	if err != nil {
		return sdkerrors.NewValidationError(c.op, err.Error())
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if ep.UserAgent != "" {
		httpReq.Header.Set("User-Agent", ep.UserAgent)
	}

	return ep.dispatch(c.op, httpReq, func(resp *http.Response) error {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return sdkerrors.NewTransportError(c.op, err)
		}
		if !c.accepts(resp.StatusCode) {
			return sdkerrors.NewHTTPError(c.op, resp.StatusCode, raw)
		}
		if out == nil || (c.ack && len(bytes.TrimSpace(raw)) == 0) {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return sdkerrors.NewMalformedError(c.op, resp.StatusCode, err)
		}
		if c.check != nil {
			if err := c.check(); err != nil {
				return sdkerrors.NewMalformedError(c.op, resp.StatusCode, err)
			}
		}
		return nil
	})
}

// dispatch sends req and hands the response to handle. The activity counter
// and in-flight gauge are released exactly once on every path, panics
// included.
func (ep Endpoint) dispatch(op string, req *http.Request, handle func(*http.Response) error) (err error) {
	if ep.Activity != nil {
		ep.Activity.Push()
		defer ep.Activity.Pop()
	}
	requestsInFlight.Inc()
	defer requestsInFlight.Dec()

	start := time.Now()
	defer func() { observe(op, start, err) }()

	resp, err := ep.HTTP.Do(req)
	if err != nil {
		return sdkerrors.NewTransportError(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	return handle(resp)
}

func (c call) accepts(code int) bool {
	if c.ack && code >= 200 && code < 300 {
		return true
	}
	statuses := c.accept
	if len(statuses) == 0 {
		statuses = statusOK
	}
	for _, s := range statuses {
		if s == code {
			return true
		}
	}
	return false
}

// nonNil turns a JSON null list into an empty one so callers can tell
// "no results" from a failure by the error alone.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
