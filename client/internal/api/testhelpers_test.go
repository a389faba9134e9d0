package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// errRT is an http.RoundTripper that always returns an error (simulates network failure).
type errRT struct{}

func (e *errRT) RoundTrip(*http.Request) (*http.Response, error) { return nil, fmt.Errorf("boom") }

// countingActivity records push/pop calls.
type countingActivity struct {
	pushes, pops atomic.Int32
}

func (a *countingActivity) Push() { a.pushes.Add(1) }
func (a *countingActivity) Pop()  { a.pops.Add(1) }

// stubServer starts an httptest server and returns an Endpoint pointing at it.
func stubServer(t *testing.T, h http.HandlerFunc) Endpoint {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return Endpoint{HTTP: srv.Client(), BaseURL: srv.URL}
}

func failingEndpoint() Endpoint {
	return Endpoint{HTTP: &http.Client{Transport: &errRT{}}, BaseURL: "http://example.com"}
}
