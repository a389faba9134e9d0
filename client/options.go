package client

// This file defines functional options that configure the Client during
// construction. Keeping them in a standalone file makes it easy to discover
// all available knobs at a glance.

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Option configures a Client during construction in New.
//
// Options are applied before the signing transport wrapper is installed, so
// transport-related options (like debug logging) end up underneath it.
type Option func(*Client) error

// WithHTTPClient uses a copy of hc for all requests. The caller's client is
// not modified; its Transport becomes the base of the signing wrapper.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return errors.New("http client must not be nil")
		}
		cp := *hc
		c.http = &cp
		return nil
	}
}

// WithHTTPTimeout sets the underlying http.Client Timeout.
//
// The client owns no timeout policy of its own; prefer per-call context
// deadlines. This is a coarse bound on a single HTTP exchange. The value must
// be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithDebugLogging wraps the client's transport so each request/response is
// logged when enabled is true. Credentials are redacted from the dumps.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			if _, already := c.http.Transport.(*debugTransport); !already {
				c.http.Transport = &debugTransport{base: c.http.Transport}
			}
		}
		return nil
	}
}

// WithActivityCounter brackets every dispatched request with
// counter.Push/Pop. The counter is owned by the caller and may be shared by
// several clients.
func WithActivityCounter(counter *ActivityCounter) Option {
	return func(c *Client) error {
		c.activity = counter
		return nil
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		c.userAgent = ua
		return nil
	}
}
