package client

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/readmill/readmill-api/client/internal/api"
	sdkerrors "github.com/readmill/readmill-api/client/internal/errors"
	"github.com/readmill/readmill-api/client/internal/oauth"
	"github.com/readmill/readmill-api/pkg/devauth"
)

// --------------------------------------------------------------------
// Client core
// --------------------------------------------------------------------

// Client talks to the Readmill API on behalf of one OAuth token pair.
// All fields are fixed after New, so a Client is safe for concurrent use.
type Client struct {
	baseURL   string
	http      *http.Client
	creds     Credentials
	activity  *ActivityCounter
	userAgent string
}

// New constructs a Client for baseURL authenticated with creds.
// Empty credentials are accepted here; every operation then fails with an
// Authentication error before touching the network.
func New(baseURL string, creds Credentials, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("baseURL cannot be empty")
	}

	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		creds:     creds,
		http:      &http.Client{},
		userAgent: defaultUserAgent,
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	// Wrap HTTP transport to sign every request with the credentials
	c.wrapTransportWithCredentials()

	return c, nil
}

// NewWithDevMode constructs a Client using the development credentials.
// This only works against a backend that accepts devauth (readmilltest does).
func NewWithDevMode(baseURL string, opts ...Option) (*Client, error) {
	return New(baseURL, Credentials{Token: devauth.Token, Secret: devauth.Secret}, opts...)
}

const defaultUserAgent = "readmill-go"

// wrapTransportWithCredentials installs oauthTransport on top of whatever
// transport the options configured.
func (c *Client) wrapTransportWithCredentials() {
	baseTransport := c.http.Transport
	if baseTransport == nil {
		baseTransport = http.DefaultTransport
	}
	c.http.Transport = &oauthTransport{
		base:  baseTransport,
		creds: c.creds,
		now:   time.Now,
	}
}

// oauthTransport wraps an http.RoundTripper to add the Authorization and
// signature headers.
type oauthTransport struct {
	base  http.RoundTripper
	creds Credentials
	now   func() time.Time
}

func (t *oauthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	cloned := req.Clone(req.Context())
	oauth.Apply(cloned, t.creds.Token, t.creds.Secret, t.now())
	return t.base.RoundTrip(cloned)
}

// Credentials returns the token pair the client was built with.
func (c *Client) Credentials() Credentials { return c.creds }

// endpoint checks credentials for op and returns the api endpoint.
func (c *Client) endpoint(op string) (api.Endpoint, error) {
	if !c.creds.Valid() {
		return api.Endpoint{}, sdkerrors.NewAuthenticationError(op, "missing oauth token or secret")
	}
	ep := api.Endpoint{HTTP: c.http, BaseURL: c.baseURL, UserAgent: c.userAgent}
	if c.activity != nil {
		ep.Activity = c.activity
	}
	return ep, nil
}

// --------------------------------------------------------------------
// Book operations - delegated to internal/api
// --------------------------------------------------------------------

// ListBooks returns every book, in the order the server lists them.
func (c *Client) ListBooks(ctx context.Context) ([]Book, error) {
	ep, err := c.endpoint("list books")
	if err != nil {
		return nil, err
	}
	return api.ListBooks(ctx, ep)
}

// SearchBooksByTitle returns books matching title. No match is an empty slice.
func (c *Client) SearchBooksByTitle(ctx context.Context, title string) ([]Book, error) {
	ep, err := c.endpoint("search books by title")
	if err != nil {
		return nil, err
	}
	return api.SearchBooksByTitle(ctx, ep, title)
}

// SearchBooksByISBN returns books with isbn. No match is an empty slice.
func (c *Client) SearchBooksByISBN(ctx context.Context, isbn string) ([]Book, error) {
	ep, err := c.endpoint("search books by isbn")
	if err != nil {
		return nil, err
	}
	return api.SearchBooksByISBN(ctx, ep, isbn)
}

// AddBook registers a book. The server may return an existing book with the
// same ISBN instead of creating one.
func (c *Client) AddBook(ctx context.Context, req AddBookRequest) (*Book, error) {
	ep, err := c.endpoint("add book")
	if err != nil {
		return nil, err
	}
	return api.AddBook(ctx, ep, req)
}

// --------------------------------------------------------------------
// Read operations - delegated to internal/api
// --------------------------------------------------------------------

// CreateRead starts a read of bookID in the given initial state.
func (c *Client) CreateRead(ctx context.Context, bookID BookID, req CreateReadRequest) (*Read, error) {
	ep, err := c.endpoint("create read")
	if err != nil {
		return nil, err
	}
	return api.CreateRead(ctx, ep, bookID, req)
}

// UpdateRead replaces the state, privacy flag and closing remark of a read.
// The closing remark is forwarded whatever the state; the server decides
// whether it applies.
func (c *Client) UpdateRead(ctx context.Context, readID ReadID, req UpdateReadRequest) (*Read, error) {
	ep, err := c.endpoint("update read")
	if err != nil {
		return nil, err
	}
	return api.UpdateRead(ctx, ep, readID, req)
}

// PublicReadsForUser lists a user's non-private reads.
func (c *Client) PublicReadsForUser(ctx context.Context, userID UserID) ([]Read, error) {
	ep, err := c.endpoint("list public reads for user")
	if err != nil {
		return nil, err
	}
	return api.PublicReadsForUser(ctx, ep, userID)
}

// PublicReadsForUsername lists a user's non-private reads by username.
func (c *Client) PublicReadsForUsername(ctx context.Context, username string) ([]Read, error) {
	ep, err := c.endpoint("list public reads for username")
	if err != nil {
		return nil, err
	}
	return api.PublicReadsForUsername(ctx, ep, username)
}

// --------------------------------------------------------------------
// Ping operations - delegated to internal/api
// --------------------------------------------------------------------

// PingRead reports progress on a read. Progress outside 1-100 fails with a
// Validation error without any network call. Single attempt; see PingQueue
// for queued delivery with retries.
func (c *Client) PingRead(ctx context.Context, readID ReadID, req PingRequest) (*Ping, error) {
	ep, err := c.endpoint("ping read")
	if err != nil {
		return nil, err
	}
	return api.PingRead(ctx, ep, readID, req)
}

// --------------------------------------------------------------------
// User operations - delegated to internal/api
// --------------------------------------------------------------------

// User retrieves a user by ID. An unknown id fails with ErrNotFound.
func (c *Client) User(ctx context.Context, userID UserID) (*User, error) {
	ep, err := c.endpoint("get user")
	if err != nil {
		return nil, err
	}
	return api.GetUser(ctx, ep, userID)
}

// UserByUsername retrieves a user by username. An unknown name fails with
// ErrNotFound.
func (c *Client) UserByUsername(ctx context.Context, username string) (*User, error) {
	ep, err := c.endpoint("get user by username")
	if err != nil {
		return nil, err
	}
	return api.GetUserByUsername(ctx, ep, username)
}
