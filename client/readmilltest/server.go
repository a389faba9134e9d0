// Package readmilltest runs an in-memory Readmill backend for tests and local
// tools. It speaks the same wire format as the real API, checks request
// signatures, and records every call it receives.
package readmilltest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/readmill/readmill-api/client/internal/oauth"
	"github.com/readmill/readmill-api/client/internal/types"
	"github.com/readmill/readmill-api/pkg/devauth"
)

type (
	Book = types.Book
	Read = types.Read
	Ping = types.Ping
	User = types.User
)

// Call is one request as the backend received it.
type Call struct {
	Method string
	Path   string
	Query  string
	Body   []byte
	Token  string

	UserAgent string
}

type account struct {
	secret string
	userID types.UserID
}

type injectedFailure struct {
	status    int
	remaining int
}

// Server is a running fake backend. The zero value is not usable; call New.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	accounts  map[string]account
	devToken  string
	dupPolicy DuplicateReadPolicy
	now       func() time.Time

	books []Book
	reads map[types.ReadID]*Read
	pings map[types.ReadID][]Ping
	users map[types.UserID]*User

	nextBook, nextRead, nextPing, nextUser uint64

	failure injectedFailure
	calls   []Call

	requests atomic.Int64
}

// New starts a backend. The devauth credentials are accepted as user
// "reader" unless WithoutDevAccount is given.
func New(opts ...Option) *Server {
	s := &Server{
		accounts: make(map[string]account),
		devToken: devauth.Token,
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Second) },
		reads:    make(map[types.ReadID]*Read),
		pings:    make(map[types.ReadID][]Ping),
		users:    make(map[types.UserID]*User),
	}
	dev := s.addUserLocked(User{Username: "reader", FullName: "Dev Reader"})
	s.accounts[devauth.Token] = account{secret: devauth.Secret, userID: dev.ID}

	for _, opt := range opts {
		opt(s)
	}

	s.Server = httptest.NewServer(s.router())
	return s
}

func (s *Server) router() http.Handler {
	r := mux.NewRouter()
	r.Use(recoveryMiddleware, s.failureMiddleware, s.authMiddleware)

	r.HandleFunc("/books", s.handleListBooks).Methods(http.MethodGet)
	r.HandleFunc("/books", s.handleAddBook).Methods(http.MethodPost)
	r.HandleFunc("/books/{id:[0-9]+}/reads", s.handleCreateRead).Methods(http.MethodPost)
	r.HandleFunc("/reads/{id:[0-9]+}", s.handleUpdateRead).Methods(http.MethodPut)
	r.HandleFunc("/reads/{id:[0-9]+}/pings", s.handlePing).Methods(http.MethodPost)
	r.HandleFunc("/users/{id:[0-9]+}", s.handleGetUser).Methods(http.MethodGet)
	r.HandleFunc("/users/{id:[0-9]+}/reads", s.handleUserReads).Methods(http.MethodGet)
	r.HandleFunc("/users/by-username/{name}", s.handleGetUser).Methods(http.MethodGet)
	r.HandleFunc("/users/by-username/{name}/reads", s.handleUserReads).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "no such endpoint")
	})
	return s.recordMiddleware(r)
}

func (s *Server) recordMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)

		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			_ = r.Body.Close()
			r.Body = io.NopCloser(strings.NewReader(string(body)))
		}
		s.mu.Lock()
		s.calls = append(s.calls, Call{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Body:   body,
			Token:  oauth.Token(r),

			UserAgent: r.UserAgent(),
		})
		s.mu.Unlock()

		log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("readmilltest: request")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) failureMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status := 0
		if s.failure.remaining > 0 {
			s.failure.remaining--
			status = s.failure.status
		}
		s.mu.Unlock()

		if status != 0 {
			writeError(w, status, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := oauth.Token(r)
		s.mu.Lock()
		acct, ok := s.accounts[token]
		s.mu.Unlock()

		if !ok || !oauth.Verify(r, acct.secret) {
			writeError(w, http.StatusUnauthorized, "invalid oauth token or signature")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), acct.userID)))
	})
}

// AddUser stores u under a fresh id and returns the stored copy.
func (s *Server) AddUser(u User) User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(u)
}

func (s *Server) addUserLocked(u User) User {
	s.nextUser++
	u.ID = types.UserID(s.nextUser)
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	stored := u
	s.users[u.ID] = &stored
	return u
}

// AddAccount registers an OAuth pair for an existing user.
func (s *Server) AddAccount(token, secret string, userID types.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[token] = account{secret: secret, userID: userID}
}

// DevUser returns the user the devauth credentials act as.
func (s *Server) DevUser() User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.users[s.accounts[s.devToken].userID]
}

// AddBook stores b under a fresh id and returns the stored copy.
func (s *Server) AddBook(b Book) Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addBookLocked(b)
}

func (s *Server) addBookLocked(b Book) Book {
	s.nextBook++
	b.ID = types.BookID(s.nextBook)
	if b.Permalink == "" {
		b.Permalink = permalink(b.Title)
	}
	s.books = append(s.books, b)
	return b
}

// AddRead stores a read directly, bypassing duplicate checks.
func (s *Server) AddRead(rd Read) Read {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addReadLocked(rd)
}

func (s *Server) addReadLocked(rd Read) Read {
	s.nextRead++
	rd.ID = types.ReadID(s.nextRead)
	now := s.now()
	if rd.CreatedAt.IsZero() {
		rd.CreatedAt = now
	}
	rd.UpdatedAt = rd.CreatedAt
	stored := rd
	s.reads[rd.ID] = &stored
	return rd
}

// Pings returns the pings recorded for readID in arrival order.
func (s *Server) Pings(readID types.ReadID) []Ping {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Ping(nil), s.pings[readID]...)
}

// Reads returns every stored read ordered by id.
func (s *Server) Reads() []Read {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedReadsLocked()
}

// FailNext makes the next n requests fail with status before any other
// processing, including the credential check.
func (s *Server) FailNext(n, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = injectedFailure{status: status, remaining: n}
}

// Requests returns how many HTTP requests reached the backend.
func (s *Server) Requests() int64 { return s.requests.Load() }

// Calls returns a copy of every request received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

func permalink(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), "-")
}
