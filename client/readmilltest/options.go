package readmilltest

import "time"

// DuplicateReadPolicy decides what a second read of the same book by the
// same user gets.
type DuplicateReadPolicy int

const (
	// RejectDuplicateReads answers 409 Conflict.
	RejectDuplicateReads DuplicateReadPolicy = iota
	// ReturnExistingRead answers 200 with the read that already exists.
	ReturnExistingRead
)

// Option configures a Server.
type Option func(*Server)

// WithDuplicateReadPolicy sets how repeated reads of one book are handled.
func WithDuplicateReadPolicy(p DuplicateReadPolicy) Option {
	return func(s *Server) { s.dupPolicy = p }
}

// WithAccount registers an OAuth pair acting as a new user called username.
func WithAccount(token, secret, username string) Option {
	return func(s *Server) {
		u := s.addUserLocked(User{Username: username})
		s.accounts[token] = account{secret: secret, userID: u.ID}
	}
}

// WithoutDevAccount drops the built-in devauth account.
func WithoutDevAccount() Option {
	return func(s *Server) { delete(s.accounts, s.devToken) }
}

// WithClock replaces time.Now for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}
