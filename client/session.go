package client

import "github.com/google/uuid"

// NewSessionID returns a fresh identifier for grouping the pings of one
// reading session.
func NewSessionID() string {
	return uuid.NewString()
}
