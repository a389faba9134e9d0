package client

import "github.com/readmill/readmill-api/client/internal/types"

// Public type aliases so SDK consumers can import only the client package.
type (
	// Identifiers
	BookID = types.BookID
	ReadID = types.ReadID
	UserID = types.UserID
	PingID = types.PingID

	ReadState = types.ReadState

	// Requests
	AddBookRequest    = types.AddBookRequest
	CreateReadRequest = types.CreateReadRequest
	UpdateReadRequest = types.UpdateReadRequest
	PingRequest       = types.PingRequest

	// Domain entities
	Book = types.Book
	Read = types.Read
	Ping = types.Ping
	User = types.User
)

const (
	ReadStateInteresting = types.ReadStateInteresting
	ReadStateReading     = types.ReadStateReading
	ReadStateFinished    = types.ReadStateFinished
	ReadStateAbandoned   = types.ReadStateAbandoned
)

// ReadStates lists every valid state in ordinal order.
var ReadStates = types.ReadStates

// ParseReadState accepts a state name ("finished") or its ordinal ("3").
func ParseReadState(v string) (ReadState, error) { return types.ParseReadState(v) }
