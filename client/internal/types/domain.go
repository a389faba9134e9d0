package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ------------------------------
// Identifiers
// ------------------------------

// BookID identifies a book. Distinct from ReadID and UserID so the compiler
// rejects passing one kind of id where another is expected.
type BookID uint64

// ReadID identifies a read (one user's reading of one book).
type ReadID uint64

// UserID identifies a user.
type UserID uint64

// PingID identifies a stored ping.
type PingID uint64

func (id BookID) String() string { return strconv.FormatUint(uint64(id), 10) }
func (id ReadID) String() string { return strconv.FormatUint(uint64(id), 10) }
func (id UserID) String() string { return strconv.FormatUint(uint64(id), 10) }
func (id PingID) String() string { return strconv.FormatUint(uint64(id), 10) }

// ------------------------------
// ReadState
// ------------------------------

// ReadState is the lifecycle state of a read. The numeric values are the
// wire representation and must not change.
type ReadState int

const (
	ReadStateInteresting ReadState = 1
	ReadStateReading     ReadState = 2
	ReadStateFinished    ReadState = 3
	ReadStateAbandoned   ReadState = 4
)

// ReadStates lists every valid state in ordinal order.
var ReadStates = []ReadState{ReadStateInteresting, ReadStateReading, ReadStateFinished, ReadStateAbandoned}

// Valid reports whether s is one of the four defined states.
func (s ReadState) Valid() bool {
	return s >= ReadStateInteresting && s <= ReadStateAbandoned
}

func (s ReadState) String() string {
	switch s {
	case ReadStateInteresting:
		return "interesting"
	case ReadStateReading:
		return "reading"
	case ReadStateFinished:
		return "finished"
	case ReadStateAbandoned:
		return "abandoned"
	default:
		return fmt.Sprintf("ReadState(%d)", int(s))
	}
}

// ParseReadState accepts a state name ("reading") or its ordinal ("2").
func ParseReadState(v string) (ReadState, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if n, err := strconv.Atoi(v); err == nil {
		s := ReadState(n)
		if !s.Valid() {
			return 0, fmt.Errorf("read state %d out of range 1-4", n)
		}
		return s, nil
	}
	for _, s := range ReadStates {
		if s.String() == v {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown read state %q", v)
}

// MarshalJSON encodes the state as its ordinal.
func (s ReadState) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid read state %d", int(s))
	}
	return []byte(strconv.Itoa(int(s))), nil
}

// UnmarshalJSON accepts only the ordinals 1-4.
func (s *ReadState) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("read state: %w", err)
	}
	v := ReadState(n)
	if !v.Valid() {
		return fmt.Errorf("invalid read state %d", n)
	}
	*s = v
	return nil
}

// ------------------------------
// Core Domain Entities
// ------------------------------

// Book represents a book in the catalogue.
type Book struct {
	ID        BookID `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	ISBN      string `json:"isbn,omitempty"`
	Permalink string `json:"permalink,omitempty"`

	// Extra holds attributes the server sent that the fields above do not
	// declare.
	Extra map[string]json.RawMessage `json:"-"`
}

// Read represents one user's reading of one book.
type Read struct {
	ID            ReadID    `json:"id"`
	BookID        BookID    `json:"book_id"`
	UserID        UserID    `json:"user_id"`
	State         ReadState `json:"state"`
	Private       bool      `json:"private"`
	ClosingRemark string    `json:"closing_remark,omitempty"`
	ApplicationID string    `json:"application_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Extra holds attributes the server sent that the fields above do not
	// declare.
	Extra map[string]json.RawMessage `json:"-"`
}

// Validate reports a read the server answered without a usable state.
func (r Read) Validate() error {
	if !r.State.Valid() {
		return fmt.Errorf("read %s: missing or invalid state %d", r.ID, int(r.State))
	}
	return nil
}

// Ping is a progress report attached to a read.
type Ping struct {
	ID         PingID    `json:"id"`
	ReadID     ReadID    `json:"read_id"`
	Progress   int       `json:"progress"`
	Identifier string    `json:"identifier"`
	Seconds    int64     `json:"duration"`
	OccurredAt time.Time `json:"occurred_at"`

	// Extra holds attributes the server sent that the fields above do not
	// declare.
	Extra map[string]json.RawMessage `json:"-"`
}

// Duration returns the reading time covered by the ping.
func (p Ping) Duration() time.Duration {
	return time.Duration(p.Seconds) * time.Second
}

// User represents a Readmill user.
type User struct {
	ID          UserID    `json:"id"`
	Username    string    `json:"username"`
	FullName    string    `json:"fullname,omitempty"`
	Description string    `json:"description,omitempty"`
	City        string    `json:"city,omitempty"`
	Country     string    `json:"country,omitempty"`
	Website     string    `json:"website,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	// Extra holds attributes the server sent that the fields above do not
	// declare.
	Extra map[string]json.RawMessage `json:"-"`
}
