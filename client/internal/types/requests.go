package types

import "time"

// ------------------------------
// Request Types
// ------------------------------

// AddBookRequest holds parameters for a new book. The server may answer with
// an existing book when it deduplicates by ISBN.
type AddBookRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	ISBN   string `json:"isbn"`
}

// CreateReadRequest holds parameters for a new read. The book id travels in
// the URL.
type CreateReadRequest struct {
	State         ReadState `json:"state"`
	ApplicationID string    `json:"application_id"`
	Private       bool      `json:"private"`
}

// UpdateReadRequest fully replaces a read's state, privacy and closing
// remark. There is no book id: a read never moves to another book.
type UpdateReadRequest struct {
	State         ReadState `json:"state"`
	ApplicationID string    `json:"application_id"`
	Private       bool      `json:"private"`
	ClosingRemark string    `json:"closing_remark"`
}

// PingRequest reports reading progress on a read.
type PingRequest struct {
	// Progress is percent complete, 1-100 inclusive.
	Progress int
	// Identifier groups pings of one reading session.
	Identifier string
	// Duration is the time spent since the previous ping or session start.
	// Sent as whole seconds.
	Duration time.Duration
	// OccurredAt is when the reading happened (not when it is reported).
	OccurredAt time.Time
}

// PingPayload is the wire form of PingRequest.
type PingPayload struct {
	Progress   int    `json:"progress"`
	Identifier string `json:"identifier"`
	Duration   int64  `json:"duration"`
	OccurredAt string `json:"occurred_at"`
}

// Payload converts the request to its wire form. The timestamp keeps the
// caller's UTC offset so the server never has to guess the day.
func (r PingRequest) Payload() PingPayload {
	return PingPayload{
		Progress:   r.Progress,
		Identifier: r.Identifier,
		Duration:   int64(r.Duration / time.Second),
		OccurredAt: r.OccurredAt.Format(time.RFC3339),
	}
}
