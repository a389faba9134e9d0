package client

import "sync/atomic"

// ActivityCounter counts requests in flight so a presentation layer can show
// a busy indicator. It is an explicit object owned by the caller; pass it to
// New with WithActivityCounter.
//
// The zero value is ready to use.
type ActivityCounter struct {
	n atomic.Int64

	// OnChange, if set, is called with the new count after every change.
	// It runs on the goroutine that issued the request and must not block.
	OnChange func(count int64)
}

// NewActivityCounter returns a counter that reports changes to onChange
// (which may be nil).
func NewActivityCounter(onChange func(count int64)) *ActivityCounter {
	return &ActivityCounter{OnChange: onChange}
}

// Push records the start of a request.
func (a *ActivityCounter) Push() {
	a.notify(a.n.Add(1))
}

// Pop records the end of a request. The count never drops below zero, so a
// Reset while requests are in flight cannot make it negative.
func (a *ActivityCounter) Pop() {
	for {
		cur := a.n.Load()
		if cur <= 0 {
			return
		}
		if a.n.CompareAndSwap(cur, cur-1) {
			a.notify(cur - 1)
			return
		}
	}
}

// Reset forces the count to zero.
func (a *ActivityCounter) Reset() {
	a.n.Store(0)
	a.notify(0)
}

// Count returns the number of requests currently in flight.
func (a *ActivityCounter) Count() int64 {
	return a.n.Load()
}

// Active reports whether any request is in flight.
func (a *ActivityCounter) Active() bool {
	return a.Count() > 0
}

func (a *ActivityCounter) notify(n int64) {
	if a.OnChange != nil {
		a.OnChange(n)
	}
}
