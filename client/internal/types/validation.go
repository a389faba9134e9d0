package types

import "fmt"

const (
	MinProgress = 1
	MaxProgress = 100
)

// ValidateReadState rejects integers outside the four defined states.
func ValidateReadState(s ReadState) error {
	if !s.Valid() {
		return fmt.Errorf("state must be one of 1-4, got %d", int(s))
	}
	return nil
}

// ValidateProgress checks the 1-100 percent range.
func ValidateProgress(progress int) error {
	if progress < MinProgress || progress > MaxProgress {
		return fmt.Errorf("progress must be between %d and %d, got %d", MinProgress, MaxProgress, progress)
	}
	return nil
}

// ValidatePing checks everything about a ping that can be known locally.
func ValidatePing(req PingRequest) error {
	if err := ValidateProgress(req.Progress); err != nil {
		return err
	}
	if req.Duration < 0 {
		return fmt.Errorf("duration must be non-negative, got %s", req.Duration)
	}
	if req.OccurredAt.IsZero() {
		return fmt.Errorf("occurred_at is required")
	}
	return nil
}
