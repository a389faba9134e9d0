package job

import (
	"context"
	"errors"
	"fmt"
)

// ErrNilJobFunc is returned when a queued ping job has no body.
var ErrNilJobFunc = errors.New("nil JobFunc")

// jobFunc lets the ping queue pass plain closures to the shard executor.
type jobFunc func(context.Context) error

func (f jobFunc) Run(ctx context.Context) error {
	if f == nil {
		return fmt.Errorf("jobfunc: %w", ErrNilJobFunc)
	}
	return f(ctx)
}

// New wraps fn as a shardqueue job.
func New(fn func(context.Context) error) jobFunc {
	return jobFunc(fn)
}
