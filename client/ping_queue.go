package client

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/readmill/readmill-api/client/internal/api"
	sdkerrors "github.com/readmill/readmill-api/client/internal/errors"
	"github.com/readmill/readmill-api/client/internal/job"
	"github.com/readmill/readmill-api/client/internal/shardqueue"
	"github.com/readmill/readmill-api/client/internal/types"
)

// PingQueueConfig tunes a PingQueue. The zero value uses the defaults.
type PingQueueConfig = shardqueue.Config

// LoadPingQueueConfig reads READMILL_PINGQ_* environment variables.
func LoadPingQueueConfig() (PingQueueConfig, error) { return shardqueue.LoadConfig() }

// PingQueue delivers pings in the background. Pings for one read are sent in
// the order they were enqueued; pings for different reads may interleave.
// Retryable failures are retried with exponential backoff, anything else is
// logged and passed to OnError.
//
// Enqueue must not be called concurrently for the same read.
type PingQueue struct {
	c    *Client
	exec executor

	// OnError, if set, receives every ping that was finally dropped. readID
	// is zero when the ping's context was cancelled before it ran.
	OnError func(readID ReadID, err error)

	closeOnce sync.Once
}

// failedPing carries the read id through the executor's error handler.
type failedPing struct {
	readID ReadID
	err    error
}

func (f *failedPing) Error() string { return f.err.Error() }
func (f *failedPing) Unwrap() error { return f.err }

// NewPingQueue starts a queue that sends pings through c.
func NewPingQueue(c *Client, cfg PingQueueConfig) *PingQueue {
	q := &PingQueue{c: c}
	cfg.Permanent = permanentPingError
	cfg.ErrorHandler = q.handleError
	q.exec = shardqueue.NewShardExecutor(cfg)
	return q
}

// permanentPingError reports client errors that another attempt cannot fix.
// Errors from outside the client (context expiry inside a job) are retried
// until attempts run out.
func permanentPingError(err error) bool {
	return sdkerrors.KindOf(err) != 0 && !sdkerrors.IsRetryable(err)
}

func (q *PingQueue) handleError(err error) {
	var readID ReadID
	if fp, ok := err.(*failedPing); ok {
		readID, err = fp.readID, fp.err
	}
	pingsFailedTotal.WithLabelValues(job.ShardLabel(readID.String())).Inc()
	log.Error().Err(err).Stringer("read_id", readID).Msg("ping dropped")
	if q.OnError != nil {
		q.OnError(readID, err)
	}
}

// Enqueue validates req and schedules it for delivery. A Validation or
// Authentication error is returned immediately and nothing is queued.
func (q *PingQueue) Enqueue(ctx context.Context, readID ReadID, req PingRequest) error {
	const op = "enqueue ping"
	if err := ctx.Err(); err != nil {
		return sdkerrors.NewTransportError(op, err)
	}
	if err := types.ValidatePing(req); err != nil {
		return sdkerrors.NewValidationError(op, err.Error())
	}
	if _, err := q.c.endpoint(op); err != nil {
		return err
	}

	key := readID.String()
	pingJob := job.New(func(jobCtx context.Context) error {
		ep, err := q.c.endpoint("ping read")
		if err != nil {
			return &failedPing{readID: readID, err: err}
		}
		if _, err := api.PingRead(jobCtx, ep, readID, req); err != nil {
			return &failedPing{readID: readID, err: err}
		}
		return nil
	})
	if err := q.exec.Submit(ctx, key, pingJob); err != nil {
		return err
	}
	pingsEnqueuedTotal.WithLabelValues(job.ShardLabel(key)).Inc()
	return nil
}

// Flush blocks until every ping enqueued for readID before the call has been
// delivered or dropped.
func (q *PingQueue) Flush(ctx context.Context, readID ReadID) error {
	return q.exec.Barrier(ctx, readID.String())
}

// Close delivers what is still queued (one attempt each) and stops the
// workers. Safe to call multiple times.
func (q *PingQueue) Close() error {
	q.closeOnce.Do(q.exec.Stop)
	return nil
}
