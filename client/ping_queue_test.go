package client_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readmill/readmill-api/client"
	"github.com/readmill/readmill-api/client/readmilltest"
)

func fastQueueConfig() client.PingQueueConfig {
	return client.PingQueueConfig{
		Shards:      2,
		QueueSize:   32,
		MaxAttempts: 4,
		BaseBackoff: time.Millisecond,
		MaxInterval: 5 * time.Millisecond,
	}
}

func startRead(t *testing.T, c *client.Client, srv *readmilltest.Server) client.ReadID {
	t.Helper()
	book := srv.AddBook(client.Book{Title: "Emma"})
	rd, err := c.CreateRead(context.Background(), book.ID, client.CreateReadRequest{State: client.ReadStateReading})
	require.NoError(t, err)
	return rd.ID
}

func TestPingQueue_FIFOPerRead(t *testing.T) {
	ctx := context.Background()
	c, srv := newTestClient(t)
	readID := startRead(t, c, srv)

	q := client.NewPingQueue(c, fastQueueConfig())
	defer func() { _ = q.Close() }()

	for p := 1; p <= 10; p++ {
		require.NoError(t, q.Enqueue(ctx, readID, client.PingRequest{
			Progress:   p * 10,
			Identifier: "s",
			OccurredAt: time.Now(),
		}))
	}
	require.NoError(t, q.Flush(ctx, readID))

	pings := srv.Pings(readID)
	require.Len(t, pings, 10)
	for i, p := range pings {
		assert.Equal(t, (i+1)*10, p.Progress)
	}
}

func TestPingQueue_InvalidPingNeverQueued(t *testing.T) {
	c, srv := newTestClient(t)
	q := client.NewPingQueue(c, fastQueueConfig())
	defer func() { _ = q.Close() }()

	before := srv.Requests()
	err := q.Enqueue(context.Background(), client.ReadID(1), client.PingRequest{Progress: 0, OccurredAt: time.Now()})
	assert.True(t, errors.Is(err, client.ErrValidation))
	require.NoError(t, q.Flush(context.Background(), client.ReadID(1)))
	assert.Equal(t, before, srv.Requests())
}

func TestPingQueue_MissingCredentials(t *testing.T) {
	c, err := client.New("http://127.0.0.1:1", client.Credentials{})
	require.NoError(t, err)
	q := client.NewPingQueue(c, fastQueueConfig())
	defer func() { _ = q.Close() }()

	err = q.Enqueue(context.Background(), client.ReadID(1), client.PingRequest{Progress: 5, OccurredAt: time.Now()})
	assert.True(t, errors.Is(err, client.ErrAuthentication))
}

func TestPingQueue_RetriesServerErrors(t *testing.T) {
	ctx := context.Background()
	c, srv := newTestClient(t)
	readID := startRead(t, c, srv)

	q := client.NewPingQueue(c, fastQueueConfig())
	defer func() { _ = q.Close() }()

	srv.FailNext(2, http.StatusServiceUnavailable)
	require.NoError(t, q.Enqueue(ctx, readID, client.PingRequest{Progress: 50, OccurredAt: time.Now()}))
	require.NoError(t, q.Flush(ctx, readID))

	pings := srv.Pings(readID)
	require.Len(t, pings, 1)
	assert.Equal(t, 50, pings[0].Progress)
}

func TestPingQueue_PermanentFailureReported(t *testing.T) {
	ctx := context.Background()
	c, srv := newTestClient(t)

	q := client.NewPingQueue(c, fastQueueConfig())
	defer func() { _ = q.Close() }()

	var (
		mu      sync.Mutex
		dropped []client.ReadID
		errs    []error
	)
	q.OnError = func(readID client.ReadID, err error) {
		mu.Lock()
		dropped = append(dropped, readID)
		errs = append(errs, err)
		mu.Unlock()
	}

	missing := client.ReadID(777)
	before := srv.Requests()
	require.NoError(t, q.Enqueue(ctx, missing, client.PingRequest{Progress: 10, OccurredAt: time.Now()}))
	require.NoError(t, q.Flush(ctx, missing))

	assert.Equal(t, before+1, srv.Requests(), "a 404 must not be retried")
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, dropped, 1)
	assert.Equal(t, missing, dropped[0])
	assert.True(t, errors.Is(errs[0], client.ErrNotFound))
}

func TestPingQueue_CloseDrainsAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	c, srv := newTestClient(t)
	readID := startRead(t, c, srv)

	q := client.NewPingQueue(c, fastQueueConfig())
	for p := 1; p <= 3; p++ {
		require.NoError(t, q.Enqueue(ctx, readID, client.PingRequest{Progress: p, OccurredAt: time.Now()}))
	}
	require.NoError(t, q.Close())
	require.NoError(t, q.Close())

	assert.Len(t, srv.Pings(readID), 3)
	err := q.Enqueue(ctx, readID, client.PingRequest{Progress: 4, OccurredAt: time.Now()})
	assert.Error(t, err)
}

func TestLoadPingQueueConfig(t *testing.T) {
	t.Setenv("READMILL_PINGQ_SHARDS", "6")
	cfg, err := client.LoadPingQueueConfig()
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Shards)
}
