package client

import (
	"context"

	"github.com/readmill/readmill-api/client/internal/shardqueue"
)

// executor abstracts the sharded job runner behind PingQueue.
type executor interface {
	Submit(context.Context, string, shardqueue.Job) error
	Barrier(context.Context, string) error
	Stop()
}
