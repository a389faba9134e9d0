package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pingsEnqueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "readmill_client",
			Name:      "pings_enqueued_total",
			Help:      "Pings accepted into the ping queue.",
		},
		[]string{"shard"},
	)

	pingsFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "readmill_client",
			Name:      "pings_failed_total",
			Help:      "Queued pings dropped after a permanent error or exhausted retries.",
		},
		[]string{"shard"},
	)
)
