package api

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	sdkerrors "github.com/readmill/readmill-api/client/internal/errors"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "readmill_client",
			Name:      "requests_total",
			Help:      "Dispatched API requests by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "readmill_client",
			Name:      "request_duration_seconds",
			Help:      "Round-trip latency of dispatched API requests.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	requestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "readmill_client",
			Name:      "requests_in_flight",
			Help:      "API requests currently awaiting a response.",
		},
	)
)

func observe(op string, start time.Time, err error) {
	label := strings.ReplaceAll(op, " ", "_")
	requestDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues(label, outcome(err)).Inc()
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if k := sdkerrors.KindOf(err); k != 0 {
		return strings.ToLower(k.String())
	}
	return "error"
}
