package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	sdkerrors "github.com/readmill/readmill-api/client/internal/errors"
	"github.com/readmill/readmill-api/client/internal/types"
)

func TestPingRead_WireFormat(t *testing.T) {
	t.Parallel()
	ep := stubServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/reads/5/pings" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var p types.PingPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("decode: %v", err)
		}
		if p.Progress != 33 || p.Identifier != "sess-1" || p.Duration != 120 || p.OccurredAt != "2011-01-10T08:00:00-05:00" {
			t.Errorf("unexpected payload %+v", p)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1,"read_id":5,"progress":33,"identifier":"sess-1","duration":120,"occurred_at":"2011-01-10T08:00:00-05:00"}`))
	})
	at := time.Date(2011, 1, 10, 8, 0, 0, 0, time.FixedZone("EST", -5*3600))
	ping, err := PingRead(context.Background(), ep, 5, types.PingRequest{
		Progress: 33, Identifier: "sess-1", Duration: 2 * time.Minute, OccurredAt: at,
	})
	if err != nil {
		t.Fatalf("PingRead error: %v", err)
	}
	if ping.Identifier != "sess-1" || ping.Duration() != 2*time.Minute || !ping.OccurredAt.Equal(at) {
		t.Fatalf("unexpected ping %+v", ping)
	}
}

func TestPingRead_OutOfRangeProgressNeverSent(t *testing.T) {
	t.Parallel()
	act := &countingActivity{}
	ep := stubServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("request should not be sent")
	})
	ep.Activity = act
	for _, p := range []int{0, 101, -1} {
		_, err := PingRead(context.Background(), ep, 5, types.PingRequest{Progress: p, OccurredAt: time.Now()})
		if !errors.Is(err, sdkerrors.ErrValidation) {
			t.Fatalf("progress %d: expected validation error, got %v", p, err)
		}
	}
	if act.pushes.Load() != 0 {
		t.Fatalf("activity pushed for rejected pings")
	}
}

func TestPingRead_HTTPDoError(t *testing.T) {
	t.Parallel()
	_, err := PingRead(context.Background(), failingEndpoint(), 5, types.PingRequest{Progress: 10, OccurredAt: time.Now()})
	if !errors.Is(err, sdkerrors.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestPingRead_AcknowledgementIsSuccess(t *testing.T) {
	t.Parallel()
	at := time.Date(2011, 1, 10, 8, 0, 0, 0, time.FixedZone("EST", -5*3600))
	req := types.PingRequest{Progress: 40, Identifier: "sess-2", Duration: 90 * time.Second, OccurredAt: at}
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"no content", http.StatusNoContent, ""},
		{"created without body", http.StatusCreated, ""},
		{"accepted with status object", http.StatusAccepted, `{"status":"ok"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ep := stubServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			ping, err := PingRead(context.Background(), ep, 9, req)
			if err != nil {
				t.Fatalf("PingRead error: %v", err)
			}
			if ping.ID != 0 || ping.ReadID != 9 || ping.Progress != 40 || ping.Identifier != "sess-2" || ping.Seconds != 90 {
				t.Fatalf("unexpected ping %+v", ping)
			}
			if !ping.OccurredAt.Equal(at) {
				t.Fatalf("occurred at = %s", ping.OccurredAt)
			}
		})
	}
}

func TestPingRead_NonSuccessStillRejected(t *testing.T) {
	t.Parallel()
	ep := stubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	_, err := PingRead(context.Background(), ep, 9, types.PingRequest{Progress: 40, OccurredAt: time.Now()})
	if !errors.Is(err, sdkerrors.ErrServerRejected) {
		t.Fatalf("expected server rejection, got %v", err)
	}
}
