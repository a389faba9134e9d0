package types

import (
	"encoding/json"
	"testing"
	"time"
)

func TestReadState_JSONOrdinals(t *testing.T) {
	t.Parallel()
	for i, s := range ReadStates {
		b, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("marshal %s: %v", s, err)
		}
		if string(b) != string(rune('1'+i)) {
			t.Fatalf("%s encoded as %s", s, b)
		}
		var back ReadState
		if err := json.Unmarshal(b, &back); err != nil || back != s {
			t.Fatalf("decode %s: got %v err %v", b, back, err)
		}
	}
}

func TestReadState_RejectsOutOfRange(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"0", "5", "-1", `"2"`} {
		var s ReadState
		if err := json.Unmarshal([]byte(raw), &s); err == nil {
			t.Fatalf("expected error decoding %s", raw)
		}
	}
	if _, err := json.Marshal(ReadState(9)); err == nil {
		t.Fatal("expected error encoding invalid state")
	}
}

func TestParseReadState(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want ReadState
		ok   bool
	}{
		{"reading", ReadStateReading, true},
		{" Finished ", ReadStateFinished, true},
		{"4", ReadStateAbandoned, true},
		{"1", ReadStateInteresting, true},
		{"0", 0, false},
		{"done", 0, false},
	}
	for _, c := range cases {
		got, err := ParseReadState(c.in)
		if c.ok && (err != nil || got != c.want) {
			t.Fatalf("ParseReadState(%q) = %v, %v", c.in, got, err)
		}
		if !c.ok && err == nil {
			t.Fatalf("expected error for %q", c.in)
		}
	}
}

func TestValidateProgress(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in int
		ok bool
	}{
		{1, true}, {50, true}, {100, true}, {0, false}, {101, false}, {-3, false},
	}
	for _, c := range cases {
		err := ValidateProgress(c.in)
		if c.ok && err != nil {
			t.Fatalf("expected ok for %d, got %v", c.in, err)
		}
		if !c.ok && err == nil {
			t.Fatalf("expected error for %d", c.in)
		}
	}
}

func TestValidatePing(t *testing.T) {
	t.Parallel()
	now := time.Now()
	if err := ValidatePing(PingRequest{Progress: 10, OccurredAt: now}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidatePing(PingRequest{Progress: 10, Duration: -time.Second, OccurredAt: now}); err == nil {
		t.Fatal("expected negative duration error")
	}
	if err := ValidatePing(PingRequest{Progress: 10}); err == nil {
		t.Fatal("expected missing occurred_at error")
	}
}

func TestPingPayload_KeepsOffset(t *testing.T) {
	t.Parallel()
	zone := time.FixedZone("CET", 3600)
	req := PingRequest{
		Progress:   42,
		Identifier: "s1",
		Duration:   90*time.Second + 400*time.Millisecond,
		OccurredAt: time.Date(2011, 1, 10, 23, 30, 0, 0, zone),
	}
	p := req.Payload()
	if p.OccurredAt != "2011-01-10T23:30:00+01:00" {
		t.Fatalf("occurred_at = %s", p.OccurredAt)
	}
	if p.Duration != 90 {
		t.Fatalf("duration = %d", p.Duration)
	}
}

func TestIDStrings(t *testing.T) {
	t.Parallel()
	if BookID(7).String() != "7" || ReadID(8).String() != "8" || UserID(9).String() != "9" {
		t.Fatal("unexpected id formatting")
	}
}

func TestRecords_KeepUndeclaredFields(t *testing.T) {
	t.Parallel()
	var b Book
	if err := json.Unmarshal([]byte(`{"id":1,"title":"x","Author":"a","cover_url":"u","stats":{"reads":3}}`), &b); err != nil {
		t.Fatalf("decode book: %v", err)
	}
	if b.ID != 1 || b.Title != "x" || b.Author != "a" {
		t.Fatalf("typed fields lost: %+v", b)
	}
	if len(b.Extra) != 2 || string(b.Extra["cover_url"]) != `"u"` || string(b.Extra["stats"]) != `{"reads":3}` {
		t.Fatalf("unexpected extra %v", b.Extra)
	}

	out, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("encode book: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatalf("decode encoded: %v", err)
	}
	if m["cover_url"] != "u" || m["title"] != "x" {
		t.Fatalf("extra not re-encoded: %s", out)
	}

	var r Read
	if err := json.Unmarshal([]byte(`{"id":2,"state":2,"highlights_count":5}`), &r); err != nil {
		t.Fatalf("decode read: %v", err)
	}
	if r.State != ReadStateReading || string(r.Extra["highlights_count"]) != "5" {
		t.Fatalf("unexpected read %+v", r)
	}

	var u User
	if err := json.Unmarshal([]byte(`{"id":3,"username":"jane","avatar_url":"a.png"}`), &u); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if string(u.Extra["avatar_url"]) != `"a.png"` {
		t.Fatalf("unexpected user extra %v", u.Extra)
	}

	var p Ping
	if err := json.Unmarshal([]byte(`{"id":4,"read_id":2,"progress":10,"lat":1.5}`), &p); err != nil {
		t.Fatalf("decode ping: %v", err)
	}
	if string(p.Extra["lat"]) != "1.5" {
		t.Fatalf("unexpected ping extra %v", p.Extra)
	}
}

func TestRecords_NoExtraWhenAllDeclared(t *testing.T) {
	t.Parallel()
	var b Book
	if err := json.Unmarshal([]byte(`{"id":1,"title":"x","author":"a","isbn":"1"}`), &b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b.Extra != nil {
		t.Fatalf("expected nil extra, got %v", b.Extra)
	}
	var books []Book
	if err := json.Unmarshal([]byte(`[null,{"id":2}]`), &books); err != nil || len(books) != 2 || books[1].ID != 2 {
		t.Fatalf("decode list: %+v %v", books, err)
	}
}

func TestRead_Validate(t *testing.T) {
	t.Parallel()
	if err := (Read{ID: 1}).Validate(); err == nil {
		t.Fatal("read without state should not validate")
	}
	if err := (Read{ID: 1, State: ReadStateFinished}).Validate(); err != nil {
		t.Fatalf("valid read: %v", err)
	}
}
