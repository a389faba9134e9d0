package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"testing"

	"github.com/readmill/readmill-api/client"
	"github.com/readmill/readmill-api/client/readmilltest"
)

func execute(t *testing.T, srv *readmilltest.Server, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--service-url", srv.URL}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestCLI_BookReadPingFlow(t *testing.T) {
	srv := readmilltest.New()
	defer srv.Close()

	out, err := execute(t, srv, "add-book", "--title", "Dune", "--author", "Frank Herbert", "--isbn", "9780441013593")
	if err != nil {
		t.Fatalf("add-book failed: %v", err)
	}
	var book client.Book
	if err := json.Unmarshal([]byte(out), &book); err != nil {
		t.Fatalf("decode book: %v (%s)", err, out)
	}

	out, err = execute(t, srv, "search-books", "--isbn", "9780441013593")
	if err != nil {
		t.Fatalf("search-books failed: %v", err)
	}
	var found []client.Book
	if err := json.Unmarshal([]byte(out), &found); err != nil || len(found) != 1 {
		t.Fatalf("unexpected search output: %s", out)
	}

	out, err = execute(t, srv, "create-read", "--book-id", book.ID.String(), "--state", "interesting")
	if err != nil {
		t.Fatalf("create-read failed: %v", err)
	}
	var rd client.Read
	if err := json.Unmarshal([]byte(out), &rd); err != nil {
		t.Fatalf("decode read: %v", err)
	}
	if rd.State != client.ReadStateInteresting {
		t.Fatalf("state = %v", rd.State)
	}

	out, err = execute(t, srv, "update-read", "--read-id", rd.ID.String(), "--state", "finished", "--closing-remark", "Spice.")
	if err != nil {
		t.Fatalf("update-read failed: %v", err)
	}
	if err := json.Unmarshal([]byte(out), &rd); err != nil || rd.State != client.ReadStateFinished || rd.ClosingRemark != "Spice." {
		t.Fatalf("unexpected update output: %s", out)
	}

	if _, err := execute(t, srv, "ping", "--read-id", rd.ID.String(), "--progress", "100", "--duration", "2m"); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
	pings := srv.Pings(rd.ID)
	if len(pings) != 1 || pings[0].Identifier == "" || pings[0].Seconds != 120 {
		t.Fatalf("unexpected pings: %+v", pings)
	}

	me := srv.DevUser()
	out, err = execute(t, srv, "reads", "--username", me.Username)
	if err != nil {
		t.Fatalf("reads failed: %v", err)
	}
	var reads []client.Read
	if err := json.Unmarshal([]byte(out), &reads); err != nil || len(reads) != 1 {
		t.Fatalf("unexpected reads output: %s", out)
	}

	out, err = execute(t, srv, "user", "--id", strconv.FormatUint(uint64(me.ID), 10))
	if err != nil {
		t.Fatalf("user failed: %v", err)
	}
	var u client.User
	if err := json.Unmarshal([]byte(out), &u); err != nil || u.Username != me.Username {
		t.Fatalf("unexpected user output: %s", out)
	}
}

func TestCLI_InvalidStateRejectedLocally(t *testing.T) {
	srv := readmilltest.New()
	defer srv.Close()

	if _, err := execute(t, srv, "create-read", "--book-id", "1", "--state", "skimming"); err == nil {
		t.Fatal("expected error for unknown state")
	}
	if srv.Requests() != 0 {
		t.Fatalf("expected no requests, got %d", srv.Requests())
	}
}

func TestCLI_RetriesRetryableFailures(t *testing.T) {
	srv := readmilltest.New()
	defer srv.Close()

	srv.FailNext(2, http.StatusServiceUnavailable)
	if _, err := execute(t, srv, "--retries", "3", "books"); err != nil {
		t.Fatalf("books with retries failed: %v", err)
	}
	if got := srv.Requests(); got != 3 {
		t.Fatalf("expected 3 requests, got %d", got)
	}
}

func TestCLI_DoesNotRetryNotFound(t *testing.T) {
	srv := readmilltest.New()
	defer srv.Close()

	_, err := execute(t, srv, "--retries", "3", "user", "--username", "ghost")
	if !errors.Is(err, client.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got := srv.Requests(); got != 1 {
		t.Fatalf("404 must not be retried, got %d requests", got)
	}
}

func TestCLI_WrongCredentials(t *testing.T) {
	srv := readmilltest.New()
	defer srv.Close()

	_, err := execute(t, srv, "--token", "nope", "--secret", "nope", "books")
	var apiErr *client.Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 rejection, got %v", err)
	}
}
