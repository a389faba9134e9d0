package readmilltest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/readmill/readmill-api/client/internal/types"
)

type userKey struct{}

func withUser(ctx context.Context, id types.UserID) context.Context {
	return context.WithValue(ctx, userKey{}, id)
}

func userFrom(r *http.Request) types.UserID {
	id, _ := r.Context().Value(userKey{}).(types.UserID)
	return id
}

func pathID(r *http.Request) uint64 {
	id, _ := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	return id
}

// ---- books ----

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	title := strings.ToLower(q.Get("title"))
	isbn := q.Get("isbn")
	_, byISBN := q["isbn"]

	s.mu.Lock()
	out := make([]Book, 0, len(s.books))
	for _, b := range s.books {
		switch {
		case byISBN:
			if isbn == "" || b.ISBN != isbn {
				continue
			}
		case title != "":
			if !strings.Contains(strings.ToLower(b.Title), title) {
				continue
			}
		}
		out = append(out, b)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddBook(w http.ResponseWriter, r *http.Request) {
	var req types.AddBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusUnprocessableEntity, "title is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if req.ISBN != "" {
		for _, b := range s.books {
			if b.ISBN == req.ISBN {
				writeJSON(w, http.StatusOK, b)
				return
			}
		}
	}
	b := s.addBookLocked(Book{Title: req.Title, Author: req.Author, ISBN: req.ISBN})
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) hasBookLocked(id types.BookID) bool {
	for _, b := range s.books {
		if b.ID == id {
			return true
		}
	}
	return false
}

// ---- reads ----

func (s *Server) handleCreateRead(w http.ResponseWriter, r *http.Request) {
	bookID := types.BookID(pathID(r))
	var req types.CreateReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	userID := userFrom(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasBookLocked(bookID) {
		writeNotFound(w, fmt.Sprintf("book %d not found", bookID))
		return
	}
	for _, existing := range s.sortedReadsLocked() {
		if existing.BookID != bookID || existing.UserID != userID {
			continue
		}
		if s.dupPolicy == ReturnExistingRead {
			writeJSON(w, http.StatusOK, existing)
			return
		}
		writeError(w, http.StatusConflict, fmt.Sprintf("read of book %d already exists", bookID))
		return
	}
	rd := s.addReadLocked(Read{
		BookID:        bookID,
		UserID:        userID,
		State:         req.State,
		Private:       req.Private,
		ApplicationID: req.ApplicationID,
	})
	writeJSON(w, http.StatusCreated, rd)
}

func (s *Server) handleUpdateRead(w http.ResponseWriter, r *http.Request) {
	readID := types.ReadID(pathID(r))
	var req types.UpdateReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rd, ok := s.reads[readID]
	if !ok {
		writeNotFound(w, fmt.Sprintf("read %d not found", readID))
		return
	}
	if rd.UserID != userFrom(r) {
		writeError(w, http.StatusForbidden, "read belongs to another user")
		return
	}
	rd.State = req.State
	rd.Private = req.Private
	rd.ClosingRemark = req.ClosingRemark
	if req.ApplicationID != "" {
		rd.ApplicationID = req.ApplicationID
	}
	rd.UpdatedAt = s.now()
	writeJSON(w, http.StatusOK, *rd)
}

func (s *Server) handleUserReads(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.lookupUserLocked(r)
	if !ok {
		writeNotFound(w, "user not found")
		return
	}
	out := make([]Read, 0)
	for _, rd := range s.sortedReadsLocked() {
		if rd.UserID == u.ID && !rd.Private {
			out = append(out, rd)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) sortedReadsLocked() []Read {
	out := make([]Read, 0, len(s.reads))
	for _, rd := range s.reads {
		out = append(out, *rd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ---- pings ----

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	readID := types.ReadID(pathID(r))
	var p types.PingPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if err := types.ValidateProgress(p.Progress); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	occurredAt, err := time.Parse(time.RFC3339, p.OccurredAt)
	if err != nil {
		writeBadRequest(w, "occurred_at must be RFC3339")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rd, ok := s.reads[readID]
	if !ok {
		writeNotFound(w, fmt.Sprintf("read %d not found", readID))
		return
	}
	if rd.UserID != userFrom(r) {
		writeError(w, http.StatusForbidden, "read belongs to another user")
		return
	}
	s.nextPing++
	ping := Ping{
		ID:         types.PingID(s.nextPing),
		ReadID:     readID,
		Progress:   p.Progress,
		Identifier: p.Identifier,
		Seconds:    p.Duration,
		OccurredAt: occurredAt,
	}
	s.pings[readID] = append(s.pings[readID], ping)
	writeJSON(w, http.StatusCreated, ping)
}

// ---- users ----

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.lookupUserLocked(r)
	if !ok {
		writeNotFound(w, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) lookupUserLocked(r *http.Request) (User, bool) {
	if name, ok := mux.Vars(r)["name"]; ok {
		for _, u := range s.users {
			if u.Username == name {
				return *u, true
			}
		}
		return User{}, false
	}
	u, ok := s.users[types.UserID(pathID(r))]
	if !ok {
		return User{}, false
	}
	return *u, true
}
