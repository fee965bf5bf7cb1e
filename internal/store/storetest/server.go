// Package storetest provides an in-memory contact collection served over
// HTTP, for tests of the store client, the controller and the dashboard.
package storetest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/smileynet/contacts/internal/contacts"
)

// Request is one request received by the Server.
type Request struct {
	Method string
	Path   string
	Body   []byte
}

// Server is an in-memory contact collection. New records get UUID string
// ids. It is safe for concurrent use.
type Server struct {
	srv *httptest.Server

	mu       sync.Mutex
	contacts []contacts.Contact
	requests []Request
	failures map[string][]int
}

// NewServer starts a Server seeded with the given contacts and registers
// its shutdown with t.Cleanup.
func NewServer(t testing.TB, seed ...contacts.Contact) *Server {
	t.Helper()
	s := &Server{
		contacts: slices.Clone(seed),
		failures: make(map[string][]int),
	}

	r := mux.NewRouter()
	r.Use(s.record)
	r.HandleFunc("/", s.list).Methods(http.MethodGet)
	r.HandleFunc("/", s.create).Methods(http.MethodPost)
	r.HandleFunc("/{id}", s.update).Methods(http.MethodPut)
	r.HandleFunc("/{id}", s.remove).Methods(http.MethodDelete)

	s.srv = httptest.NewServer(r)
	t.Cleanup(s.srv.Close)
	return s
}

// URL returns the collection base URL, with a trailing slash.
func (s *Server) URL() string {
	return s.srv.URL + "/"
}

// Contacts returns a copy of the stored collection.
func (s *Server) Contacts() []contacts.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.contacts)
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

// Count returns how many requests used method.
func (s *Server) Count(method string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method {
			n++
		}
	}
	return n
}

// Last returns the most recent request that used method.
func (s *Server) Last(method string) (Request, bool) {
	reqs := s.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Method == method {
			return reqs[i], true
		}
	}
	return Request{}, false
}

// FailNext makes the next request with method answer with status instead of
// being handled. Calls queue up.
func (s *Server) FailNext(method string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = append(s.failures[method], status)
}

// record logs the request and applies any queued failure.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Body: body})
		var status int
		if queued := s.failures[r.Method]; len(queued) > 0 {
			status = queued[0]
			s.failures[r.Method] = queued[1:]
		}
		s.mu.Unlock()

		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) list(w http.ResponseWriter, _ *http.Request) {
	list := s.Contacts()
	if list == nil {
		list = []contacts.Contact{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var c contacts.Contact
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c.ID = contacts.StringID(uuid.NewString())

	s.mu.Lock()
	s.contacts = append(s.contacts, c)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var c contacts.Contact
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		http.Error(w, "contact not found", http.StatusNotFound)
		return
	}
	c.ID = s.contacts[i].ID
	s.contacts[i] = c
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		http.Error(w, "contact not found", http.StatusNotFound)
		return
	}
	s.contacts = slices.Delete(s.contacts, i, i+1)
	w.WriteHeader(http.StatusNoContent)
}

// index must be called with mu held.
func (s *Server) index(id string) int {
	return slices.IndexFunc(s.contacts, func(c contacts.Contact) bool { return c.ID.String() == id })
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
