// Package apitest runs an in-process todos backend that follows the REST
// contract the client consumes. Tests seed it, inject failures and inspect
// the requests it received.
package apitest

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"

	"github.com/idilsaglam/todoclient/internal/model"
)

var codec = sonic.ConfigStd

// Request is one request as the backend saw it.
type Request struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   string
}

type failure struct {
	status int
	body   string
}

// Backend is an in-memory todos collection behind an httptest server.
type Backend struct {
	server *httptest.Server

	mu       sync.Mutex
	todos    []model.Todo
	nextID   int
	requests []Request
	failures map[string]failure
	delay    time.Duration
	now      func() time.Time
}

// New starts a backend seeded with todos and closes it when t ends.
func New(t testing.TB, seed ...model.Todo) *Backend {
	t.Helper()
	b := &Backend{
		todos:    append([]model.Todo(nil), seed...),
		nextID:   len(seed) + 1,
		failures: map[string]failure{},
		now:      time.Now,
	}
	b.server = httptest.NewServer(b.routes())
	t.Cleanup(b.server.Close)
	return b
}

// URL is the server root to give the client.
func (b *Backend) URL() string { return b.server.URL }

// Fail makes every request matching method and path answer with status and
// body instead of being served.
func (b *Backend) Fail(method, path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = failure{status: status, body: body}
}

// SetDelay holds every response for d, or until the client gives up.
func (b *Backend) SetDelay(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.delay = d
}

// SetNow fixes the clock used by the upcoming endpoint.
func (b *Backend) SetNow(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
}

// Requests returns a copy of everything received so far.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// Todos returns a copy of the stored collection.
func (b *Backend) Todos() []model.Todo {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Todo(nil), b.todos...)
}

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(b.record, b.inject)
	r.Route("/todos", func(r chi.Router) {
		r.Get("/", b.list)
		r.Post("/", b.create)
		r.Get("/upcoming", b.upcoming)
		r.Patch("/{id}", b.update)
		r.Delete("/{id}", b.remove)
	})
	return r
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   string(body),
		})
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		delay := b.delay
		f, failing := b.failures[r.Method+" "+r.URL.Path]
		b.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if failing {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			io.WriteString(w, f.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	b.mu.Lock()
	out := filter(b.todos, q.Get("status"), q.Get("priority"), q.Get("search"))
	b.mu.Unlock()
	if len(out) == 0 {
		writeError(w, http.StatusNotFound, "No todos found")
		return
	}
	sortTodos(out, model.SortKey(q.Get("sortBy")))
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) upcoming(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	today := model.DateOf(b.now())
	var out []model.Todo
	for _, t := range b.todos {
		if !t.Completed() && !t.DueDate.IsZero() && !t.DueDate.Before(today) {
			out = append(out, t)
		}
	}
	b.mu.Unlock()
	if len(out) == 0 {
		writeError(w, http.StatusNotFound, "No upcoming todos")
		return
	}
	sortTodos(out, model.SortDueDate)
	writeJSON(w, http.StatusOK, out)
}

type writeBody struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Status      *model.Status   `json:"status"`
	Priority    *model.Priority `json:"priority"`
	DueDate     *model.Date     `json:"dueDate"`
}

func (b *Backend) create(w http.ResponseWriter, r *http.Request) {
	var in writeBody
	if err := codec.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}
	b.mu.Lock()
	t := model.Todo{
		ID:       fmt.Sprintf("%024x", b.nextID),
		Status:   model.StatusPending,
		Priority: model.PriorityMedium,
	}
	b.nextID++
	apply(&t, in)
	b.todos = append(b.todos, t)
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, t)
}

func (b *Backend) update(w http.ResponseWriter, r *http.Request) {
	var in writeBody
	if err := codec.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	b.mu.Lock()
	i := model.Index(b.todos, chi.URLParam(r, "id"))
	if i < 0 {
		b.mu.Unlock()
		writeError(w, http.StatusNotFound, "Todo not found")
		return
	}
	apply(&b.todos[i], in)
	t := b.todos[i]
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, t)
}

func (b *Backend) remove(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	i := model.Index(b.todos, chi.URLParam(r, "id"))
	if i < 0 {
		b.mu.Unlock()
		writeError(w, http.StatusNotFound, "Todo not found")
		return
	}
	b.todos = append(b.todos[:i], b.todos[i+1:]...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Todo deleted successfully"})
}

func apply(t *model.Todo, in writeBody) {
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Status != nil && *in.Status != "" {
		t.Status = *in.Status
	}
	if in.Priority != nil && *in.Priority != "" {
		t.Priority = *in.Priority
	}
	if in.DueDate != nil {
		t.DueDate = *in.DueDate
	}
}

func filter(todos []model.Todo, status, priority, search string) []model.Todo {
	search = strings.ToLower(search)
	var out []model.Todo
	for _, t := range todos {
		switch model.StatusFilter(status) {
		case model.FilterPending, model.FilterCompleted:
			if string(t.Status) != status {
				continue
			}
		case model.FilterHighPriority:
			if t.Priority != model.PriorityHigh {
				continue
			}
		}
		if priority != "" && string(t.Priority) != priority {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		out = append(out, t)
	}
	return out
}

var priorityRank = map[model.Priority]int{model.PriorityHigh: 0, model.PriorityMedium: 1, model.PriorityLow: 2}

func sortTodos(todos []model.Todo, key model.SortKey) {
	switch key {
	case model.SortTitle:
		sort.SliceStable(todos, func(i, j int) bool { return todos[i].Title < todos[j].Title })
	case model.SortPriority:
		sort.SliceStable(todos, func(i, j int) bool {
			return priorityRank[todos[i].Priority] < priorityRank[todos[j].Priority]
		})
	case model.SortDueDate:
		sort.SliceStable(todos, func(i, j int) bool {
			a, b := todos[i].DueDate, todos[j].DueDate
			if a.IsZero() || b.IsZero() {
				return !a.IsZero() && b.IsZero()
			}
			return a.Before(b)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	codec.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
