package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todoclient/internal/api"
	"github.com/idilsaglam/todoclient/internal/api/apitest"
	"github.com/idilsaglam/todoclient/internal/auth"
	"github.com/idilsaglam/todoclient/internal/model"
	"github.com/idilsaglam/todoclient/internal/view"
)

var fixedNow = time.Date(2026, 10, 15, 9, 0, 0, 0, time.Local)

type harness struct {
	backend *apitest.Backend
	ctrl    *view.Controller
	stdout  bytes.Buffer
	stderr  bytes.Buffer
	stdin   string
	tui     int
}

func newHarness(t *testing.T, todos ...model.Todo) *harness {
	t.Helper()
	h := &harness{backend: apitest.New(t, todos...)}
	h.backend.SetNow(func() time.Time { return fixedNow })
	c, err := api.New(api.Options{BaseURL: h.backend.URL(), Timeout: time.Second})
	require.NoError(t, err)
	h.ctrl = view.New(c, nil)
	return h
}

func (h *harness) run(args ...string) int {
	h.stdout.Reset()
	h.stderr.Reset()
	return Run(context.Background(), h.ctrl, args, Options{
		Stdin:  strings.NewReader(h.stdin),
		Stdout: &h.stdout,
		Stderr: &h.stderr,
		Now:    func() time.Time { return fixedNow },
		Interactive: func(*view.Controller) error {
			h.tui++
			return nil
		},
	})
}

func (h *harness) lastRequest() apitest.Request {
	reqs := h.backend.Requests()
	return reqs[len(reqs)-1]
}

func sample() []model.Todo {
	return []model.Todo{
		{ID: "a", Title: "Buy milk", Status: model.StatusPending, Priority: model.PriorityHigh,
			DueDate: model.Date{Year: 2026, Month: 10, Day: 16}},
		{ID: "b", Title: "Write report", Description: "quarterly", Status: model.StatusCompleted, Priority: model.PriorityLow},
	}
}

func TestHelpAndUnknown(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 2, h.run())
	assert.Contains(t, h.stdout.String(), "Usage:")

	assert.Equal(t, 0, h.run("help"))
	assert.Equal(t, 2, h.run("frobnicate"))
	assert.Contains(t, h.stderr.String(), "unknown subcommand: frobnicate")
}

func TestList(t *testing.T) {
	h := newHarness(t, sample()...)
	require.Equal(t, 0, h.run("ls"))

	out := h.stdout.String()
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "Write report")
	assert.Contains(t, out, "quarterly")
	assert.Contains(t, out, "(a)")
	assert.Contains(t, out, "due in the next 3 days")
	assert.Contains(t, out, "Filter: All Tasks")
	assert.Equal(t, "sortBy=dateCreated", h.lastRequest().Query)
}

func TestListForwardsSelections(t *testing.T) {
	h := newHarness(t, sample()...)
	require.Equal(t, 0, h.run("ls", "-status", "pending", "-priority", "high", "-search", "milk", "-sort", "dueDate"))

	q := h.lastRequest().Query
	assert.Contains(t, q, "status=pending")
	assert.Contains(t, q, "priority=high")
	assert.Contains(t, q, "search=milk")
	assert.Contains(t, q, "sortBy=dueDate")
	assert.Contains(t, h.stdout.String(), "Buy milk")
	assert.NotContains(t, h.stdout.String(), "Write report")
}

func TestListGroupedAndEmpty(t *testing.T) {
	h := newHarness(t, sample()...)
	require.Equal(t, 0, h.run("ls", "-group"))
	out := h.stdout.String()
	assert.Less(t, strings.Index(out, "Pending"), strings.Index(out, "Buy milk"))
	assert.Less(t, strings.Index(out, "Done"), strings.Index(out, "Write report"))

	require.Equal(t, 0, h.run("ls", "-status", "highPriority", "-search", "nothing"))
	assert.Contains(t, h.stdout.String(), "Try changing the filter")
}

func TestListUsageAndFailure(t *testing.T) {
	h := newHarness(t, sample()...)
	assert.Equal(t, 2, h.run("ls", "-status", "soon"))
	assert.Equal(t, 2, h.run("ls", "-sort", "color"))
	assert.Equal(t, 2, h.run("ls", "-priority", "urgent"))

	h.backend.Fail("GET", "/todos", 500, `{"error":"database unavailable"}`)
	assert.Equal(t, 1, h.run("ls"))
	assert.Contains(t, h.stderr.String(), view.MsgLoadFailed)
}

func TestAdd(t *testing.T) {
	h := newHarness(t, sample()...)
	require.Equal(t, 0, h.run("add", "-desc", "before friday", "-due", "2026-10-20", "-priority", "high", "Pay", "rent"))
	assert.Contains(t, h.stdout.String(), "added 000000000000000000000003")

	stored := h.backend.Todos()
	require.Len(t, stored, 3)
	got := stored[2]
	assert.Equal(t, "Pay rent", got.Title)
	assert.Equal(t, "before friday", got.Description)
	assert.Equal(t, model.Date{Year: 2026, Month: 10, Day: 20}, got.DueDate)
	assert.Equal(t, model.PriorityHigh, got.Priority)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.Contains(t, h.lastRequest().Body, `"status":"pending"`)
}

func TestAddUsage(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 2, h.run("add", "   "))
	assert.Equal(t, 2, h.run("add", "-due", "friday", "Pay rent"))
	assert.Equal(t, 2, h.run("add", "-priority", "urgent", "Pay rent"))
	assert.Empty(t, h.backend.Requests())
}

func TestAddFailure(t *testing.T) {
	h := newHarness(t)
	h.backend.Fail("POST", "/todos", 400, `{"error":"Title is required"}`)
	assert.Equal(t, 1, h.run("add", "Pay rent"))
	assert.Contains(t, h.stderr.String(), view.MsgCreateFailed)
}

func TestDoneToggles(t *testing.T) {
	h := newHarness(t, sample()...)
	require.Equal(t, 0, h.run("done", "a"))
	assert.Contains(t, h.stdout.String(), "marked completed")
	assert.Equal(t, model.StatusCompleted, h.backend.Todos()[0].Status)

	last := h.lastRequest()
	assert.Equal(t, "PATCH", last.Method)
	assert.JSONEq(t, `{"status":"completed"}`, last.Body)

	require.Equal(t, 0, h.run("done", "a"))
	assert.Contains(t, h.stdout.String(), "marked pending")
}

func TestDoneUnknownID(t *testing.T) {
	h := newHarness(t, sample()...)
	assert.Equal(t, 2, h.run("done", "zzz"))
	assert.Contains(t, h.stderr.String(), "no todo with id zzz")
	assert.Equal(t, "GET", h.lastRequest().Method)

	assert.Equal(t, 2, h.run("done"))
}

func TestRemove(t *testing.T) {
	h := newHarness(t, sample()...)
	require.Equal(t, 0, h.run("rm", "b"))
	assert.Contains(t, h.stdout.String(), "removed")
	assert.Len(t, h.backend.Todos(), 1)

	assert.Equal(t, 1, h.run("rm", "b"))
	assert.Contains(t, h.stderr.String(), view.MsgDeleteFailed)
}

func TestBlankIDIsUsage(t *testing.T) {
	h := newHarness(t, sample()...)
	assert.Equal(t, 2, h.run("rm", ""))
	assert.Equal(t, 2, h.run("rm", "  "))
	assert.Equal(t, 2, h.run("done", ""))
	assert.Empty(t, h.backend.Requests())
	assert.Len(t, h.backend.Todos(), 2)
}

func TestUpcoming(t *testing.T) {
	todos := sample()
	todos = append(todos, model.Todo{ID: "c", Title: "Dentist", Status: model.StatusPending,
		Priority: model.PriorityMedium, DueDate: model.Date{Year: 2026, Month: 10, Day: 25}})
	h := newHarness(t, todos...)
	require.Equal(t, 0, h.run("upcoming"))

	out := h.stdout.String()
	assert.Contains(t, out, "Upcoming")
	assert.Contains(t, out, "tomorrow")
	assert.Contains(t, out, "in 10 days")
	assert.Contains(t, out, "2 todos")
	assert.Less(t, strings.Index(out, "Buy milk"), strings.Index(out, "Dentist"))
	assert.NotContains(t, out, "Write report")
	assert.Equal(t, "/todos/upcoming", h.lastRequest().Path)
}

func TestUpcomingNothing(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.run("upcoming"))
	assert.Contains(t, h.stdout.String(), "Nothing upcoming.")
}

func TestTUI(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.run("tui"))
	assert.Equal(t, 1, h.tui)
}

func TestAuthCommands(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(auth.EnvVar, "")
	h := newHarness(t)

	require.Equal(t, 0, h.run("auth", "status"))
	assert.Contains(t, h.stdout.String(), "not logged in")
	assert.Equal(t, 2, h.run("auth", "whoami"))

	enc := base64.RawURLEncoding
	token := enc.EncodeToString([]byte(`{"alg":"none"}`)) + "." +
		enc.EncodeToString([]byte(`{"sub":"idil","exp":1893456000}`)) + ".sig"
	h.stdin = token + "\n"
	require.Equal(t, 0, h.run("auth", "login"))
	assert.Contains(t, h.stdout.String(), "logged in")

	require.Equal(t, 0, h.run("auth", "status"))
	assert.Contains(t, h.stdout.String(), "source: file")
	assert.Contains(t, h.stdout.String(), "expires: 2030-01-01T00:00:00Z")

	require.Equal(t, 0, h.run("auth", "whoami"))
	assert.Contains(t, h.stdout.String(), "sub: idil")
	assert.Contains(t, h.stdout.String(), "exp: 2030-01-01T00:00:00Z")

	require.Equal(t, 0, h.run("auth", "logout"))
	assert.Contains(t, h.stdout.String(), "logged out")

	assert.Equal(t, 2, h.run("auth"))
	assert.Equal(t, 2, h.run("auth", "rotate"))
}
