package view

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todoclient/internal/api"
	"github.com/idilsaglam/todoclient/internal/model"
)

// ErrUnknownTodo is the toggle failure for an id that is not displayed.
var ErrUnknownTodo = errors.New("todo is not in the current list")

// Client is the part of the API the controller drives. *api.Client
// satisfies it.
type Client interface {
	ListTodos(ctx context.Context, f model.ListFilters) ([]model.Todo, error)
	ListUpcomingTodos(ctx context.Context) ([]model.Todo, error)
	CreateTodo(ctx context.Context, d model.Draft) (model.Todo, error)
	UpdateTodo(ctx context.Context, id string, p model.Patch) (model.Todo, error)
	DeleteTodo(ctx context.Context, id string) (api.DeleteResult, error)
}

var _ Client = (*api.Client)(nil)

// Controller is the only caller of the API. Its Fetch/Submit/Toggle/Remove
// methods perform one request against a snapshot and return an Outcome
// without touching any state, so they can run off the UI loop. The
// remaining methods apply outcomes to the State the Controller owns and are
// meant for a single goroutine.
type Controller struct {
	client Client
	log    *log.Logger
	state  State
}

// New returns a controller with NewState.
func New(client Client, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{client: client, log: logger, state: NewState()}
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Dispatch applies o to the owned state.
func (c *Controller) Dispatch(o Outcome) State {
	c.state = Reduce(c.state, o)
	return c.state
}

// ---------------------------------------------------
// Effects
// ---------------------------------------------------

// FetchTodos lists with the selections in s.
func (c *Controller) FetchTodos(ctx context.Context, s State) Loaded {
	todos, err := c.client.ListTodos(ctx, s.Filters())
	if err != nil {
		c.failed("load", err)
	}
	return Loaded{Todos: todos, Err: err}
}

// FetchUpcoming lists the upcoming sub-resource.
func (c *Controller) FetchUpcoming(ctx context.Context) UpcomingLoaded {
	todos, err := c.client.ListUpcomingTodos(ctx)
	if err != nil {
		c.failed("upcoming", err)
	}
	return UpcomingLoaded{Todos: todos, Err: err}
}

// SubmitDraft creates d. A blank title makes no request and yields Skipped.
func (c *Controller) SubmitDraft(ctx context.Context, d model.Draft) Outcome {
	if !d.Submittable() {
		return Skipped{}
	}
	td, err := c.client.CreateTodo(ctx, d)
	if err != nil {
		c.failed("create", err)
	}
	return Created{Todo: td, Err: err}
}

// ToggleStatus flips the status of the todo with id as shown in s.
func (c *Controller) ToggleStatus(ctx context.Context, s State, id string) Toggled {
	cur, ok := s.Find(id)
	if !ok {
		c.failed("toggle", ErrUnknownTodo, "id", id)
		return Toggled{ID: id, Err: ErrUnknownTodo}
	}
	td, err := c.client.UpdateTodo(ctx, id, model.StatusPatch(cur.Status.Toggled()))
	if err != nil {
		c.failed("toggle", err, "id", id)
	}
	return Toggled{ID: id, Todo: td, Err: err}
}

// RemoveTodo deletes id.
func (c *Controller) RemoveTodo(ctx context.Context, id string) Deleted {
	_, err := c.client.DeleteTodo(ctx, id)
	if err != nil {
		c.failed("delete", err, "id", id)
	}
	return Deleted{ID: id, Err: err}
}

func (c *Controller) failed(op string, err error, kv ...any) {
	c.log.Error("operation failed", append([]any{"op", op, "err", err}, kv...)...)
}

// ---------------------------------------------------
// Operations on the owned state
// ---------------------------------------------------

// Load refreshes the list.
func (c *Controller) Load(ctx context.Context) State {
	c.Dispatch(LoadStarted{})
	return c.Dispatch(c.FetchTodos(ctx, c.state))
}

// LoadUpcoming refreshes the upcoming list.
func (c *Controller) LoadUpcoming(ctx context.Context) State {
	return c.Dispatch(c.FetchUpcoming(ctx))
}

// Create submits the current draft.
func (c *Controller) Create(ctx context.Context) State {
	return c.Dispatch(c.SubmitDraft(ctx, c.state.Draft))
}

// Toggle flips the completion of id.
func (c *Controller) Toggle(ctx context.Context, id string) State {
	return c.Dispatch(c.ToggleStatus(ctx, c.state, id))
}

// Delete removes id.
func (c *Controller) Delete(ctx context.Context, id string) State {
	return c.Dispatch(c.RemoveTodo(ctx, id))
}

// SetDraft replaces the new-todo form.
func (c *Controller) SetDraft(d model.Draft) State {
	return c.Dispatch(DraftChanged{Draft: d})
}

// SetSearch edits the search text. It takes effect on the next load.
func (c *Controller) SetSearch(q string) State {
	return c.Dispatch(SearchChanged{Search: q})
}

// SetFilter selects f and reloads when it changed.
func (c *Controller) SetFilter(ctx context.Context, f model.StatusFilter) State {
	if f == c.state.Filter {
		return c.state
	}
	c.Dispatch(FilterChanged{Filter: f})
	return c.Load(ctx)
}

// SetPriority narrows to p, or to any priority when p is empty, and
// reloads when it changed.
func (c *Controller) SetPriority(ctx context.Context, p model.Priority) State {
	if p == c.state.Priority {
		return c.state
	}
	c.Dispatch(PriorityChanged{Priority: p})
	return c.Load(ctx)
}

// SetSort selects k and reloads when it changed.
func (c *Controller) SetSort(ctx context.Context, k model.SortKey) State {
	if k == c.state.SortBy {
		return c.state
	}
	c.Dispatch(SortChanged{SortBy: k})
	return c.Load(ctx)
}

// DueSoon evaluates the reminder banner for the current state.
func (c *Controller) DueSoon(now time.Time) bool {
	return c.state.DueSoon(now)
}
