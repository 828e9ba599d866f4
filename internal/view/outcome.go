package view

import (
	"github.com/idilsaglam/todoclient/internal/model"
)

// Outcome is the result of one operation, ready to be folded into State.
type Outcome interface {
	apply(State) State
}

// Reduce returns the state after o. s is not modified.
func Reduce(s State, o Outcome) State {
	if o == nil {
		return s
	}
	return o.apply(s)
}

// LoadStarted raises the loading flag before a list request goes out.
type LoadStarted struct{}

func (LoadStarted) apply(s State) State {
	s.Loading = true
	return s
}

// Loaded is a finished list request. On failure the previous list stays.
type Loaded struct {
	Todos []model.Todo
	Err   error
}

func (o Loaded) apply(s State) State {
	s.Loading = false
	if o.Err != nil {
		s.Err = MsgLoadFailed
		return s
	}
	s.Todos = clone(o.Todos)
	s.Err = ""
	return s
}

// UpcomingLoaded is a finished upcoming request.
type UpcomingLoaded struct {
	Todos []model.Todo
	Err   error
}

func (o UpcomingLoaded) apply(s State) State {
	if o.Err != nil {
		s.Err = MsgUpcomingFailed
		return s
	}
	s.Upcoming = clone(o.Todos)
	s.Err = ""
	return s
}

// Created is a finished create. On failure the draft is kept.
type Created struct {
	Todo model.Todo
	Err  error
}

func (o Created) apply(s State) State {
	if o.Err != nil {
		s.Err = MsgCreateFailed
		return s
	}
	todos := make([]model.Todo, 0, len(s.Todos)+1)
	s.Todos = append(append(todos, s.Todos...), o.Todo)
	s.Draft = model.NewDraft()
	s.Err = ""
	return s
}

// Toggled is a finished status update. The entry is replaced by the
// backend's copy; nothing changes locally on failure.
type Toggled struct {
	ID   string
	Todo model.Todo
	Err  error
}

func (o Toggled) apply(s State) State {
	if o.Err != nil {
		s.Err = MsgUpdateFailed
		return s
	}
	s.Todos = clone(s.Todos)
	if i := model.Index(s.Todos, o.ID); i >= 0 {
		s.Todos[i] = o.Todo
	}
	s.Err = ""
	return s
}

// Deleted is a finished delete. Removing an id that is not shown is a
// no-op.
type Deleted struct {
	ID  string
	Err error
}

func (o Deleted) apply(s State) State {
	if o.Err != nil {
		s.Err = MsgDeleteFailed
		return s
	}
	todos := make([]model.Todo, 0, len(s.Todos))
	for _, t := range s.Todos {
		if t.ID != o.ID {
			todos = append(todos, t)
		}
	}
	s.Todos = todos
	s.Err = ""
	return s
}

// Skipped is an operation that made no request, such as a blank title.
type Skipped struct{}

func (Skipped) apply(s State) State { return s }

// FilterChanged selects a status filter.
type FilterChanged struct{ Filter model.StatusFilter }

func (o FilterChanged) apply(s State) State {
	s.Filter = o.Filter
	return s
}

// SortChanged selects a sort key.
type SortChanged struct{ SortBy model.SortKey }

func (o SortChanged) apply(s State) State {
	s.SortBy = o.SortBy
	return s
}

// PriorityChanged selects a priority. It does not load.
type PriorityChanged struct{ Priority model.Priority }

func (o PriorityChanged) apply(s State) State {
	s.Priority = o.Priority
	return s
}

// SearchChanged edits the search text without loading.
type SearchChanged struct{ Search string }

func (o SearchChanged) apply(s State) State {
	s.Search = o.Search
	return s
}

// DraftChanged replaces the new-todo form.
type DraftChanged struct{ Draft model.Draft }

func (o DraftChanged) apply(s State) State {
	s.Draft = o.Draft
	return s
}

// RemindersToggled flips the due-soon banner.
type RemindersToggled struct{}

func (RemindersToggled) apply(s State) State {
	s.ShowReminders = !s.ShowReminders
	return s
}

func clone(todos []model.Todo) []model.Todo {
	out := make([]model.Todo, len(todos))
	copy(out, todos)
	return out
}
