// Package view owns the displayed todo state. Transitions are pure: Reduce
// takes the previous State and the outcome of one operation and returns the
// next State. The Controller performs the API calls that produce outcomes.
package view

import (
	"time"

	"github.com/idilsaglam/todoclient/internal/model"
)

// Banner texts for the shared error slot.
const (
	MsgLoadFailed     = "Failed to load todos"
	MsgUpcomingFailed = "Failed to load upcoming todos"
	MsgCreateFailed   = "Failed to add todo"
	MsgUpdateFailed   = "Failed to update todo"
	MsgDeleteFailed   = "Failed to delete todo"
)

// State is everything the list screen shows.
type State struct {
	Todos    []model.Todo
	Upcoming []model.Todo
	Draft    model.Draft

	Loading bool
	// Err is the single error slot shared by all operations.
	Err string

	Filter model.StatusFilter
	// Priority narrows the list to one priority; empty means any.
	Priority model.Priority
	SortBy   model.SortKey
	// Search is read when a load starts; editing it does not load.
	Search string

	ShowReminders bool
}

// NewState is the state before the first load.
func NewState() State {
	return State{
		Todos:         []model.Todo{},
		Draft:         model.NewDraft(),
		Filter:        model.FilterAll,
		SortBy:        model.SortDateCreated,
		ShowReminders: true,
	}
}

// Filters are the list parameters for the current selections.
func (s State) Filters() model.ListFilters {
	f := model.ListFilters{SortBy: s.SortBy, Search: s.Search, Priority: s.Priority}
	if s.Filter != model.FilterAll {
		f.Status = s.Filter
	}
	return f
}

// DueSoon is the reminder banner: on, and some open todo due within the
// window. Computed from the current collection on every call.
func (s State) DueSoon(now time.Time) bool {
	return s.ShowReminders && model.AnyDueSoon(s.Todos, now)
}

// Find returns the todo with the given id.
func (s State) Find(id string) (model.Todo, bool) {
	if i := model.Index(s.Todos, id); i >= 0 {
		return s.Todos[i], true
	}
	return model.Todo{}, false
}

// EmptyHint is shown in place of an empty list.
func (s State) EmptyHint() string {
	if s.Filter != model.FilterAll {
		return "No todos found. Try changing the filter or add one above!"
	}
	return "No todos found. Add one above!"
}

// Stats counts completed and pending todos.
func (s State) Stats() (done, pending int) {
	for _, t := range s.Todos {
		if t.Completed() {
			done++
		} else {
			pending++
		}
	}
	return
}
