package view

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/idilsaglam/todoclient/internal/model"
)

func TestReduceDoesNotAliasPreviousState(t *testing.T) {
	prev := NewState()
	prev.Todos = []model.Todo{
		{ID: "a", Status: model.StatusPending},
		{ID: "b", Status: model.StatusPending},
	}

	next := Reduce(prev, Toggled{ID: "a", Todo: model.Todo{ID: "a", Status: model.StatusCompleted}})
	assert.Equal(t, model.StatusPending, prev.Todos[0].Status)
	assert.Equal(t, model.StatusCompleted, next.Todos[0].Status)

	next = Reduce(prev, Deleted{ID: "a"})
	assert.Len(t, prev.Todos, 2)
	assert.Len(t, next.Todos, 1)

	next = Reduce(prev, Created{Todo: model.Todo{ID: "c"}})
	assert.Len(t, prev.Todos, 2)
	assert.Len(t, next.Todos, 3)
}

func TestLoadsApplyInCompletionOrder(t *testing.T) {
	s := Reduce(NewState(), LoadStarted{})
	assert.True(t, s.Loading)

	newer := []model.Todo{{ID: "new"}}
	older := []model.Todo{{ID: "old"}}
	s = Reduce(s, Loaded{Todos: newer})
	s = Reduce(s, Loaded{Todos: older})
	assert.Equal(t, older, s.Todos)
}

func TestErrorSlotIsShared(t *testing.T) {
	s := Reduce(NewState(), Deleted{ID: "x", Err: errors.New("x")})
	assert.Equal(t, MsgDeleteFailed, s.Err)
	s = Reduce(s, Created{Err: errors.New("y")})
	assert.Equal(t, MsgCreateFailed, s.Err)
	s = Reduce(s, Loaded{Todos: nil})
	assert.Empty(t, s.Err)
	assert.NotNil(t, s.Todos)
}

func TestReduceNilAndSkipped(t *testing.T) {
	s := NewState()
	assert.Equal(t, s, Reduce(s, nil))
	assert.Equal(t, s, Reduce(s, Skipped{}))
}

func TestFiltersForSelections(t *testing.T) {
	s := NewState()
	assert.Equal(t, model.ListFilters{SortBy: model.SortDateCreated}, s.Filters())

	s = Reduce(s, FilterChanged{Filter: model.FilterCompleted})
	s = Reduce(s, SortChanged{SortBy: model.SortPriority})
	s = Reduce(s, SearchChanged{Search: "q"})
	s = Reduce(s, PriorityChanged{Priority: model.PriorityLow})
	assert.Equal(t, model.ListFilters{
		Status:   model.FilterCompleted,
		Priority: model.PriorityLow,
		SortBy:   model.SortPriority,
		Search:   "q",
	}, s.Filters())
}

func TestDueSoonBanner(t *testing.T) {
	now := time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)
	s := NewState()
	assert.False(t, s.DueSoon(now))

	s.Todos = []model.Todo{{ID: "a", Status: model.StatusPending, DueDate: model.DateOf(now).AddDays(2)}}
	assert.True(t, s.DueSoon(now))

	s = Reduce(s, RemindersToggled{})
	assert.False(t, s.DueSoon(now))
}

func TestEmptyHint(t *testing.T) {
	s := NewState()
	assert.Equal(t, "No todos found. Add one above!", s.EmptyHint())
	s.Filter = model.FilterPending
	assert.Contains(t, s.EmptyHint(), "Try changing the filter")
}
