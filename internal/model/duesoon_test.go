package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAnyDueSoon(t *testing.T) {
	now := time.Date(2026, time.October, 15, 18, 30, 0, 0, time.Local)
	today := DateOf(now)
	open := func(days int) Todo {
		return Todo{ID: "x", Status: StatusPending, DueDate: today.AddDays(days)}
	}
	done := func(days int) Todo {
		td := open(days)
		td.Status = StatusCompleted
		return td
	}

	tests := []struct {
		name  string
		todos []Todo
		want  bool
	}{
		{"empty", nil, false},
		{"due today", []Todo{open(0)}, true},
		{"due in three days", []Todo{open(3)}, true},
		{"due in four days", []Todo{open(4)}, false},
		{"due yesterday", []Todo{open(-1)}, false},
		{"no due date", []Todo{{ID: "x", Status: StatusPending}}, false},
		{"completed in range", []Todo{done(1)}, false},
		{"one of many", []Todo{open(10), done(2), open(2)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnyDueSoon(tt.todos, now))
		})
	}
}

func TestOverdue(t *testing.T) {
	today := Date{2026, time.October, 15}
	assert.True(t, Todo{DueDate: today.AddDays(-1)}.Overdue(today))
	assert.False(t, Todo{DueDate: today}.Overdue(today))
	assert.False(t, Todo{Status: StatusCompleted, DueDate: today.AddDays(-5)}.Overdue(today))
	assert.False(t, Todo{}.Overdue(today))
}

func TestDateArithmetic(t *testing.T) {
	d := Date{2026, time.December, 30}
	assert.Equal(t, Date{2027, time.January, 2}, d.AddDays(3))
	assert.Equal(t, 3, d.AddDays(3).DaysUntil(d))
	assert.Equal(t, -1, d.AddDays(-1).DaysUntil(d))
	assert.Equal(t, "2026-12-30", d.String())
	assert.Equal(t, "", Date{}.String())
}
