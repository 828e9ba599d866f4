// Package model holds the todo entity and the client-side selections that
// are sent along with list requests.
package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// codec is the same sonic configuration the api package decodes bodies with.
var codec = sonic.ConfigStd

// Status is the completion state of a todo.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Toggled returns the opposite completion state.
func (s Status) Toggled() Status {
	if s == StatusCompleted {
		return StatusPending
	}
	return StatusCompleted
}

// Priority ranks a todo. The backend defaults it to medium.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority accepts low, medium or high in any case.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	}
	return "", fmt.Errorf("unknown priority %q (want low, medium or high)", s)
}

// Next cycles low -> medium -> high -> low.
func (p Priority) Next() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityLow
	}
}

// Todo is a task as returned by the backend. ID is always backend-assigned.
type Todo struct {
	ID          string
	Title       string
	Description string
	Status      Status
	Priority    Priority
	DueDate     Date
}

// Completed reports whether the todo is in the completed state.
func (t Todo) Completed() bool { return t.Status == StatusCompleted }

// todoWire is the JSON shape. Older backends spell the status key "Status"
// and the identifier "_id"; both spellings are read, the lowercase one wins.
type todoWire struct {
	ID           wireID   `json:"_id,omitempty"`
	AltID        wireID   `json:"id,omitempty"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Status       Status   `json:"status,omitempty"`
	LegacyStatus Status   `json:"Status,omitempty"`
	Priority     Priority `json:"priority,omitempty"`
	DueDate      Date     `json:"dueDate"`
}

func (t *Todo) UnmarshalJSON(b []byte) error {
	var w todoWire
	if err := codec.Unmarshal(b, &w); err != nil {
		return err
	}
	t.ID = string(w.ID)
	if t.ID == "" {
		t.ID = string(w.AltID)
	}
	t.Title = w.Title
	t.Description = w.Description
	t.Status = w.Status
	if t.Status == "" {
		t.Status = w.LegacyStatus
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	t.Priority = w.Priority
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	t.DueDate = w.DueDate
	return nil
}

func (t Todo) MarshalJSON() ([]byte, error) {
	return codec.Marshal(todoWire{
		ID:          wireID(t.ID),
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
	})
}

// wireID accepts string or numeric identifiers.
type wireID string

func (id *wireID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := codec.Unmarshal(b, &s); err == nil {
		*id = wireID(s)
		return nil
	}
	var n json.Number
	if err := codec.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("todo id: %w", err)
	}
	*id = wireID(n.String())
	return nil
}

// Draft is the new-todo form. It never carries an id or a status.
type Draft struct {
	Title       string
	Description string
	DueDate     Date
	Priority    Priority
}

// NewDraft returns the empty form: blank fields, medium priority.
func NewDraft() Draft {
	return Draft{Priority: PriorityMedium}
}

// Submittable reports whether the title has any non-space content.
func (d Draft) Submittable() bool {
	return strings.TrimSpace(d.Title) != ""
}

// Patch is a partial update. Nil fields are left out of the request body.
type Patch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	DueDate     *Date     `json:"dueDate,omitempty"`
}

// StatusPatch changes only the status.
func StatusPatch(s Status) Patch {
	return Patch{Status: &s}
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.DueDate == nil
}

// Index returns the position of the todo with the given id, or -1.
func Index(todos []Todo, id string) int {
	for i, t := range todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// FormatCount renders "1 todo" / "3 todos".
func FormatCount(n int) string {
	if n == 1 {
		return "1 todo"
	}
	return strconv.Itoa(n) + " todos"
}
