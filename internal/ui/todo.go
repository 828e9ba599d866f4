package ui

import (
	"fmt"
	"strings"

	"github.com/idilsaglam/todoclient/internal/model"
)

const maxTitle = 60

// TodoLine renders one todo for non-interactive output:
//
//	☑ Buy milk ★  due 2026-10-17  (id 65f1c0...)
func TodoLine(t model.Todo, today model.Date) string {
	th := Current()
	box, color := th.BoxUnchecked, th.Muted
	if t.Completed() {
		box, color = th.BoxChecked, th.Success
	}

	title := t.Title
	if r := []rune(title); len(r) > maxTitle {
		title = string(r[:maxTitle-3]) + "..."
	}
	if t.Completed() {
		title = C(th.Muted, title)
	}

	parts := []string{C(color, box), title}
	if t.Priority == model.PriorityHigh {
		parts = append(parts, C(th.Error, th.SymStar))
	}
	if !t.DueDate.IsZero() {
		due := "due " + t.DueDate.String()
		switch {
		case t.Overdue(today):
			due = C(th.Error, due+" (overdue)")
		case t.DueSoon(today):
			due = C(th.Pending, due)
		default:
			due = C(th.Muted, due)
		}
		parts = append(parts, " "+due)
	}
	parts = append(parts, " "+C(dim, "("+t.ID+")"))
	return strings.Join(parts, " ")
}

// DescriptionLine renders the indented description, or "" when empty.
func DescriptionLine(t model.Todo) string {
	if strings.TrimSpace(t.Description) == "" {
		return ""
	}
	return "    " + C(Current().Muted, t.Description)
}

// Header renders the counts line above a list.
func Header(title string, done, pending int) string {
	th := Current()
	return fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		C(th.Title, title),
		C(th.Success, th.SymDone), done,
		C(th.Pending, th.SymUnchecked), pending,
		C(th.Accent, "Total"), done+pending,
	)
}

// Reminder is the due-soon banner.
func Reminder() string {
	th := Current()
	return C(th.Pending, th.SymClock+" You have tasks due in the next 3 days!")
}
