package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/idilsaglam/todoclient/internal/model"
	"github.com/idilsaglam/todoclient/internal/ui"
	"github.com/idilsaglam/todoclient/internal/view"
)

// listLines lays out the `ls` panel: header, progress, reminder, items.
func listLines(s view.State, now time.Time, group bool) []string {
	th := ui.Current()
	today := model.DateOf(now)
	d, p := s.Stats()

	lines := []string{
		ui.Header("Todos", d, p),
		ui.C(th.Muted, ui.ProgressBar(d, d+p, 28)),
		ui.C(th.Muted, fmt.Sprintf("Filter: %s   Sort: %s", s.Filter.Label(), s.SortBy.Label())),
	}
	if s.DueSoon(now) {
		lines = append(lines, ui.Reminder())
	}
	lines = append(lines, "")

	switch {
	case len(s.Todos) == 0:
		lines = append(lines, ui.C(th.Muted, s.EmptyHint()))
	case group:
		lines = append(lines, groupLines(s.Todos, today)...)
	default:
		lines = append(lines, flatLines(s.Todos, today)...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(th.Muted, "Tip: add with `todo add \"Buy milk\"`"))
	return lines
}

func flatLines(todos []model.Todo, today model.Date) []string {
	if len(todos) == 0 {
		return []string{ui.C(ui.Current().Muted, "(none)")}
	}
	out := make([]string, 0, len(todos))
	for _, t := range todos {
		out = append(out, ui.TodoLine(t, today))
		if desc := ui.DescriptionLine(t); desc != "" {
			out = append(out, desc)
		}
	}
	return out
}

func groupLines(todos []model.Todo, today model.Date) []string {
	var pend, done []model.Todo
	for _, t := range todos {
		if t.Completed() {
			done = append(done, t)
		} else {
			pend = append(pend, t)
		}
	}
	th := ui.Current()
	var lines []string
	lines = append(lines, ui.C(th.Accent, "Pending"))
	lines = append(lines, flatLines(pend, today)...)
	lines = append(lines, "")
	lines = append(lines, ui.C(th.Accent, "Done"))
	lines = append(lines, flatLines(done, today)...)
	return lines
}

func upcomingLines(todos []model.Todo, today model.Date) []string {
	th := ui.Current()
	lines := []string{ui.C(th.Title, "Upcoming") + "  " + ui.C(th.Muted, model.FormatCount(len(todos))), ""}
	if len(todos) == 0 {
		return append(lines, ui.C(th.Muted, "Nothing upcoming."))
	}
	for _, t := range todos {
		line := ui.TodoLine(t, today)
		if n := t.DueDate.DaysUntil(today); n >= 0 {
			line += ui.C(th.Muted, "  "+inDays(n))
		}
		lines = append(lines, line)
	}
	return lines
}

func inDays(n int) string {
	switch n {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	}
	return fmt.Sprintf("in %d days", n)
}

// claimLines prints JWT claims sorted by name, with exp/iat/nbf as times.
func claimLines(claims map[string]any) []string {
	keys := make([]string, 0, len(claims))
	for k := range claims {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		v := claims[k]
		switch k {
		case "exp", "iat", "nbf":
			if sec, ok := v.(float64); ok {
				out = append(out, fmt.Sprintf("%s: %s", k, time.Unix(int64(sec), 0).UTC().Format(time.RFC3339)))
				continue
			}
		}
		out = append(out, fmt.Sprintf("%s: %v", k, v))
	}
	return out
}
