package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todoclient/internal/model"
)

func plain(t *testing.T) {
	t.Helper()
	SetTheme("mono")
	t.Cleanup(func() { SetTheme("classic") })
}

func TestPanelAlignsWideRunes(t *testing.T) {
	plain(t)
	var buf bytes.Buffer
	Panel(&buf, []string{"[x] 日本", "short"})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "+----------+", lines[0])
	assert.Equal(t, "| [x] 日本 |", lines[1])
	assert.Equal(t, "| short    |", lines[2])
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░  50%", ProgressBar(1, 2, 10))
	assert.Equal(t, "░░░░░   0%", ProgressBar(0, 0, 1))
}

func TestTodoLine(t *testing.T) {
	plain(t)
	today := model.Date{Year: 2026, Month: time.October, Day: 15}

	line := TodoLine(model.Todo{ID: "a1", Title: "Buy milk", Status: model.StatusPending, Priority: model.PriorityHigh, DueDate: today.AddDays(-1)}, today)
	assert.Equal(t, "[ ] Buy milk *  due 2026-10-14 (overdue)  (a1)", line)

	line = TodoLine(model.Todo{ID: "b2", Title: "Report", Status: model.StatusCompleted, Priority: model.PriorityLow}, today)
	assert.Equal(t, "[x] Report  (b2)", line)

	long := strings.Repeat("x", 100)
	line = TodoLine(model.Todo{ID: "c", Title: long}, today)
	assert.Contains(t, line, strings.Repeat("x", maxTitle-3)+"...")
}

func TestDescriptionAndHeader(t *testing.T) {
	plain(t)
	assert.Empty(t, DescriptionLine(model.Todo{Description: "  "}))
	assert.Equal(t, "    two litres", DescriptionLine(model.Todo{Description: "two litres"}))
	assert.Equal(t, "Todos  x 1  - 2  Total 3", Header("Todos", 1, 2))
}

func TestOKAndFail(t *testing.T) {
	plain(t)
	var buf bytes.Buffer
	OK(&buf, "added")
	Fail(&buf, "boom")
	assert.Equal(t, "✔ added\n✖ boom\n", buf.String())
}

func TestColorPolicy(t *testing.T) {
	t.Cleanup(func() { SetColorForcing(false, false) })

	SetColorForcing(true, false)
	assert.Equal(t, fgRed+"x"+reset, C(fgRed, "x"))
	assert.Equal(t, "x", C("", "x"))

	SetColorForcing(true, true)
	assert.Equal(t, "x", C(fgRed, "x"))
	assert.Equal(t, "x", Dim("x"))
}
