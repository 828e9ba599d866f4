// Package tui is the interactive todo list. Requests run as Bubble Tea
// commands; their outcomes come back as messages and are folded into the
// view state on the UI loop, in the order they complete.
package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todoclient/internal/model"
	"github.com/idilsaglam/todoclient/internal/view"
)

// listItem adapts a todo to bubbles/list.Item
type listItem struct {
	todo  model.Todo
	today model.Date
}

func (i listItem) Title() string       { return i.todo.Title }
func (i listItem) Description() string { return i.todo.Description }
func (i listItem) FilterValue() string { return i.todo.Title }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(listItem)
	t := it.todo

	box := mutedStyle.Render(boxUnchecked)
	text := t.Title
	if t.Completed() {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}
	line := box + " " + text
	if t.Priority == model.PriorityHigh {
		line += " " + starStyle.Render("★")
	}
	if !t.DueDate.IsZero() {
		due := "due " + t.DueDate.String()
		switch {
		case t.Overdue(it.today):
			due = overdueStyle.Render(due + " (overdue)")
		case t.DueSoon(it.today):
			due = pendingStyle.Render(due)
		default:
			due = mutedStyle.Render(due)
		}
		line += "  " + due
	}
	if t.Description != "" {
		line += "  " + mutedStyle.Render("· "+t.Description)
	}

	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+line)
}

type mode int

const (
	modeList mode = iota
	modeAdd
	modeSearch
	modeUpcoming
)

// Add form fields, in tab order.
const (
	fieldTitle = iota
	fieldDescription
	fieldDue
	fieldPriority
	fieldCount
)

var fieldNames = [fieldCount]string{"Title", "Description", "Due (YYYY-MM-DD)", "Priority"}

// outcomeMsg carries a finished request back to Update.
type outcomeMsg struct{ outcome view.Outcome }

// Model is the Bubble Tea model for the list screen.
type Model struct {
	ctrl  *view.Controller
	state view.State
	now   func() time.Time

	list list.Model
	ti   textinput.Model // shared by the add form and the search bar
	mode mode

	field   int
	formErr string

	width, height int
}

var (
	addBind      = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	toggleBind   = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle"))
	deleteBind   = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	filterBind   = key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter"))
	sortBind     = key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort"))
	searchBind   = key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search"))
	reloadBind   = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload"))
	upcomingBind = key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "upcoming"))
	reminderBind = key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reminders"))
)

// New builds the model. The first load starts from Init.
func New(ctrl *view.Controller, now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.SetStatusBarItemName("todo", "todos")
	l.KeyMap.NextPage = key.NewBinding(key.WithKeys("right", "l", "pgdown"), key.WithHelp("→/l/pgdn", "next page"))
	l.KeyMap.PrevPage = key.NewBinding(key.WithKeys("left", "h", "pgup"), key.WithHelp("←/h/pgup", "prev page"))

	short := []key.Binding{addBind, toggleBind, deleteBind, filterBind, sortBind, searchBind}
	full := append(append([]key.Binding{}, short...), reloadBind, upcomingBind, reminderBind)
	l.AdditionalShortHelpKeys = func() []key.Binding { return short }
	l.AdditionalFullHelpKeys = func() []key.Binding { return full }

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	m := Model{
		ctrl:  ctrl,
		state: view.Reduce(view.NewState(), view.LoadStarted{}),
		now:   now,
		list:  l,
		ti:    ti,
	}
	m.syncList()
	return m
}

// RunOptions configure Run.
type RunOptions struct {
	// Logger is the logger the controller and client share. Its output is
	// moved off the terminal for as long as the program runs.
	Logger *log.Logger
	// LogFile receives those lines; empty drops them.
	LogFile string
}

// Run starts the program on the alternate screen.
func Run(ctrl *view.Controller, opts RunOptions) error {
	if opts.Logger != nil {
		f, err := redirectLogs(opts.Logger, opts.LogFile)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		if f != nil {
			defer f.Close()
		}
	}
	_, err := tea.NewProgram(New(ctrl, time.Now), tea.WithAltScreen()).Run()
	return err
}

// redirectLogs points logger at path, or at io.Discard when path is empty.
// The returned file is nil in the discard case.
func redirectLogs(logger *log.Logger, path string) (*os.File, error) {
	if path == "" {
		logger.SetOutput(io.Discard)
		return nil, nil
	}
	return tea.LogToFileWith(path, "todo", logger)
}

// State exposes the current view state.
func (m Model) State() view.State { return m.state }

// Init and Update and View implement Bubble Tea's Model on Model
func (m Model) Init() tea.Cmd { return m.fetchTodos() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil
	case outcomeMsg:
		m.state = view.Reduce(m.state, msg.outcome)
		return m, m.syncList()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeAdd:
			return m.updateAdd(msg)
		case modeSearch:
			return m.updateSearch(msg)
		case modeUpcoming:
			return m.updateUpcoming(msg)
		}
		return m.updateList(msg)
	}
	if m.mode == modeAdd || m.mode == modeSearch {
		var cmd tea.Cmd
		m.ti, cmd = m.ti.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case " ":
		if it, ok := m.list.SelectedItem().(listItem); ok {
			return m, m.toggle(it.todo.ID)
		}
		return m, nil
	case "d":
		if it, ok := m.list.SelectedItem().(listItem); ok {
			return m, m.remove(it.todo.ID)
		}
		return m, nil
	case "a":
		m.mode = modeAdd
		m.formErr = ""
		return m, m.focusField(fieldTitle)
	case "f":
		m.state = view.Reduce(m.state, view.FilterChanged{Filter: m.state.Filter.Next()})
		return m, m.reload()
	case "s":
		m.state = view.Reduce(m.state, view.SortChanged{SortBy: m.state.SortBy.Next()})
		return m, m.reload()
	case "/":
		m.mode = modeSearch
		m.ti.Placeholder = "Search todos..."
		m.ti.SetValue(m.state.Search)
		m.ti.CursorEnd()
		return m, m.ti.Focus()
	case "r":
		return m, m.reload()
	case "u":
		m.mode = modeUpcoming
		return m, m.fetchUpcoming()
	case "R":
		m.state = view.Reduce(m.state, view.RemindersToggled{})
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.mode = modeList
		m.ti.Blur()
		return m, m.reload()
	case "esc":
		m.mode = modeList
		m.ti.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	// The live value is kept but only read by the next load.
	m.state = view.Reduce(m.state, view.SearchChanged{Search: m.ti.Value()})
	return m, cmd
}

func (m Model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.commitField()
		m.mode = modeList
		m.formErr = ""
		m.ti.Blur()
		return m, nil
	case "tab", "shift+tab":
		if !m.commitField() {
			return m, nil
		}
		next := (m.field + 1) % fieldCount
		if msg.String() == "shift+tab" {
			next = (m.field + fieldCount - 1) % fieldCount
		}
		return m, m.focusField(next)
	case "enter":
		if !m.commitField() {
			return m, nil
		}
		d := m.state.Draft
		if !d.Submittable() {
			return m, nil
		}
		m.mode = modeList
		m.ti.Blur()
		return m, m.submit(d)
	}
	if m.field == fieldPriority {
		switch msg.String() {
		case " ", "right", "left", "p":
			d := m.state.Draft
			d.Priority = d.Priority.Next()
			m.state = view.Reduce(m.state, view.DraftChanged{Draft: d})
			m.ti.SetValue(string(d.Priority))
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m Model) updateUpcoming(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "u":
		m.mode = modeList
	case "r":
		return m, m.fetchUpcoming()
	}
	return m, nil
}

// commitField copies the input into the draft. It fails only on a due date
// that does not parse.
func (m *Model) commitField() bool {
	d := m.state.Draft
	v := m.ti.Value()
	switch m.field {
	case fieldTitle:
		d.Title = v
	case fieldDescription:
		d.Description = v
	case fieldDue:
		v = strings.TrimSpace(v)
		if v == "" {
			d.DueDate = model.Date{}
			break
		}
		due, err := model.ParseDate(v)
		if err != nil {
			m.formErr = "Due date must be YYYY-MM-DD"
			return false
		}
		d.DueDate = due
	case fieldPriority:
		return true
	}
	m.formErr = ""
	m.state = view.Reduce(m.state, view.DraftChanged{Draft: d})
	return true
}

func (m *Model) focusField(f int) tea.Cmd {
	m.field = f
	d := m.state.Draft
	switch f {
	case fieldTitle:
		m.ti.SetValue(d.Title)
		m.ti.Placeholder = "Task title..."
	case fieldDescription:
		m.ti.SetValue(d.Description)
		m.ti.Placeholder = "Add a description... (optional)"
	case fieldDue:
		m.ti.SetValue(d.DueDate.String())
		m.ti.Placeholder = "YYYY-MM-DD (optional)"
	case fieldPriority:
		m.ti.SetValue(string(d.Priority))
		m.ti.Placeholder = ""
	}
	m.ti.CursorEnd()
	return m.ti.Focus()
}

// ---------------------------------------------------
// Commands
// ---------------------------------------------------

func (m *Model) reload() tea.Cmd {
	m.state = view.Reduce(m.state, view.LoadStarted{})
	return m.fetchTodos()
}

func (m Model) fetchTodos() tea.Cmd {
	ctrl, s := m.ctrl, m.state
	return func() tea.Msg {
		return outcomeMsg{ctrl.FetchTodos(context.Background(), s)}
	}
}

func (m Model) fetchUpcoming() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return outcomeMsg{ctrl.FetchUpcoming(context.Background())}
	}
}

func (m Model) submit(d model.Draft) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return outcomeMsg{ctrl.SubmitDraft(context.Background(), d)}
	}
}

func (m Model) toggle(id string) tea.Cmd {
	ctrl, s := m.ctrl, m.state
	return func() tea.Msg {
		return outcomeMsg{ctrl.ToggleStatus(context.Background(), s, id)}
	}
}

func (m Model) remove(id string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return outcomeMsg{ctrl.RemoveTodo(context.Background(), id)}
	}
}

// syncList mirrors state.Todos into the list widget.
func (m *Model) syncList() tea.Cmd {
	today := model.DateOf(m.now())
	items := make([]list.Item, 0, len(m.state.Todos))
	for _, t := range m.state.Todos {
		items = append(items, listItem{todo: t, today: today})
	}
	dn, pn := m.state.Stats()
	m.list.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("Todos"),
		successStyle.Render("✔"), dn,
		pendingStyle.Render("•"), pn,
		accentStyle.Render("Total"), dn+pn,
	)
	return m.list.SetItems(items)
}

func (m *Model) resize() {
	w, h := m.width, m.height
	if w == 0 || h == 0 {
		w, h = 80, 24
	}
	reserved := 6
	if m.state.Err != "" {
		reserved += 3
	}
	if m.mode == modeAdd || m.mode == modeSearch {
		reserved += 4
	}
	if h-reserved < 3 {
		reserved = h - 3
	}
	m.list.SetSize(w-4, h-reserved)
}

func (m Model) View() string {
	m.resize()
	var b strings.Builder

	b.WriteString(mutedStyle.Render(fmt.Sprintf("Filter: %s   Sort: %s", m.state.Filter.Label(), m.state.SortBy.Label())))
	if m.state.Search != "" {
		b.WriteString(mutedStyle.Render("   Search: " + m.state.Search))
	}
	b.WriteString("\n")
	if m.state.Err != "" {
		b.WriteString(errorBanner.Render(errorStyle.Render(m.state.Err)) + "\n")
	}
	if m.state.DueSoon(m.now()) {
		b.WriteString(reminderBanner.Render(pendingStyle.Render("⏰ You have tasks due in the next 3 days!")) + "\n")
	}

	switch {
	case m.mode == modeUpcoming:
		b.WriteString(m.upcomingView())
	case m.state.Loading && len(m.state.Todos) == 0:
		b.WriteString(mutedStyle.Render("Loading todos..."))
	case len(m.state.Todos) == 0:
		b.WriteString(mutedStyle.Render(m.state.EmptyHint()))
	default:
		b.WriteString(m.list.View())
	}

	switch m.mode {
	case modeAdd:
		b.WriteString("\n" + m.formView())
	case modeSearch:
		b.WriteString("\n" + formStyle.Render("Search (enter to apply)\n"+m.ti.View()))
	}
	return panelString(b.String())
}

func (m Model) formView() string {
	d := m.state.Draft
	var rows []string
	title := "Add new todo " + mutedStyle.Render("(tab next field, enter save, esc close)")
	if m.formErr != "" {
		title += " " + errorStyle.Render(m.formErr)
	}
	rows = append(rows, title)
	values := [fieldCount]string{d.Title, d.Description, d.DueDate.String(), string(d.Priority)}
	for i := 0; i < fieldCount; i++ {
		label := lipgloss.NewStyle().Width(18).Render(fieldNames[i])
		if i == m.field {
			rows = append(rows, accentStyle.Render(label)+m.ti.View())
			continue
		}
		rows = append(rows, mutedStyle.Render(label)+"  "+values[i])
	}
	return formStyle.Render(strings.Join(rows, "\n"))
}

func (m Model) upcomingView() string {
	today := model.DateOf(m.now())
	lines := []string{titleStyle.Render("Upcoming") + mutedStyle.Render("  (u/esc back, r reload)")}
	if len(m.state.Upcoming) == 0 {
		lines = append(lines, mutedStyle.Render("Nothing upcoming."))
	}
	for _, t := range m.state.Upcoming {
		var b strings.Builder
		itemDelegate{}.Render(&b, list.Model{}, -1, listItem{todo: t, today: today})
		lines = append(lines, strings.TrimRight(b.String(), "\n"))
	}
	return strings.Join(lines, "\n")
}
