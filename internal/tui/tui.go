// Package tui is the interactive Bubble Tea front end.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/quote"
	"github.com/Makepad-fr/tada/internal/todo"
)

// listItem adapts a todo to bubbles/list.Item
type listItem struct {
	model.Todo
}

func (i listItem) FilterValue() string { return i.Text }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	box := mutedStyle.Render(boxUnchecked)
	text := it.Text
	if it.Completed {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s", prefix, box, text)
}

// quoteMsg carries the settled fetch state back to the update loop.
type quoteMsg struct {
	state quote.State
}

// Model is the whole application state: the todo store, the add form and
// the quote panel. All mutations go through Update.
type Model struct {
	ctx     context.Context
	store   *todo.Store
	fetcher *quote.Fetcher // nil when the quote panel is off

	keys    keyMap
	list    list.Model
	ti      textinput.Model
	spinner spinner.Model
	adding  bool
	quote   quote.State

	width, height int
}

// New builds the model. fetcher may be nil.
func New(ctx context.Context, store *todo.Store, fetcher *quote.Fetcher) Model {
	keys := defaultKeys()

	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.SetStatusBarItemName("item", "items")
	l.AdditionalShortHelpKeys = keys.short
	l.AdditionalFullHelpKeys = keys.full
	// quitting is handled here so the fetcher can be closed first
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "What needs to be done?"
	ti.CharLimit = 200

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(accentStyle))

	m := Model{
		ctx:     ctx,
		store:   store,
		fetcher: fetcher,
		keys:    keys,
		list:    l,
		ti:      ti,
		spinner: sp,
	}
	m.refresh()
	return m
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, store *todo.Store, fetcher *quote.Fetcher) error {
	if fetcher != nil {
		defer fetcher.Close()
	}
	p := tea.NewProgram(New(ctx, store, fetcher), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func fetchQuote(ctx context.Context, f *quote.Fetcher) tea.Cmd {
	return func() tea.Msg {
		return quoteMsg{state: f.Fetch(ctx)}
	}
}

func (m Model) Init() tea.Cmd {
	if m.fetcher == nil {
		return nil
	}
	return tea.Batch(m.spinner.Tick, fetchQuote(m.ctx, m.fetcher))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case quoteMsg:
		// Loading is left exactly once; a stale or repeated result is ignored.
		if m.quote.Status == quote.Loading && msg.state.Status != quote.Loading {
			m.quote = msg.state
			m.resize()
		}
		return m, nil

	case spinner.TickMsg:
		if m.fetcher == nil || m.quote.Status != quote.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.adding {
			return m.updateAdding(msg)
		}
		return m.updateBrowsing(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		if _, ok := m.store.Add(m.ti.Value()); !ok {
			// blank input is ignored
			return m, nil
		}
		m.closeInput()
		m.refresh()
		if n := len(m.list.Items()); n > 0 {
			m.list.Select(n - 1)
		}
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		m.closeInput()
		return m, nil
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.fetcher != nil {
			m.fetcher.Close()
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Add):
		m.adding = true
		m.ti.SetValue("")
		cmd := m.ti.Focus()
		m.resize()
		return m, cmd
	case key.Matches(msg, m.keys.Toggle):
		if it, ok := m.selected(); ok {
			m.store.Toggle(it.ID)
			m.refresh()
		}
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if it, ok := m.selected(); ok {
			m.store.Delete(it.ID)
			m.refresh()
		}
		return m, nil
	case key.Matches(msg, m.keys.NextView):
		m.setFilter(m.store.Filter().Next())
		return m, nil
	case key.Matches(msg, m.keys.All):
		m.setFilter(model.FilterAll)
		return m, nil
	case key.Matches(msg, m.keys.Active):
		m.setFilter(model.FilterActive)
		return m, nil
	case key.Matches(msg, m.keys.Completed):
		m.setFilter(model.FilterCompleted)
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.adding = false
	m.ti.SetValue("")
	m.ti.Blur()
	m.resize()
}

func (m *Model) selected() (listItem, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	return it, ok
}

func (m *Model) setFilter(f model.Filter) {
	m.store.SetFilter(f)
	m.refresh()
	m.list.Select(0)
}

// refresh rebuilds the list from the store's current view.
func (m *Model) refresh() {
	visible := m.store.Visible()
	items := make([]list.Item, 0, len(visible))
	for _, td := range visible {
		items = append(items, listItem{td})
	}
	idx := m.list.Index()
	m.list.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}

	done, pending := m.store.Stats()
	m.list.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("To-Do List"),
		successStyle.Render("✔"), done,
		pendingStyle.Render("•"), pending,
		accentStyle.Render("Total"), done+pending,
	)
}

// resize fits the list between the quote panel and the add form.
func (m *Model) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	// border + padding
	w, h := m.width-4, m.height-2
	h -= lipgloss.Height(m.header())
	if m.adding {
		h -= lipgloss.Height(m.inputView())
	}
	if msg := m.statusLine(); msg != "" {
		h--
	}
	if h < 3 {
		h = 3
	}
	m.list.SetSize(w, h)
	m.ti.Width = w - 4
}

func (m Model) quoteView() string {
	switch m.quote.Status {
	case quote.Success:
		return quoteStyle.Render(fmt.Sprintf("%q", m.quote.Quote.Content)) + " " +
			authorStyle.Render("— "+m.quote.Quote.Author)
	case quote.Failure:
		return errorStyle.Render(m.quote.Message)
	default:
		return m.spinner.View() + " " + mutedStyle.Render(quote.LoadingText)
	}
}

func (m Model) filterView() string {
	parts := make([]string, 0, len(model.Filters))
	for _, f := range model.Filters {
		label := strings.ToUpper(string(f[:1])) + string(f[1:])
		if f == m.store.Filter() {
			parts = append(parts, filterOnStyle.Render(label))
		} else {
			parts = append(parts, mutedStyle.Render(label))
		}
	}
	return strings.Join(parts, "  ")
}

func (m Model) header() string {
	var lines []string
	if m.fetcher != nil {
		lines = append(lines, m.quoteView(), "")
	}
	lines = append(lines, m.filterView())
	return strings.Join(lines, "\n")
}

func (m Model) inputView() string {
	bar := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
	return bar.Render("Add new item\n" + m.ti.View())
}

func (m Model) statusLine() string {
	if err := m.store.Err(); err != nil {
		return errorStyle.Render("not saved: " + err.Error())
	}
	return ""
}

func (m Model) View() string {
	parts := []string{m.header(), m.list.View()}
	if m.adding {
		parts = append(parts, m.inputView())
	}
	if s := m.statusLine(); s != "" {
		parts = append(parts, s)
	}
	return panelString(strings.Join(parts, "\n"))
}
