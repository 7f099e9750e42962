package ui

import (
	"fmt"
	"strings"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/quote"
)

const maxTitle = 80

// Header is the counts line shown above the list.
func Header(done, pending int) string {
	t := Current()
	return fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		C(t.Title, "To-Do List"),
		C(t.Success, t.SymDone), done,
		C(t.Pending, t.SymPending), pending,
		C(t.Accent, "Total"), done+pending,
	)
}

// FilterBar shows the three views with the active one highlighted.
func FilterBar(active model.Filter) string {
	t := Current()
	parts := make([]string, 0, len(model.Filters))
	for _, f := range model.Filters {
		label := strings.ToUpper(string(f[:1])) + string(f[1:])
		if f == active {
			parts = append(parts, C(t.Accent, "["+label+"]"))
		} else {
			parts = append(parts, C(t.Muted, " "+label+" "))
		}
	}
	return strings.Join(parts, " ")
}

// QuoteLine renders the quote panel for the three fetch states.
func QuoteLine(st quote.State) string {
	t := Current()
	switch st.Status {
	case quote.Success:
		return C(t.Quote, st.String())
	case quote.Failure:
		return C(t.Error, st.Message)
	default:
		return C(t.Muted, quote.LoadingText)
	}
}

// Row is one listed todo with its 1-based position in the full collection.
type Row struct {
	Index int
	Todo  model.Todo
}

// Rows pairs the todos kept by f with their position in all.
func Rows(all []model.Todo, f model.Filter) []Row {
	var rows []Row
	for i, td := range all {
		if f.Keep(td) {
			rows = append(rows, Row{Index: i + 1, Todo: td})
		}
	}
	return rows
}

// FlatLines renders rows as "NN. ☐ text".
func FlatLines(rows []Row) []string {
	t := Current()
	if len(rows) == 0 {
		return []string{C(t.Muted, "no items")}
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		idx := fmt.Sprintf("%2d.", r.Index)
		box := t.BoxUnchecked
		color := t.Muted
		if r.Todo.Completed {
			box, color = t.BoxChecked, t.Success
		}
		text := r.Todo.Text
		if len([]rune(text)) > maxTitle {
			text = string([]rune(text)[:maxTitle-3]) + "..."
		}
		out = append(out, fmt.Sprintf("%s %s %s", C(dim, idx), C(color, box), text))
	}
	return out
}

// GroupLines renders rows under Pending and Done headings.
func GroupLines(rows []Row) []string {
	t := Current()
	var pend, done []Row
	for _, r := range rows {
		if r.Todo.Completed {
			done = append(done, r)
		} else {
			pend = append(pend, r)
		}
	}
	section := func(title string, rs []Row) []string {
		lines := []string{C(t.Accent, title)}
		if len(rs) == 0 {
			return append(lines, C(t.Muted, "(none)"))
		}
		return append(lines, FlatLines(rs)...)
	}
	lines := section("Pending", pend)
	lines = append(lines, "")
	return append(lines, section("Done", done)...)
}

// ListPanel assembles the full `ls` panel.
func ListPanel(all []model.Todo, f model.Filter, group bool, q *quote.State) []string {
	var done, pending int
	for _, td := range all {
		if td.Completed {
			done++
		} else {
			pending++
		}
	}

	var lines []string
	if q != nil {
		lines = append(lines, QuoteLine(*q), "")
	}
	lines = append(lines, Header(done, pending))
	lines = append(lines, C(Current().Muted, ProgressBar(done, done+pending, 28)))
	lines = append(lines, FilterBar(f), "")

	rows := Rows(all, f)
	if group {
		lines = append(lines, GroupLines(rows)...)
	} else {
		lines = append(lines, FlatLines(rows)...)
	}
	lines = append(lines, "")
	lines = append(lines, C(Current().Muted, "Tip: add with `tada add \"Buy milk\"`"))
	return lines
}
