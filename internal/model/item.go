package model

import (
	"fmt"
	"strings"
)

// Todo is the domain model for a todo entry.
// ID and Text are fixed at creation; only Completed changes afterwards.
type Todo struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Filter names a view over the collection. It never changes stored data.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// Filters lists the views in display order.
var Filters = []Filter{FilterAll, FilterActive, FilterCompleted}

// ParseFilter accepts the three view names, case-insensitively.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterAll, FilterActive, FilterCompleted:
		return f, nil
	}
	return "", fmt.Errorf("unknown filter %q (want all, active or completed)", s)
}

// Keep reports whether t belongs to the view.
func (f Filter) Keep(t Todo) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Next cycles all -> active -> completed -> all.
func (f Filter) Next() Filter {
	for i, v := range Filters {
		if v == f {
			return Filters[(i+1)%len(Filters)]
		}
	}
	return FilterAll
}

// Quote is a read-only, externally sourced quotation.
type Quote struct {
	Content string `json:"content"`
	Author  string `json:"author"`
}
