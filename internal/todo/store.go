// Package todo holds the in-memory todo collection and keeps it in sync
// with a persistent key-value store.
package todo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Makepad-fr/tada/internal/log"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
)

// StorageKey is the key the whole collection is written under.
const StorageKey = "todos"

// Store is an ordered todo collection plus a transient view filter.
// It is owned by a single goroutine and is not safe for concurrent use.
type Store struct {
	kv     store.KV
	ctx    context.Context
	logger zerolog.Logger

	todos  []model.Todo
	filter model.Filter
	ids    idGen
	err    error
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.ids.now = now }
}

// WithLogger overrides the module logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open hydrates a Store from kv. Missing or unreadable data yields an
// empty collection; Open itself never fails.
func Open(ctx context.Context, kv store.KV, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		ctx:    ctx,
		logger: log.GetLogger("todo"),
		filter: model.FilterAll,
		ids:    idGen{now: time.Now},
		todos:  []model.Todo{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hydrate()
	return s
}

func (s *Store) hydrate() {
	b, err := s.kv.Get(s.ctx, StorageKey)
	if errors.Is(err, store.ErrNotFound) {
		return
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("read todos; starting empty")
		return
	}
	todos, err := Decode(b)
	if err != nil {
		s.logger.Warn().Err(err).Msg("stored todos are malformed; starting empty")
		return
	}
	for _, t := range todos {
		s.ids.observe(t.ID)
	}
	s.todos = todos
	s.logger.Debug().Int("count", len(todos)).Msg("todos loaded")
}

// persist writes the whole collection. Failures are logged and kept in
// Err but never interrupt the caller.
func (s *Store) persist() {
	b, err := Encode(s.todos)
	if err == nil {
		err = s.kv.Set(s.ctx, StorageKey, b)
	}
	s.err = err
	if err != nil {
		s.logger.Warn().Err(err).Msg("persist todos")
	}
}

// Add appends a todo with the trimmed text. Blank text is ignored.
func (s *Store) Add(text string) (model.Todo, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Todo{}, false
	}
	t := model.Todo{ID: s.ids.next(), Text: text}
	s.todos = append(s.todos, t)
	s.persist()
	return t, true
}

// Toggle flips Completed on the todo with id. Unknown ids are ignored.
func (s *Store) Toggle(id int64) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.todos[i].Completed = !s.todos[i].Completed
	s.persist()
	return true
}

// Delete removes the todo with id. Unknown ids are ignored.
func (s *Store) Delete(id int64) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.todos = append(s.todos[:i:i], s.todos[i+1:]...)
	s.persist()
	return true
}

func (s *Store) index(id int64) int {
	for i, t := range s.todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Get returns the todo with id.
func (s *Store) Get(id int64) (model.Todo, bool) {
	if i := s.index(id); i >= 0 {
		return s.todos[i], true
	}
	return model.Todo{}, false
}

// SetFilter changes the view. Not persisted.
func (s *Store) SetFilter(f model.Filter) { s.filter = f }

func (s *Store) Filter() model.Filter { return s.filter }

// Visible returns the todos kept by the current filter, in insertion order.
func (s *Store) Visible() []model.Todo {
	out := make([]model.Todo, 0, len(s.todos))
	for _, t := range s.todos {
		if s.filter.Keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// All returns a copy of the whole collection.
func (s *Store) All() []model.Todo {
	out := make([]model.Todo, len(s.todos))
	copy(out, s.todos)
	return out
}

func (s *Store) Len() int { return len(s.todos) }

// Stats counts completed and pending todos.
func (s *Store) Stats() (done, pending int) {
	for _, t := range s.todos {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}

// Err returns the last persistence failure, or nil after a successful write.
func (s *Store) Err() error { return s.err }
