package tui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/quote"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
	"github.com/Makepad-fr/tada/internal/todo"
)

func newStore(t *testing.T) *todo.Store {
	t.Helper()
	kv, err := jsonstore.Open(filepath.Join(t.TempDir(), "tada.json"))
	if err != nil {
		t.Fatal(err)
	}
	return todo.Open(context.Background(), kv, todo.WithLogger(zerolog.Nop()))
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// send feeds msgs through Update and returns the resulting model.
func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		if !ok {
			t.Fatalf("Update returned %T", next)
		}
	}
	return m
}

func typeText(s string) []tea.Msg {
	msgs := []tea.Msg{runes("a")}
	for _, r := range s {
		msgs = append(msgs, runes(string(r)))
	}
	return append(msgs, tea.KeyMsg{Type: tea.KeyEnter})
}

func TestAddToggleFilterDelete(t *testing.T) {
	s := newStore(t)
	m := New(context.Background(), s, nil)
	m = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	m = send(t, m, typeText("buy milk")...)
	if m.adding {
		t.Fatal("add form should close after a successful add")
	}
	all := s.All()
	if len(all) != 1 || all[0].Text != "buy milk" || all[0].Completed {
		t.Fatalf("store after add: %+v", all)
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if !s.All()[0].Completed {
		t.Fatal("space should toggle the selected todo")
	}

	m = send(t, m, runes("2"))
	if s.Filter() != model.FilterActive || len(m.list.Items()) != 0 {
		t.Errorf("active view: filter %s, %d items", s.Filter(), len(m.list.Items()))
	}
	m = send(t, m, runes("3"))
	if len(m.list.Items()) != 1 {
		t.Errorf("completed view: %d items", len(m.list.Items()))
	}

	m = send(t, m, runes("d"))
	if s.Len() != 0 || len(m.list.Items()) != 0 {
		t.Errorf("after delete: store %d, list %d", s.Len(), len(m.list.Items()))
	}
}

func TestBlankAddIsIgnored(t *testing.T) {
	s := newStore(t)
	m := New(context.Background(), s, nil)
	m = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	m = send(t, m, typeText("   ")...)
	if s.Len() != 0 {
		t.Errorf("blank add stored %+v", s.All())
	}
	if !m.adding {
		t.Error("add form should stay open on blank input")
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.adding {
		t.Error("esc should close the add form")
	}
}

func TestTabCyclesViews(t *testing.T) {
	s := newStore(t)
	m := New(context.Background(), s, nil)
	want := []model.Filter{model.FilterActive, model.FilterCompleted, model.FilterAll}
	for _, f := range want {
		m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
		if s.Filter() != f {
			t.Errorf("after tab: %s, want %s", s.Filter(), f)
		}
	}
}

func TestQuoteMsgTransitionsOnce(t *testing.T) {
	s := newStore(t)
	f := quote.New("http://127.0.0.1:0", quote.WithLogger(zerolog.Nop()))
	m := New(context.Background(), s, f)
	m = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	if !strings.Contains(m.View(), quote.LoadingText) {
		t.Error("view should show the loading text before the quote settles")
	}

	ok := quote.State{Status: quote.Success, Quote: model.Quote{Content: "Stay hungry", Author: "S. Brand"}}
	m = send(t, m, quoteMsg{state: ok})
	if m.quote.Status != quote.Success {
		t.Fatalf("status = %s", m.quote.Status)
	}

	m = send(t, m, quoteMsg{state: quote.State{Status: quote.Failure, Message: quote.FetchFailed}})
	if m.quote.Status != quote.Success {
		t.Error("a terminal quote state must not change")
	}
	if v := m.View(); !strings.Contains(v, "Stay hungry") || strings.Contains(v, quote.FetchFailed) {
		t.Errorf("view:\n%s", v)
	}
}

func TestQuoteFailureFromServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := newStore(t)
	f := quote.New(srv.URL, quote.WithLogger(zerolog.Nop()))
	m := New(context.Background(), s, f)

	msg := fetchQuote(context.Background(), f)()
	m = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 24}, msg)
	if m.quote.Status != quote.Failure || m.quote.Message == "" {
		t.Fatalf("quote = %+v", m.quote)
	}
	if !strings.Contains(m.View(), quote.FetchFailed) {
		t.Error("view should show the failure message")
	}

	// the list keeps working after a failed fetch
	m = send(t, m, typeText("still usable")...)
	if s.Len() != 1 {
		t.Errorf("store len = %d", s.Len())
	}
}

func TestQuitClosesFetcher(t *testing.T) {
	s := newStore(t)
	f := quote.New("http://127.0.0.1:0", quote.WithLogger(zerolog.Nop()))
	m := New(context.Background(), s, f)

	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q should return a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
	// closed before the first fetch: no request, still loading
	if st := f.Fetch(context.Background()); st.Status != quote.Loading {
		t.Errorf("fetch after quit = %+v", st)
	}
}

func TestNoQuotePanelWithoutFetcher(t *testing.T) {
	m := New(context.Background(), newStore(t), nil)
	if m.Init() != nil {
		t.Error("Init should not fetch without a fetcher")
	}
	m = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	if strings.Contains(m.View(), quote.LoadingText) {
		t.Error("quote panel rendered without a fetcher")
	}
}
