// Package cli tests the subcommand dispatcher end to end.
package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Makepad-fr/tada/internal/store/jsonstore"
	"github.com/Makepad-fr/tada/internal/todo"
	"github.com/Makepad-fr/tada/internal/ui"
)

type env struct {
	data string
	out  *bytes.Buffer
	err  *bytes.Buffer
}

func setup(t *testing.T) *env {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())
	for _, k := range []string{"TADA_DATA", "TADA_BACKEND", "TADA_QUOTE_URL", "TADA_QUOTE_TIMEOUT",
		"TADA_NO_QUOTE", "TADA_THEME", "TADA_LOG_LEVEL", "TADA_LOG_FILE"} {
		t.Setenv(k, "")
	}
	e := &env{
		data: filepath.Join(t.TempDir(), "tada.json"),
		out:  &bytes.Buffer{},
		err:  &bytes.Buffer{},
	}
	ui.SetOutput(e.out, e.err)
	t.Cleanup(func() {
		ui.SetOutput(os.Stdout, os.Stderr)
		ui.SetTheme("classic")
	})
	return e
}

func (e *env) run(args ...string) int {
	e.out.Reset()
	e.err.Reset()
	full := append([]string{"-data", e.data, "-theme", "mono", "-log-level", "off"}, args...)
	return Run(context.Background(), full)
}

func (e *env) texts(t *testing.T) []string {
	t.Helper()
	kv, err := jsonstore.Open(e.data)
	if err != nil {
		t.Fatal(err)
	}
	var out []string
	for _, td := range todo.Open(context.Background(), kv).All() {
		mark := " "
		if td.Completed {
			mark = "x"
		}
		out = append(out, mark+td.Text)
	}
	return out
}

func TestRunUsage(t *testing.T) {
	e := setup(t)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no subcommand", nil, 2},
		{"help", []string{"help"}, 0},
		{"help flag", []string{"-h"}, 0},
		{"unknown", []string{"frobnicate"}, 2},
		{"add without text", []string{"add"}, 2},
		{"done without index", []string{"done"}, 2},
		{"rm not a number", []string{"rm", "two"}, 2},
		{"ls bad filter", []string{"ls", "later"}, 2},
		{"ls too many args", []string{"ls", "all", "active"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.run(tt.args...); got != tt.want {
				t.Errorf("exit code = %d, want %d (stderr %q)", got, tt.want, e.err.String())
			}
		})
	}
}

func TestAddDoneRmFlow(t *testing.T) {
	e := setup(t)

	if code := e.run("add", "buy", "milk"); code != 0 {
		t.Fatalf("add: %d %s", code, e.err.String())
	}
	if code := e.run("add", "  call mom  "); code != 0 {
		t.Fatalf("add: %d", code)
	}
	if code := e.run("add", "   "); code != 2 {
		t.Errorf("blank add: exit %d, want 2", code)
	}
	if got := strings.Join(e.texts(t), "|"); got != " buy milk| call mom" {
		t.Fatalf("after add: %q", got)
	}

	if code := e.run("done", "1"); code != 0 {
		t.Fatalf("done: %d", code)
	}
	if got := strings.Join(e.texts(t), "|"); got != "xbuy milk| call mom" {
		t.Fatalf("after done: %q", got)
	}

	if code := e.run("ls", "active"); code != 0 {
		t.Fatalf("ls: %d", code)
	}
	if out := e.out.String(); strings.Contains(out, "buy milk") || !strings.Contains(out, " 2. [ ] call mom") {
		t.Errorf("ls active:\n%s", out)
	}

	if code := e.run("ls", "completed"); code != 0 || !strings.Contains(e.out.String(), " 1. [x] buy milk") {
		t.Errorf("ls completed:\n%s", e.out.String())
	}

	if code := e.run("done", "7"); code != 2 {
		t.Errorf("done out of range: exit %d, want 2", code)
	}
	if !strings.Contains(e.err.String(), "index out of range") {
		t.Errorf("stderr = %q", e.err.String())
	}

	if code := e.run("rm", "1"); code != 0 {
		t.Fatalf("rm: %d", code)
	}
	if got := strings.Join(e.texts(t), "|"); got != " call mom" {
		t.Errorf("after rm: %q", got)
	}
}

func TestSQLiteBackend(t *testing.T) {
	e := setup(t)
	db := filepath.Join(t.TempDir(), "tada.db")

	args := func(a ...string) []string {
		return append([]string{"-backend", "sqlite", "-data", db, "-theme", "mono", "-log-level", "off"}, a...)
	}
	if code := Run(context.Background(), args("add", "water plants")); code != 0 {
		t.Fatalf("add: %d %s", code, e.err.String())
	}
	e.out.Reset()
	if code := Run(context.Background(), args("ls")); code != 0 {
		t.Fatalf("ls: %d", code)
	}
	if !strings.Contains(e.out.String(), "water plants") {
		t.Errorf("ls:\n%s", e.out.String())
	}
}

func TestMalformedDataStartsEmpty(t *testing.T) {
	e := setup(t)
	if err := os.WriteFile(e.data, []byte(`{"todos":"[{\"id\":\"nope\"}]"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if code := e.run("ls"); code != 0 {
		t.Fatalf("ls: %d %s", code, e.err.String())
	}
	if !strings.Contains(e.out.String(), "no items") {
		t.Errorf("ls:\n%s", e.out.String())
	}
	if code := e.run("add", "fresh start"); code != 0 {
		t.Fatalf("add: %d", code)
	}
	if got := e.texts(t); len(got) != 1 {
		t.Errorf("todos = %v", got)
	}
}

func TestQuoteCommand(t *testing.T) {
	e := setup(t)

	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":"Well begun is half done.","author":"Aristotle"}`))
	}))
	defer ok.Close()
	if code := e.run("-quote-url", ok.URL, "quote"); code != 0 {
		t.Fatalf("quote: %d %s", code, e.err.String())
	}
	if !strings.Contains(e.out.String(), "Aristotle") {
		t.Errorf("stdout = %q", e.out.String())
	}

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()
	if code := e.run("-quote-url", broken.URL, "quote"); code != 1 {
		t.Errorf("failed quote: exit %d, want 1", code)
	}
	if !strings.Contains(e.err.String(), "Failed to fetch quote") {
		t.Errorf("stderr = %q", e.err.String())
	}
}

func TestConfigCommand(t *testing.T) {
	e := setup(t)
	if code := e.run("config"); code != 0 {
		t.Fatalf("config: %d", code)
	}
	out := e.out.String()
	if !strings.Contains(out, "backend") || !strings.Contains(out, "(flag)") {
		t.Errorf("config output:\n%s", out)
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
