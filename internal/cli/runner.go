package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/log"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/quote"
	"github.com/Makepad-fr/tada/internal/todo"
	"github.com/Makepad-fr/tada/internal/tui"
	"github.com/Makepad-fr/tada/internal/ui"
)

// Run parses root flags, loads configuration and dispatches the subcommand.
// It returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("tada", flag.ContinueOnError)
	fs.SetOutput(ui.Stderr())
	fs.Usage = PrintHelp

	cfg, err := config.Load(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		ui.Fail(err.Error())
		return 2
	}
	ui.SetTheme(cfg.Theme)
	ui.SetColorForcing(os.Getenv("FORCE_COLOR") != "", os.Getenv("NO_COLOR") != "")

	rest := fs.Args()
	if len(rest) == 0 {
		PrintHelp()
		return 2
	}
	cmd, a := rest[0], rest[1:]

	closeLog, err := setupLogging(cfg, cmd == "ui")
	if err != nil {
		ui.Fail("log: " + err.Error())
		return 1
	}
	defer closeLog()
	log.Debug().Str("cmd", cmd).Str("backend", cfg.Backend).Str("data", cfg.DataFile).Msg("starting")

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp()
		return 0

	case "config":
		ui.Panel(cfg.Describe())
		return 0

	case "quote":
		return doQuote(ctx, cfg)

	case "ls":
		f := model.FilterAll
		if len(a) > 1 {
			ui.Fail("usage: tada ls [all|active|completed]")
			return 2
		}
		if len(a) == 1 {
			if f, err = model.ParseFilter(a[0]); err != nil {
				ui.Fail("ls: " + err.Error())
				return 2
			}
		}
		return withStore(ctx, cfg, func(s *todo.Store) int { return doList(s, f, cfg.Group) })

	case "add":
		if len(a) == 0 {
			ui.Fail("usage: tada add <text...>")
			return 2
		}
		text := strings.Join(a, " ")
		return withStore(ctx, cfg, func(s *todo.Store) int { return doAdd(s, text) })

	case "done":
		n, code := indexArg("done", a)
		if code != 0 {
			return code
		}
		return withStore(ctx, cfg, func(s *todo.Store) int { return doToggle(s, n) })

	case "rm":
		n, code := indexArg("rm", a)
		if code != 0 {
			return code
		}
		return withStore(ctx, cfg, func(s *todo.Store) int { return doRemove(s, n) })

	case "ui":
		return withStore(ctx, cfg, func(s *todo.Store) int { return doUI(ctx, cfg, s) })
	}

	ui.Fail("unknown subcommand: " + cmd)
	fmt.Fprintln(ui.Stderr())
	PrintHelp()
	return 2
}

func PrintHelp() {
	fmt.Fprintf(ui.Stdout(), `tada - a tiny to-do list

Usage:
  tada [flags] <subcommand> [args]

Subcommands:
  add <text...>                 Add a new item (text can be multiple words)
  ls [all|active|completed]     List items, optionally filtered
  done <index>                  Toggle done for item at 1-based index
  rm <index>                    Remove item at 1-based index
  ui                            Interactive list with a quote of the day
  quote                         Print a random quote
  config                        Show the effective configuration

Flags:
  -data <path>          data file (default ./tada.json, ./tada.db for sqlite)
  -backend json|sqlite  storage backend
  -group                group ls output by pending/done
  -theme classic|neon|mono
  -no-quote             do not fetch a quote in the ui
  -quote-url <url>      quote endpoint
  -quote-timeout <sec>  quote request timeout (0 = none)
  -log-level <level>    debug, info, warn, error, off
  -log-file <path>      write logs to a file

Examples:
  tada add "Buy milk"
  tada ls active
  tada done 2
  tada rm 3
`)
}

func indexArg(cmd string, a []string) (int, int) {
	if len(a) != 1 {
		ui.Fail(fmt.Sprintf("usage: tada %s <index>", cmd))
		return 0, 2
	}
	n, err := strconv.Atoi(a[0])
	if err != nil {
		ui.Fail(cmd + ": not a number: " + a[0])
		return 0, 2
	}
	return n, 0
}

// withStore opens the configured backend, hydrates the store and runs fn.
func withStore(ctx context.Context, cfg *config.Config, fn func(*todo.Store) int) int {
	kv, err := openKV(ctx, cfg)
	if err != nil {
		ui.Fail("open: " + err.Error())
		return 1
	}
	defer kv.Close()
	return fn(todo.Open(ctx, kv))
}

// -------------- subcommand impls ----------------

func doList(s *todo.Store, f model.Filter, group bool) int {
	s.SetFilter(f)
	ui.Panel(ui.ListPanel(s.All(), s.Filter(), group, nil))
	return 0
}

func doAdd(s *todo.Store, text string) int {
	td, ok := s.Add(text)
	if !ok {
		ui.Fail("nothing to add")
		return 2
	}
	if err := s.Err(); err != nil {
		ui.Fail("save: " + err.Error())
		return 1
	}
	ui.OK(fmt.Sprintf("added #%d", s.Len()))
	log.Info().Int64("id", td.ID).Msg("todo added")
	return 0
}

// byIndex resolves a 1-based index from `ls` to a todo.
func byIndex(s *todo.Store, userIndex int) (model.Todo, bool) {
	all := s.All()
	if userIndex < 1 || userIndex > len(all) {
		ui.Fail(fmt.Sprintf("index out of range: have %d, got %d", len(all), userIndex))
		ui.Hint("Hint: run `tada ls` to see valid indexes")
		return model.Todo{}, false
	}
	return all[userIndex-1], true
}

func doToggle(s *todo.Store, userIndex int) int {
	td, ok := byIndex(s, userIndex)
	if !ok {
		return 2
	}
	s.Toggle(td.ID)
	if err := s.Err(); err != nil {
		ui.Fail("save: " + err.Error())
		return 1
	}
	if td.Completed {
		ui.OK("reopened: " + td.Text)
	} else {
		ui.OK("done: " + td.Text)
	}
	return 0
}

func doRemove(s *todo.Store, userIndex int) int {
	td, ok := byIndex(s, userIndex)
	if !ok {
		return 2
	}
	s.Delete(td.ID)
	if err := s.Err(); err != nil {
		ui.Fail("save: " + err.Error())
		return 1
	}
	ui.OK("removed: " + td.Text)
	return 0
}

func doQuote(ctx context.Context, cfg *config.Config) int {
	f := newFetcher(cfg)
	defer f.Close()
	st := f.Fetch(ctx)
	if st.Status != quote.Success {
		ui.Fail(st.String())
		return 1
	}
	fmt.Fprintln(ui.Stdout(), ui.QuoteLine(st))
	return 0
}

func doUI(ctx context.Context, cfg *config.Config, s *todo.Store) int {
	var f *quote.Fetcher
	if !cfg.NoQuote {
		f = newFetcher(cfg)
	}
	if err := tui.Run(ctx, s, f); err != nil {
		ui.Fail("tui: " + err.Error())
		return 1
	}
	if err := s.Err(); err != nil {
		ui.Fail("last save failed: " + err.Error())
		return 1
	}
	return 0
}
