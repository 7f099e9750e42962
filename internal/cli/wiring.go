package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/log"
	"github.com/Makepad-fr/tada/internal/quote"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
	"github.com/Makepad-fr/tada/internal/store/sqlitestore"
	"github.com/Makepad-fr/tada/internal/ui"
)

// openKV picks the storage backend named in cfg.
func openKV(ctx context.Context, cfg *config.Config) (store.KV, error) {
	switch cfg.Backend {
	case "sqlite":
		s, err := sqlitestore.Open(ctx, cfg.DataFile)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "json", "":
		s, err := jsonstore.Open(cfg.DataFile)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

func newFetcher(cfg *config.Config) *quote.Fetcher {
	client := &http.Client{Timeout: cfg.Timeout()}
	return quote.New(cfg.QuoteURL, quote.WithHTTPClient(client), quote.WithLogger(log.GetLogger("quote")))
}

// setupLogging points the global logger at log_file (JSON lines) or at
// stderr. The TUI owns the terminal, so without a log file it logs nowhere.
func setupLogging(cfg *config.Config, interactive bool) (func(), error) {
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		log.Setup(f, cfg.LogLevel, false)
		return func() { f.Close() }, nil
	}
	if interactive {
		log.Setup(io.Discard, cfg.LogLevel, false)
		return func() {}, nil
	}
	log.Setup(ui.Stderr(), cfg.LogLevel, true)
	return func() {}, nil
}
