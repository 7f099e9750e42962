// Package quote fetches one decorative quote per session.
package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Makepad-fr/tada/internal/log"
	"github.com/Makepad-fr/tada/internal/model"
)

const DefaultURL = "https://api.quotable.io/random"

// Messages shown in the quote panel.
const (
	LoadingText  = "Loading quote..."
	FetchFailed  = "Failed to fetch quote"
	DecodeFailed = "Failed to read quote"
)

// Status is the fetch state. Success and Failure are terminal.
type Status int

const (
	Loading Status = iota
	Success
	Failure
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "loading"
	}
}

// State is what the quote panel renders.
type State struct {
	Status  Status
	Quote   model.Quote
	Message string
}

func (s State) String() string {
	switch s.Status {
	case Success:
		return fmt.Sprintf("%q — %s", s.Quote.Content, s.Quote.Author)
	case Failure:
		return s.Message
	default:
		return LoadingText
	}
}

// Fetcher performs a single GET against url.
type Fetcher struct {
	url    string
	client *http.Client
	logger zerolog.Logger

	once   sync.Once
	mu     sync.Mutex
	state  State
	closed bool
	cancel context.CancelFunc
}

type Option func(*Fetcher)

func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

func WithLogger(l zerolog.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// New returns a Fetcher in the Loading state. An empty url means DefaultURL.
func New(url string, opts ...Option) *Fetcher {
	if url == "" {
		url = DefaultURL
	}
	f := &Fetcher{
		url:    url,
		client: http.DefaultClient,
		logger: log.GetLogger("quote"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// State returns the current state.
func (f *Fetcher) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Fetch issues the request on the first call and blocks until it settles.
// Later calls do not hit the network; they return the current state.
func (f *Fetcher) Fetch(ctx context.Context) State {
	f.once.Do(func() {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		f.mu.Lock()
		if f.closed {
			f.mu.Unlock()
			return
		}
		f.cancel = cancel
		f.mu.Unlock()

		st := f.get(ctx)

		f.mu.Lock()
		defer f.mu.Unlock()
		if f.closed {
			f.logger.Debug().Str("status", st.Status.String()).Msg("dropping quote result after close")
			return
		}
		f.state = st
	})
	return f.State()
}

// Close ends the session. An in-flight request is cancelled and its
// result discarded.
func (f *Fetcher) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	if f.cancel != nil {
		f.cancel()
	}
}

func (f *Fetcher) get(ctx context.Context) State {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		f.logger.Warn().Err(err).Str("url", f.url).Msg("build quote request")
		return failure(FetchFailed)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn().Err(err).Str("url", f.url).Msg("quote request failed")
		return failure(FetchFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		f.logger.Warn().Int("status", resp.StatusCode).Str("url", f.url).Msg("quote endpoint returned non-2xx")
		return failure(FetchFailed)
	}

	q, err := decodeQuote(resp.Body)
	if err != nil {
		f.logger.Warn().Err(err).Msg("decode quote")
		return failure(DecodeFailed)
	}
	f.logger.Debug().Str("author", q.Author).Msg("quote fetched")
	return State{Status: Success, Quote: q}
}

func decodeQuote(r io.Reader) (model.Quote, error) {
	var q model.Quote
	if err := json.NewDecoder(io.LimitReader(r, 1<<20)).Decode(&q); err != nil {
		return model.Quote{}, fmt.Errorf("json decode: %w", err)
	}
	q.Content = strings.TrimSpace(q.Content)
	q.Author = strings.TrimSpace(q.Author)
	if q.Content == "" || q.Author == "" {
		return model.Quote{}, errors.New("missing content or author")
	}
	return q, nil
}

func failure(msg string) State {
	return State{Status: Failure, Message: msg}
}
