package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Makepad-fr/tada/internal/store"
)

// JSON-backed storage. Single file, human-readable, portable.
// The file holds one object mapping keys to string values.
// No locking; fine for a local single-user CLI.

const DefaultFileName = "tada.json"

// Store is a store.KV over one JSON file.
type Store struct {
	path string
}

var _ store.KV = (*Store)(nil)

// Open returns a store rooted at path. An empty path means ./tada.json.
// The file is created lazily on the first Set.
func Open(path string) (*Store, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getwd: %w", err)
		}
		path = filepath.Join(wd, DefaultFileName)
	}
	return &Store{path: path}, nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

func (s *Store) load() (map[string]string, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	values := map[string]string{}
	if len(b) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(b, &values); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return values, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	values, err := s.load()
	if err != nil {
		return nil, err
	}
	v, ok := values[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return []byte(v), nil
}

// Set overwrites key. Other keys in the file are preserved; if the file
// is unreadable it is replaced.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	values, err := s.load()
	if err != nil {
		values = map[string]string{}
	}
	values[key] = string(value)

	b, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return nil }
