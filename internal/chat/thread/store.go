package thread

import (
	"context"
	"errors"
	"fmt"

	"github.com/picatz/chatcli/internal/chat/storage"
)

// ErrNotFound is returned by Store.Load for an unknown thread id.
var ErrNotFound = errors.New("thread not found")

// Store persists threads in a storage backend, keyed by thread id.
type Store struct {
	backend storage.Backend[string, Thread]
}

// NewStore returns a store over the given backend.
func NewStore(backend storage.Backend[string, Thread]) *Store {
	return &Store{backend: backend}
}

// Create returns a new empty thread. It does not write to the backend;
// the caller persists the thread after its first successful exchange.
func (s *Store) Create() Thread {
	return New()
}

// Save persists the thread under its id, overwriting any previous
// record for that id.
func (s *Store) Save(ctx context.Context, t Thread) error {
	if err := s.backend.Set(ctx, t.ID, t); err != nil {
		return fmt.Errorf("failed to save thread %q: %w", t.ID, err)
	}

	if err := s.backend.Flush(ctx); err != nil {
		return fmt.Errorf("failed to flush thread store: %w", err)
	}

	return nil
}

// Load reads the thread with the given id. It returns [ErrNotFound]
// when no record exists, and a decode error when a record exists but
// is malformed; a corrupt record is never silently treated as empty.
func (s *Store) Load(ctx context.Context, id string) (Thread, error) {
	t, found, err := s.backend.Get(ctx, id)
	if err != nil {
		return Thread{}, fmt.Errorf("failed to load thread %q: %w", id, err)
	}
	if !found {
		return Thread{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return t, nil
}

// LoadAll returns every readable thread in the backend. Corrupt
// records are skipped (the backend logs a warning for each); the order
// is the backend's enumeration order and is only meaningful for
// display.
func (s *Store) LoadAll(ctx context.Context) ([]Thread, error) {
	var threads []Thread

	var pageToken *string
	for {
		entries, next, err := s.backend.List(ctx, nil, pageToken)
		if err != nil {
			return nil, fmt.Errorf("failed to list threads: %w", err)
		}

		for _, t := range entries {
			threads = append(threads, t)
		}

		if next == nil {
			break
		}
		pageToken = next
	}

	return threads, nil
}
