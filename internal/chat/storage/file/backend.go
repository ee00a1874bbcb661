// Package file implements a storage backend that keeps every value in
// its own file, named by its key, under a single directory. Records
// stay plain JSON on disk so users can inspect them directly.
package file

import (
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/picatz/chatcli/internal/chat/storage"
)

// Ensure that Backend implements the storage.Backend interface.
var _ storage.Backend[string, any] = (*Backend[any])(nil)

// Backend is a storage backend that uses one file per key under a
// directory. Keys are used verbatim as file names and must therefore
// be filename-safe; the codec's key methods are unused.
//
// Writes go through a temporary file followed by a rename, so a crash
// mid-write never leaves a truncated record visible under the final
// name. There is no cross-process locking: two simultaneous writers of
// the same key race with last-writer-wins semantics.
type Backend[V any] struct {
	dir   string
	warn  io.Writer
	codec storage.Codec[string, V]
}

// NewBackend creates a new file storage backend rooted at dir.
//
// The directory is created on the first write, not here. Decode
// warnings during List are written to warn, defaulting to stderr.
func NewBackend[V any](dir string, warn io.Writer, codec storage.Codec[string, V]) *Backend[V] {
	if warn == nil {
		warn = os.Stderr
	}
	return &Backend[V]{dir: dir, warn: warn, codec: codec}
}

func (b *Backend[V]) path(key string) string {
	return filepath.Join(b.dir, key)
}

// Get retrieves a value from the storage backend by its key.
//
// A missing file is reported as not found with a nil error; a file
// that exists but fails to decode is reported as an error, so callers
// can tell an absent record from a corrupt one.
func (b *Backend[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V

	data, err := os.ReadFile(b.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return zero, false, nil
		}
		return zero, false, fmt.Errorf("failed to read %q: %w", key, err)
	}

	value, err := b.codec.DecodeValue(data)
	if err != nil {
		return zero, false, fmt.Errorf("failed to decode %q: %w", key, err)
	}

	return value, true, nil
}

// Set stores a key-value pair in the storage backend, creating the
// directory if needed. The value is written to a temporary file in the
// same directory and renamed into place.
func (b *Backend[V]) Set(ctx context.Context, key string, value V) error {
	data, err := b.codec.EncodeValue(value)
	if err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}

	if err := os.MkdirAll(b.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create directory %q: %w", b.dir, err)
	}

	tmp, err := os.CreateTemp(b.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %q: %w", key, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temporary file for %q: %w", key, err)
	}

	if err := os.Rename(tmp.Name(), b.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to rename temporary file for %q: %w", key, err)
	}

	return nil
}

// Delete removes a key-value pair from the storage backend. Deleting
// a key that does not exist is not an error.
func (b *Backend[V]) Delete(ctx context.Context, key string) error {
	if err := os.Remove(b.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

// DefaultListPageSize is the default page size for listing items.
const DefaultListPageSize = 25

// List retrieves key-value pairs from the storage backend in directory
// enumeration order (lexical by key on most platforms, but callers
// should not depend on the order for correctness, only display).
//
// Entries that fail to decode are skipped with a warning rather than
// aborting the whole listing, so one corrupt record does not hide the
// rest.
func (b *Backend[V]) List(ctx context.Context, pageSize *int, pageToken *string) (iter.Seq2[string, V], *string, error) {
	dirEntries, err := os.ReadDir(b.dir)
	if err != nil {
		if os.IsNotExist(err) {
			// No directory yet means no entries, not a failure.
			return func(yield func(string, V) bool) {}, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to read directory %q: %w", b.dir, err)
	}

	listLimit := DefaultListPageSize
	if pageSize != nil {
		listLimit = *pageSize
	}

	var (
		values        []storage.Entry[string, V]
		nextPageToken *string
		skipping      = pageToken != nil
	)

	for _, dirEntry := range dirEntries {
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("stopped iteration via context: %w", err)
		}

		name := dirEntry.Name()
		if dirEntry.IsDir() || strings.HasPrefix(name, ".") {
			continue // in-flight temporary files and the like
		}

		if skipping {
			if name != *pageToken {
				continue
			}
			skipping = false
		}

		if len(values) >= listLimit {
			nextPageToken = &name
			break
		}

		data, err := os.ReadFile(filepath.Join(b.dir, name))
		if err != nil {
			fmt.Fprintf(b.warn, "warning: skipping unreadable record %q: %s\n", name, err)
			continue
		}

		value, err := b.codec.DecodeValue(data)
		if err != nil {
			fmt.Fprintf(b.warn, "warning: skipping corrupt record %q: %s\n", name, err)
			continue
		}

		values = append(values, storage.Entry[string, V]{Key: name, Value: value})
	}

	return func(yield func(string, V) bool) {
		for _, v := range values {
			if !yield(v.Key, v.Value) {
				break
			}
		}
	}, nextPageToken, nil
}

// Flush is a no-op: every Set is renamed into place immediately.
func (b *Backend[V]) Flush(ctx context.Context) error {
	return nil
}

// Close is a no-op for the file backend.
func (b *Backend[V]) Close(ctx context.Context) error {
	return nil
}
