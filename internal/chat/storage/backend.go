package storage

import (
	"context"
	"iter"
)

// Entry is a single key-value pair held by a storage backend.
type Entry[K, V any] struct {
	Key   K
	Value V
}

// Backend is a pluggable key-value store used to persist conversation
// state. Implementations must distinguish a missing key (found=false,
// nil error) from a key whose stored bytes cannot be decoded (an error),
// so callers can treat the two differently.
type Backend[K, V any] interface {
	Get(ctx context.Context, key K) (value V, found bool, err error)
	Set(ctx context.Context, key K, value V) error
	Delete(ctx context.Context, key K) error
	List(ctx context.Context, pageSize *int, pageToken *K) (entries iter.Seq2[K, V], nextPageToken *K, err error)
	Flush(ctx context.Context) error
	Close(ctx context.Context) error
}

func ptr[T any](v T) *T {
	return &v
}

// PageSize returns a page size pointer for Backend.List calls.
func PageSize(pageSize int) *int {
	return ptr(pageSize)
}

// PageToken returns a page token pointer for Backend.List calls.
func PageToken[T any](pageToken T) *T {
	return ptr(pageToken)
}
