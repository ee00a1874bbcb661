// Package tests holds a backend-agnostic test suite shared by the
// storage backend implementations.
package tests

import (
	"iter"
	"testing"

	"github.com/picatz/chatcli"
	"github.com/picatz/chatcli/internal/chat/storage"
	"github.com/shoenig/test/must"
)

// collect drains a List iterator into a map.
func collect[K comparable, V any](entries iter.Seq2[K, V]) map[K]V {
	out := map[K]V{}
	for key, value := range entries {
		out[key] = value
	}
	return out
}

// BackendSuite tests a backend implementation of the storage package, using
// the provided backend instance to perform the tests.
//
// Listing order is backend-specific (insertion order, lexical, etc.), so the
// suite only asserts pagination invariants: a full first page, a page token,
// and a disjoint second page covering the rest.
func BackendSuite(t *testing.T, backend storage.Backend[string, string]) {
	t.Helper()

	err := backend.Set(t.Context(), "hello", "world")
	must.NoError(t, err)

	value, ok, err := backend.Get(t.Context(), "hello")
	must.NoError(t, err)
	must.True(t, ok)
	must.Eq(t, "world", value)

	err = backend.Set(t.Context(), "hello again", "world2")
	must.NoError(t, err)

	value, ok, err = backend.Get(t.Context(), "hello again")
	must.NoError(t, err)
	must.True(t, ok)
	must.Eq(t, "world2", value)

	_, ok, err = backend.Get(t.Context(), "nope")
	must.NoError(t, err)
	must.False(t, ok)

	entries, next, err := backend.List(t.Context(), storage.PageSize(1), nil)
	must.NoError(t, err)
	must.NotNil(t, next)

	firstPage := collect(entries)
	must.MapLen(t, 1, firstPage)

	entries, next, err = backend.List(t.Context(), nil, next)
	must.NoError(t, err)
	must.Nil(t, next)

	secondPage := collect(entries)
	must.MapLen(t, 1, secondPage)

	seen := map[string]string{}
	for k, v := range firstPage {
		seen[k] = v
	}
	for k, v := range secondPage {
		_, dup := seen[k]
		must.False(t, dup)
		seen[k] = v
	}
	must.Eq(t, map[string]string{"hello": "world", "hello again": "world2"}, seen)

	err = backend.Delete(t.Context(), "hello")
	must.NoError(t, err)

	_, ok, err = backend.Get(t.Context(), "hello")
	must.NoError(t, err)
	must.False(t, ok)

	err = backend.Flush(t.Context())
	must.NoError(t, err)
}

// BackendSuiteChatMessages exercises a backend with chat message values,
// the shape the application actually persists.
func BackendSuiteChatMessages(t *testing.T, b storage.Backend[string, chatcli.ChatMessage]) {
	t.Helper()

	firstKey := "hello"
	secondKey := "hello again"

	firstMessage := chatcli.ChatMessage{Role: chatcli.ChatRoleUser, Content: "world"}
	secondMessage := chatcli.ChatMessage{Role: chatcli.ChatRoleAssistant, Content: "world2"}

	err := b.Set(t.Context(), firstKey, firstMessage)
	must.NoError(t, err)

	value, ok, err := b.Get(t.Context(), firstKey)
	must.NoError(t, err)
	must.True(t, ok)
	must.Eq(t, firstMessage, value)

	err = b.Set(t.Context(), secondKey, secondMessage)
	must.NoError(t, err)

	value, ok, err = b.Get(t.Context(), secondKey)
	must.NoError(t, err)
	must.True(t, ok)
	must.Eq(t, secondMessage, value)

	entries, _, err := b.List(t.Context(), nil, nil)
	must.NoError(t, err)

	all := collect(entries)
	must.MapLen(t, 2, all)
	must.Eq(t, firstMessage, all[firstKey])
	must.Eq(t, secondMessage, all[secondKey])
}
