package file_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/picatz/chatcli"
	"github.com/picatz/chatcli/internal/chat/storage"
	backendFile "github.com/picatz/chatcli/internal/chat/storage/file"
	"github.com/picatz/chatcli/internal/chat/storage/tests"
	"github.com/shoenig/test/must"
)

func TestBackend(t *testing.T) {
	b := backendFile.NewBackend(t.TempDir(), nil, &storage.JSONCodec[string, string]{})
	tests.BackendSuite(t, b)
}

func TestBackend_chat_messages(t *testing.T) {
	b := backendFile.NewBackend(t.TempDir(), nil, &storage.JSONCodec[string, chatcli.ChatMessage]{})
	tests.BackendSuiteChatMessages(t, b)
}

func TestBackend_missing_dir(t *testing.T) {
	// A backend rooted at a directory that does not exist yet reads as
	// empty, and creates the directory on first write.
	dir := filepath.Join(t.TempDir(), "threads")
	b := backendFile.NewBackend(dir, nil, &storage.JSONCodec[string, string]{})

	_, ok, err := b.Get(t.Context(), "anything")
	must.NoError(t, err)
	must.False(t, ok)

	entries, next, err := b.List(t.Context(), nil, nil)
	must.NoError(t, err)
	must.Nil(t, next)
	for range entries {
		t.Fatal("expected no entries")
	}

	must.NoError(t, b.Set(t.Context(), "anything", "at all"))

	value, ok, err := b.Get(t.Context(), "anything")
	must.NoError(t, err)
	must.True(t, ok)
	must.Eq(t, "at all", value)
}

func TestBackend_corrupt_record(t *testing.T) {
	dir := t.TempDir()

	var warnings strings.Builder
	b := backendFile.NewBackend(dir, &warnings, &storage.JSONCodec[string, string]{})

	must.NoError(t, b.Set(t.Context(), "good", "value"))
	must.NoError(t, os.WriteFile(filepath.Join(dir, "bad"), []byte("{not json"), 0o600))

	// Get surfaces corruption as an error, distinct from not found.
	_, ok, err := b.Get(t.Context(), "bad")
	must.Error(t, err)
	must.False(t, ok)

	// List skips the corrupt record with a warning instead of failing.
	entries, _, err := b.List(t.Context(), nil, nil)
	must.NoError(t, err)

	var keys []string
	for key := range entries {
		keys = append(keys, key)
	}
	must.Eq(t, []string{"good"}, keys)
	must.StrContains(t, warnings.String(), "corrupt")
}

func TestBackend_atomic_write_leaves_no_temp_files(t *testing.T) {
	dir := t.TempDir()
	b := backendFile.NewBackend(dir, nil, &storage.JSONCodec[string, string]{})

	must.NoError(t, b.Set(t.Context(), "k", "v1"))
	must.NoError(t, b.Set(t.Context(), "k", "v2"))

	dirEntries, err := os.ReadDir(dir)
	must.NoError(t, err)
	must.Len(t, 1, dirEntries)
	must.Eq(t, "k", dirEntries[0].Name())

	value, ok, err := b.Get(t.Context(), "k")
	must.NoError(t, err)
	must.True(t, ok)
	must.Eq(t, "v2", value)
}
