package thread

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Active tracks the most recently used thread id in a plain-text
// marker file. It is a weak reference: the marker may name a thread
// that no longer exists, which readers must treat as absent.
type Active struct {
	// Path is the marker file location.
	Path string
}

// Get returns the active thread id, or ok=false when the marker file
// is missing or blank after trimming whitespace.
func (a Active) Get() (string, bool, error) {
	data, err := os.ReadFile(a.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read active thread marker: %w", err)
	}

	id := strings.TrimSpace(string(data))
	if id == "" {
		return "", false, nil
	}

	return id, true, nil
}

// Set overwrites the marker with id, creating parent directories as
// needed. No history is kept.
func (a Active) Set(id string) error {
	dir := filepath.Dir(a.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create directory %q: %w", dir, err)
	}

	if err := os.WriteFile(a.Path, []byte(id+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write active thread marker: %w", err)
	}

	return nil
}

// ResolveOrCreate decides which thread an exchange operates on.
//
// If the marker names a thread that loads successfully and interactive
// is true, the user is offered a choice on in/out: any input other
// than a literal case-insensitive "n" continues the active thread,
// while "n" starts a fresh one. When the marker is absent, or names a
// thread that fails to load (missing or corrupt, reported as a warning
// on out), a new thread is created unconditionally.
//
// Neither a newly created thread nor the marker is persisted here: the
// caller saves the thread and moves the marker only after a successful
// exchange. A fresh thread abandoned before that point simply never
// becomes observable.
func ResolveOrCreate(ctx context.Context, store *Store, active Active, interactive bool, in *bufio.Reader, out io.Writer) (Thread, error) {
	id, ok, err := active.Get()
	if err != nil {
		return Thread{}, err
	}

	if !ok {
		return store.Create(), nil
	}

	current, err := store.Load(ctx, id)
	if err != nil {
		// Dangling or corrupt marker target: degrade to a fresh
		// thread rather than failing the whole command.
		fmt.Fprintf(out, "warning: active thread unavailable, starting fresh: %s\n", err)
		return store.Create(), nil
	}

	if !interactive {
		return current, nil
	}

	fmt.Fprintf(out, "Continue last conversation (%d messages)? ([y]/n): ", len(current.Messages))

	answer, err := in.ReadString('\n')
	if err != nil && answer == "" && err != io.EOF {
		return Thread{}, fmt.Errorf("failed to read choice: %w", err)
	}

	if strings.EqualFold(strings.TrimSpace(answer), "n") {
		return store.Create(), nil
	}

	return current, nil
}
