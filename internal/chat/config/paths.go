package config

import (
	"cmp"
	"os"
	"path/filepath"
)

// DefaultRoot returns the default state root for the tool, a dot
// directory under the user's home.
//
// On Unix-like systems it is ~/.chatcli, and on Windows it is
// %USERPROFILE%/.chatcli, the common locations for user-specific
// configuration files.
func DefaultRoot() string {
	return filepath.Join(cmp.Or(os.Getenv("HOME"), os.Getenv("USERPROFILE")), ".chatcli")
}

// Paths resolves the on-disk locations for everything the tool
// persists, relative to a single root directory. It is a pure function
// of the root: nothing here touches the filesystem, which keeps tests
// hermetic by pointing the root at a temporary directory.
type Paths struct {
	// Root is the state root directory.
	Root string
}

// NewPaths returns Paths rooted at root, falling back to
// [DefaultRoot] when root is empty.
func NewPaths(root string) Paths {
	return Paths{Root: cmp.Or(root, DefaultRoot())}
}

// ConfigFile is the JSON config record (API key, prompt mode).
func (p Paths) ConfigFile() string {
	return filepath.Join(p.Root, "config")
}

// ActiveThreadFile is the plain-text marker naming the active thread.
func (p Paths) ActiveThreadFile() string {
	return filepath.Join(p.Root, "activeThread")
}

// ThreadsDir holds one JSON file per thread, named by thread id.
func (p Paths) ThreadsDir() string {
	return filepath.Join(p.Root, "threads")
}

// HistoryDir holds the pebble-backed exchange history cache.
func (p Paths) HistoryDir() string {
	return filepath.Join(p.Root, "history")
}
