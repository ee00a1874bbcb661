// Package config persists the tool's configuration record and resolves
// where all local state lives on disk.
package config

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// EnvAPIKey is the environment variable holding the API key. When set
// and non-empty, it always wins over the persisted config value.
const EnvAPIKey = "OPENAI_API_KEY"

// ErrNotFound is returned by Load when no config file exists.
var ErrNotFound = errors.New("config not found")

// ErrCorrupt is returned by Load when a config file exists but cannot
// be decoded. Callers currently degrade this to the same behavior as
// [ErrNotFound], but the two are reported distinctly so the ambiguity
// stays visible.
var ErrCorrupt = errors.New("config corrupt")

// Config is the single persisted configuration record. It is always
// overwritten wholesale on save: no partial updates, no versioning.
type Config struct {
	// APIKey is the persisted API credential. The environment
	// variable takes precedence; see [Config.ResolveAPIKey].
	APIKey string `json:"apiKey"`

	// PromptMode, when true, makes the single-shot ask command enter
	// the interactive loop instead.
	PromptMode bool `json:"promptMode"`
}

// Load reads the config record at path.
//
// It returns [ErrNotFound] when the file is absent, and an error
// wrapping [ErrCorrupt] when the file is present but malformed.
func Load(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, ErrNotFound
		}
		return cfg, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %q: %s", ErrCorrupt, path, err)
	}

	return cfg, nil
}

// Save writes the config record to path atomically, creating parent
// directories as needed.
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-config-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary config file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write config: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temporary config file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to rename temporary config file: %w", err)
	}

	return nil
}

// ResolveAPIKey returns the credential to use: the environment value
// when set, otherwise the persisted value. Empty means no credential
// is resolvable.
func (c Config) ResolveAPIKey() string {
	return cmp.Or(os.Getenv(EnvAPIKey), c.APIKey)
}
