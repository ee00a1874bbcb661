package main

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/picatz/chatcli"
	"github.com/picatz/chatcli/internal/chat/config"
	"github.com/picatz/chatcli/internal/chat/storage"
	backendFile "github.com/picatz/chatcli/internal/chat/storage/file"
	"github.com/picatz/chatcli/internal/chat/thread"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "chatcli",
	Short: "Chat with a completions API, with conversations persisted locally",
	Long: `chatcli sends queries to a chat completions API and persists
conversation threads locally, so a conversation can be resumed across
invocations. Running it with a query is shorthand for the ask command.`,
	Args: cobra.ArbitraryArgs,
	RunE: runAsk,
}

func init() {
	rootCmd.PersistentFlags().String("root", "", "State root directory (default ~/.chatcli)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Echo the outgoing request body and a redacted credential suffix")
}

// appPaths resolves the on-disk layout from the --root flag.
func appPaths(cmd *cobra.Command) config.Paths {
	root, _ := cmd.Flags().GetString("root")
	return config.NewPaths(root)
}

// loadConfig reads the config record, degrading a corrupt record to an
// absent one with a distinct warning.
func loadConfig(cmd *cobra.Command, paths config.Paths) config.Config {
	cfg, err := config.Load(paths.ConfigFile())
	if err != nil {
		if errors.Is(err, config.ErrCorrupt) {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", styleWarning.Render("warning:"), err)
		}
		return config.Config{}
	}
	return cfg
}

// newClient builds the API client, or fails when no credential is
// resolvable from the environment or the config record.
func newClient(cfg config.Config) (*chatcli.Client, error) {
	apiKey := cfg.ResolveAPIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("no API key: set %s or run `chatcli configure`", config.EnvAPIKey)
	}

	return chatcli.NewClient(apiKey,
		chatcli.WithBaseURL(cmp.Or(os.Getenv("OPENAI_BASE_URL"), chatcli.DefaultBaseURL)),
		chatcli.WithRateLimiter(chatcli.RateLimits.Chat.Requests),
	), nil
}

// chatModel is the model identifier used for every exchange.
func chatModel() string {
	return cmp.Or(os.Getenv("OPENAI_MODEL"), chatcli.DefaultModel)
}

// threadStore opens the file-backed thread store for the given layout,
// warning on warn about any unreadable records.
func threadStore(paths config.Paths, warn io.Writer) *thread.Store {
	return thread.NewStore(backendFile.NewBackend(paths.ThreadsDir(), warn, &storage.JSONCodec[string, thread.Thread]{}))
}

// activeMarker is the active thread marker for the given layout.
func activeMarker(paths config.Paths) thread.Active {
	return thread.Active{Path: paths.ActiveThreadFile()}
}
