package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/picatz/chatcli"
	"github.com/picatz/chatcli/internal/chat"
	"github.com/picatz/chatcli/internal/chat/storage"
	pebbleStorage "github.com/picatz/chatcli/internal/chat/storage/pebble"
	"github.com/picatz/chatcli/internal/chat/thread"
	"github.com/spf13/cobra"
)

type stderrLoggerAndTracer struct{}

func (l *stderrLoggerAndTracer) Infof(format string, args ...interface{}) {}
func (l *stderrLoggerAndTracer) Fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

func (l *stderrLoggerAndTracer) Eventf(ctx context.Context, format string, args ...interface{}) {}
func (l *stderrLoggerAndTracer) IsTracingEnabled(ctx context.Context) bool {
	return false
}

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Start an interactive chat session on the active thread",
	Long: `Prompt enters an interactive loop against the active thread (or a
fresh one), reading queries until /exit or end of input. Each successful
exchange is persisted before the next prompt is shown.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := appPaths(cmd)
		cfg := loadConfig(cmd, paths)

		client, err := newClient(cfg)
		if err != nil {
			return err
		}

		return runPromptSession(cmd, client, "")
	},
}

func init() {
	promptCmd.Flags().BoolP("temporary", "t", false, "Keep the exchange history cache in memory only")

	rootCmd.AddCommand(promptCmd)
}

// runPromptSession runs the interactive loop, optionally seeding it
// with an initial query before the first prompt is shown.
func runPromptSession(cmd *cobra.Command, client *chatcli.Client, seed string) error {
	ctx := cmd.Context()
	paths := appPaths(cmd)

	store := threadStore(paths, cmd.ErrOrStderr())
	active := activeMarker(paths)

	th, err := thread.ResolveOrCreate(ctx, store, active, stdinIsTerminal(cmd), bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	opts := &pebble.Options{
		LoggerAndTracer: &stderrLoggerAndTracer{},
	}
	if useTemp, _ := cmd.Flags().GetBool("temporary"); useTemp {
		opts.FS = vfs.NewMem()
	}

	history, err := pebbleStorage.NewBackend(paths.HistoryDir(), opts, &storage.JSONCodec[string, chat.ReqRespPair]{})
	if err != nil {
		return fmt.Errorf("failed to open history cache: %w", err)
	}
	defer history.Close(ctx)

	debug, _ := cmd.Flags().GetBool("debug")
	driver := &chat.Driver{
		Client:      client,
		Model:       chatModel(),
		Temperature: chat.DefaultTemperature,
		History:     history,
		Debug:       debug,
	}

	session, restore, err := chat.NewSession(driver, store, active, th, cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("failed to create chat session: %w", err)
	}
	defer restore()

	if seed != "" {
		if err := session.Ask(ctx, seed); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		}
	}

	session.Run(ctx)

	return nil
}
