package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/picatz/chatcli"
	"github.com/picatz/chatcli/internal/chat"
	"github.com/picatz/chatcli/internal/chat/thread"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var askCmd = &cobra.Command{
	Use:   "ask <query>...",
	Short: "Send a single query, continuing the active thread",
	Long: `Ask sends one query to the chat completions API as part of the
active thread (or a fresh one) and prints the reply. The thread and the
active marker are only updated after a successful exchange: a failed
request leaves durable state untouched.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	query := strings.Join(args, " ")

	paths := appPaths(cmd)
	cfg := loadConfig(cmd, paths)

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	if cfg.PromptMode {
		return runPromptSession(cmd, client, query)
	}

	ctx := cmd.Context()
	store := threadStore(paths, cmd.ErrOrStderr())
	active := activeMarker(paths)

	th, err := thread.ResolveOrCreate(ctx, store, active, stdinIsTerminal(cmd), bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	debug, _ := cmd.Flags().GetBool("debug")
	driver := &chat.Driver{
		Client:      client,
		Model:       chatModel(),
		Temperature: chat.DefaultTemperature,
		Debug:       debug,
		Out:         cmd.ErrOrStderr(),
	}

	if err := driver.Exchange(ctx, &th, query); err != nil {
		// The request failed before anything was persisted; report it
		// and leave durable state exactly as it was.
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return nil
	}

	if reply := lastAssistantMessage(th); reply != "" {
		fmt.Fprint(cmd.OutOrStdout(), chat.RenderMarkdown(reply, outputWidth(cmd)))
	}

	if err := store.Save(ctx, th); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s failed to save thread: %s\n", styleWarning.Render("warning:"), err)
		return nil
	}
	if err := active.Set(th.ID); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s failed to update active thread: %s\n", styleWarning.Render("warning:"), err)
	}

	return nil
}

// lastAssistantMessage returns the trailing assistant reply, or an
// empty string when the exchange produced no choices.
func lastAssistantMessage(th thread.Thread) string {
	if len(th.Messages) == 0 {
		return ""
	}
	last := th.Messages[len(th.Messages)-1]
	if last.Role != chatcli.ChatRoleAssistant {
		return ""
	}
	return last.Content
}

// stdinIsTerminal reports whether the command's input is an interactive
// terminal, which gates the continue-or-new prompt.
func stdinIsTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.InOrStdin().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// outputWidth returns the terminal width of the command's output, or a
// conventional default when the output is not a terminal.
func outputWidth(cmd *cobra.Command) int {
	f, ok := cmd.OutOrStdout().(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 80
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
