package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/picatz/chatcli/internal/chat/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Store the API key and session preferences",
	Long: `Configure prompts for an API key and writes the configuration
record. Leaving the prompt blank keeps the currently stored key. The
record is always rewritten wholesale.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := appPaths(cmd)
		cfg := loadConfig(cmd, paths)

		fmt.Fprint(cmd.OutOrStdout(), "API key (blank keeps current): ")
		key, err := readSecret(cmd)
		if err != nil {
			return fmt.Errorf("failed to read API key: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout())

		if key != "" {
			cfg.APIKey = key
		}
		if cmd.Flags().Changed("prompt-mode") {
			cfg.PromptMode, _ = cmd.Flags().GetBool("prompt-mode")
		}

		if err := config.Save(paths.ConfigFile(), cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to %s\n", styleFaint.Render(paths.ConfigFile()))
		return nil
	},
}

func init() {
	configureCmd.Flags().Bool("prompt-mode", false, "Make bare queries enter the interactive loop")

	rootCmd.AddCommand(configureCmd)
}

// readSecret reads a line of input without echo when attached to a
// terminal, falling back to a plain line read otherwise.
func readSecret(cmd *cobra.Command) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	r := bufio.NewReader(cmd.InOrStdin())
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", nil // EOF with no input keeps the current key
	}
	return strings.TrimSpace(line), nil
}
