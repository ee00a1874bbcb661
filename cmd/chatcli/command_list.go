package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved threads",
	Long: `List prints every saved thread with its identifier, message count,
and a summary taken from the first user message. The active thread is
marked with an asterisk. Unreadable thread records are skipped with a
warning rather than aborting the listing.`,
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := appPaths(cmd)
		store := threadStore(paths, cmd.ErrOrStderr())

		threads, err := store.LoadAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list threads: %w", err)
		}

		if len(threads) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), styleFaint.Render("no saved threads"))
			return nil
		}

		activeID, _, err := activeMarker(paths).Get()
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s failed to read active thread: %s\n", styleWarning.Render("warning:"), err)
		}

		for _, th := range threads {
			marker := " "
			id := styleFaint.Render(th.ID)
			if th.ID == activeID {
				marker = styleActive.Render("*")
				id = styleActive.Render(th.ID)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %s  %s\n",
				marker,
				id,
				styleFaint.Render(fmt.Sprintf("%d messages", len(th.Messages))),
				th.Summary(60),
			)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
