package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open <thread-id>",
	Short: "Make a saved thread the active one",
	Long: `Open marks a saved thread as active, so the next ask or prompt
continues it. The thread must load successfully first: opening an
unknown or unreadable thread fails and leaves the current marker
untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := appPaths(cmd)
		store := threadStore(paths, cmd.ErrOrStderr())

		th, err := store.Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to open thread %q: %w", args[0], err)
		}

		if err := activeMarker(paths).Set(th.ID); err != nil {
			return fmt.Errorf("failed to update active thread: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Active thread is now %s %s\n",
			styleActive.Render(th.ID),
			styleFaint.Render(fmt.Sprintf("(%d messages)", len(th.Messages))),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
}
