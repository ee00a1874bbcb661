package chat

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

func renderMarkdown(s string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(width),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err).Error(), nil
	}

	out, err := r.Render(s)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err).Error(), nil
	}

	return out, nil
}

// RenderMarkdown renders s as terminal markdown wrapped to width,
// falling back to the raw string if rendering trips up.
func RenderMarkdown(s string, width int) string {
	out, err := renderMarkdown(s, width)
	if err != nil {
		return s
	}
	return out
}
