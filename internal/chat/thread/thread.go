// Package thread persists conversation threads and tracks which one is
// active across invocations.
package thread

import (
	"strings"

	"github.com/google/uuid"
	"github.com/picatz/chatcli"
)

// Thread is a named, append-only sequence of chat messages. The id is
// generated at creation and never changes; messages are only ever
// appended, in conversational order.
type Thread struct {
	ID       string                `json:"id"`
	Messages []chatcli.ChatMessage `json:"messages"`
}

// New returns a thread with a fresh random identifier and no messages.
// Nothing is written to disk until the thread is saved.
func New() Thread {
	return Thread{ID: uuid.NewString()}
}

// Append adds a message to the end of the thread.
func (t *Thread) Append(role chatcli.ChatRole, content string) {
	t.Messages = append(t.Messages, chatcli.ChatMessage{Role: role, Content: content})
}

// Summary returns the first user message, truncated to at most n runes,
// for display in thread listings. Empty threads summarize as "(empty)".
func (t Thread) Summary(n int) string {
	for _, m := range t.Messages {
		if m.Role != chatcli.ChatRoleUser {
			continue
		}
		s := strings.Join(strings.Fields(m.Content), " ")
		if runes := []rune(s); len(runes) > n {
			return string(runes[:n]) + "…"
		}
		return s
	}
	return "(empty)"
}
