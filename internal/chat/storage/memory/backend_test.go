package memory_test

import (
	"testing"

	"github.com/picatz/chatcli"
	"github.com/picatz/chatcli/internal/chat/storage/memory"
	"github.com/picatz/chatcli/internal/chat/storage/tests"
)

func TestBackend(t *testing.T) {
	tests.BackendSuite(t, memory.NewBackend[string, string]())
	tests.BackendSuiteChatMessages(t, memory.NewBackend[string, chatcli.ChatMessage]())
}
