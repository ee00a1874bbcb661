package chatcli_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/picatz/chatcli"
	"github.com/shoenig/test/must"
)

// newTestServer returns a stub chat completions endpoint that captures the
// last request it decoded and replies with the given message contents as
// choices, one choice per content string.
func newTestServer(t *testing.T, contents ...string) (*httptest.Server, *chatcli.CreateChatRequest) {
	t.Helper()

	lastReq := &chatcli.CreateChatRequest{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat/completions", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(lastReq); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		resp := chatcli.CreateChatResponse{
			ID:     "chatcmpl-test",
			Object: "chat.completion",
			Model:  lastReq.Model,
		}
		for _, content := range contents {
			resp.Choices = append(resp.Choices, struct {
				Message      chatcli.ChatMessage `json:"message"`
				FinishReason string              `json:"finish_reason"`
				Index        int                 `json:"index"`
			}{
				Message: chatcli.ChatMessage{
					Role:    chatcli.ChatRoleAssistant,
					Content: content,
				},
				FinishReason: "stop",
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv, lastReq
}

func TestCreateChat(t *testing.T) {
	srv, lastReq := newTestServer(t, "hello back")

	c := chatcli.NewClient("test-key", chatcli.WithBaseURL(srv.URL))

	resp, err := c.CreateChat(t.Context(), &chatcli.CreateChatRequest{
		Model: chatcli.ModelGPT4o,
		Messages: []chatcli.ChatMessage{
			{Role: chatcli.ChatRoleUser, Content: "hi"},
		},
		Temperature: 0.7,
	})
	must.NoError(t, err)
	must.Len(t, 1, resp.Choices)
	must.Eq(t, chatcli.ChatRoleAssistant, resp.Choices[0].Message.Role)
	must.Eq(t, "hello back", resp.Choices[0].Message.Content)

	// The full request payload should have made it onto the wire.
	must.Eq(t, chatcli.ModelGPT4o, lastReq.Model)
	must.Len(t, 1, lastReq.Messages)
	must.Eq(t, 0.7, lastReq.Temperature)
}

func TestCreateChat_serverError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	c := chatcli.NewClient("test-key", chatcli.WithBaseURL(srv.URL))

	_, err := c.CreateChat(t.Context(), &chatcli.CreateChatRequest{
		Model: chatcli.ModelGPT4o,
		Messages: []chatcli.ChatMessage{
			{Role: chatcli.ChatRoleUser, Content: "hi"},
		},
	})
	must.Error(t, err)
	must.StrContains(t, err.Error(), "unexpected status code: 500")
}

func TestCreateChat_transportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := chatcli.NewClient("test-key", chatcli.WithBaseURL(srv.URL))

	_, err := c.CreateChat(t.Context(), &chatcli.CreateChatRequest{
		Model: chatcli.ModelGPT4o,
	})
	must.Error(t, err)
}
