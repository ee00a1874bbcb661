// Package chat drives exchanges against the chat completions endpoint,
// both single-shot and as an interactive terminal session.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/picatz/chatcli"
	"github.com/picatz/chatcli/internal/chat/storage"
	"github.com/picatz/chatcli/internal/chat/thread"
	"github.com/segmentio/ksuid"
)

// DefaultTemperature is the fixed sampling temperature used for every
// exchange.
const DefaultTemperature = 0.7

// ReqRespPair is one request-response exchange, recorded in the
// history cache after a successful round trip.
type ReqRespPair struct {
	Model string              `json:"model,omitzero"`
	Req   chatcli.ChatMessage `json:"req,omitzero"`
	Resp  chatcli.ChatMessage `json:"resp,omitzero"`
}

// Driver performs one request/response exchange at a time against the
// chat completions endpoint, mutating an in-memory thread. It never
// persists the thread itself: the caller saves it (and moves the
// active marker) only after a successful exchange.
type Driver struct {
	// Client is the API client used for exchanges.
	Client *chatcli.Client

	// Model is the fixed model identifier sent with every request.
	Model string

	// Temperature is the sampling temperature, typically
	// [DefaultTemperature].
	Temperature float64

	// History optionally records successful exchanges. Recording
	// failures are reported as warnings, never exchange failures.
	History storage.Backend[string, ReqRespPair]

	// Debug echoes the outgoing request body and a redacted
	// credential suffix to Out before each call.
	Debug bool

	// Out receives debug and informational output. Required.
	Out io.Writer
}

// redactKey shows only the last four characters of a credential.
func redactKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "..." + key[len(key)-4:]
}

// Exchange appends the user query to th, sends the thread's entire
// message history to the endpoint, and appends the first returned
// choice as the assistant reply.
//
// On transport or HTTP failure the error is returned and th retains
// the appended user message; callers skip persistence on that path, so
// the query is lost from durable storage even though it went over the
// wire. A success with zero choices appends nothing but is still a
// success, leaving a dangling user turn for the caller to persist.
// Both behaviors are long-standing and covered by tests.
func (d *Driver) Exchange(ctx context.Context, th *thread.Thread, query string) error {
	th.Append(chatcli.ChatRoleUser, query)

	req := &chatcli.CreateChatRequest{
		Model:       d.Model,
		Messages:    th.Messages, // entire history, no truncation or windowing
		Temperature: d.Temperature,
	}

	if d.Debug {
		body, err := json.Marshal(req)
		if err != nil {
			return fmt.Errorf("failed to encode request for debug output: %w", err)
		}
		fmt.Fprintf(d.Out, "request body: %s\n", body)
		fmt.Fprintf(d.Out, "api key: %s\n", redactKey(d.Client.APIKey))
	}

	resp, err := d.Client.CreateChat(ctx, req)
	if err != nil {
		return fmt.Errorf("chat request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		fmt.Fprintln(d.Out, "no completion choices returned")
		return nil
	}

	// Only the first choice is kept; any others are discarded.
	reply := resp.Choices[0].Message
	th.Messages = append(th.Messages, reply)

	if d.History != nil {
		key := fmt.Sprintf("%s-%s", ksuid.New(), resp.ID)
		pair := ReqRespPair{
			Model: d.Model,
			Req:   chatcli.ChatMessage{Role: chatcli.ChatRoleUser, Content: query},
			Resp:  reply,
		}
		if err := d.History.Set(ctx, key, pair); err != nil {
			fmt.Fprintf(d.Out, "warning: failed to record exchange history: %s\n", err)
		}
	}

	return nil
}

// LastMessage returns the content of the last message in the thread,
// or an empty string for an empty thread.
func LastMessage(th *thread.Thread) string {
	if len(th.Messages) == 0 {
		return ""
	}
	return th.Messages[len(th.Messages)-1].Content
}
