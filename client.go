package chatcli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the default base URL for the chat completions API.
const DefaultBaseURL = "https://api.openai.com/v1"

// Client is a client for the chat completions API.
//
// https://platform.openai.com/docs/api-reference/chat
type Client struct {
	// APIKey is the API key to use for requests.
	APIKey string

	// HTTPClient is the HTTP client to use for requests.
	//
	// No timeout is imposed beyond whatever the transport itself
	// applies; callers that need one should provide their own client.
	HTTPClient *http.Client

	// BaseURL is the base URL for the API, without a trailing slash.
	//
	// Defaults to [DefaultBaseURL], but can be pointed at any
	// compatible endpoint (including a test server).
	BaseURL string

	// Limiter optionally rate limits outgoing chat requests on the
	// client side. If nil, requests are not limited.
	Limiter *rate.Limiter
}

// ClientOption is a function that configures a Client.
type ClientOption func(*Client)

// WithHTTPClient is a ClientOption that sets the HTTP client to use for requests.
//
// If the client is nil, then http.DefaultClient is used.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		if c == nil {
			c = http.DefaultClient
		}
		client.HTTPClient = c
	}
}

// WithBaseURL is a ClientOption that sets the base URL to use for requests,
// which is useful for pointing the client at a compatible test server.
func WithBaseURL(baseURL string) ClientOption {
	return func(client *Client) {
		if baseURL != "" {
			client.BaseURL = baseURL
		}
	}
}

// WithRateLimiter is a ClientOption that sets a client-side request
// rate limiter, like RateLimits.Chat.Requests.
func WithRateLimiter(l *rate.Limiter) ClientOption {
	return func(client *Client) {
		client.Limiter = l
	}
}

// NewClient returns a new Client with the given API key.
//
// # Example
//
//	c := chatcli.NewClient(os.Getenv("OPENAI_API_KEY"))
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		APIKey:     apiKey,
		HTTPClient: http.DefaultClient,
		BaseURL:    DefaultBaseURL,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ChatMessage is a single message in a conversation, the unit of
// context maintained by the caller across requests.
type ChatMessage struct {
	// Role is the author of the message, e.g. "user" or "assistant".
	//
	// https://platform.openai.com/docs/api-reference/chat/create#chat/create-role
	//
	// Required.
	Role ChatRole `json:"role"`

	// Content is the text of the message.
	//
	// https://platform.openai.com/docs/api-reference/chat/create#chat/create-content
	Content string `json:"content"`
}

// CreateChatRequest is sent to the API, which will return a chat response.
//
// The API is designed to be used in a loop, where the `messages` field
// carries the current context window of the conversation, maintained by
// the caller: the previous response's message is appended before the
// next request is made.
//
// https://platform.openai.com/docs/api-reference/chat/create
type CreateChatRequest struct {
	// The model to use for the chat.
	//
	// https://platform.openai.com/docs/api-reference/chat/create#chat/create-model
	//
	// Required.
	Model string `json:"model,omitempty"`

	// The context window of the conversation, which is a list of messages.
	//
	// https://platform.openai.com/docs/api-reference/chat/create#chat/create-messages
	//
	// Required.
	Messages []ChatMessage `json:"messages,omitempty"`

	// What sampling temperature to use, between 0 and 2.
	//
	// https://platform.openai.com/docs/api-reference/chat/create#chat/create-temperature
	//
	// Optional.
	Temperature float64 `json:"temperature,omitempty"`
}

// CreateChatResponse is received in response to a chat request.
//
// https://platform.openai.com/docs/api-reference/chat/create
type CreateChatResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int    `json:"created"`
	Model   string `json:"model"`
	Usage   struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Choices []struct {
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
		Index        int         `json:"index"`
	} `json:"choices"`
}

// CreateChat sends a chat request to the API to obtain a chat response,
// creating a completion for the included chat messages (the conversation
// context and history).
//
// https://platform.openai.com/docs/api-reference/chat/create
func (c *Client) CreateChat(ctx context.Context, req *CreateChatRequest) (*CreateChatResponse, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	b, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}

	r.Header.Add("Content-Type", "application/json")

	r.Header.Add("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d: %s: %s", resp.StatusCode, http.StatusText(resp.StatusCode), body)
	}

	var res CreateChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &res, nil
}
