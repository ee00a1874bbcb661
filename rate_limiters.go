package chatcli

import (
	"time"

	"golang.org/x/time/rate"
)

// RateLimiters holds client-side rate limiters for the chat API that
// can be used to pace outgoing requests.
//
// These are not enforced by the client by default, but can be attached
// with [WithRateLimiter], or consulted directly by calling `Allow()` or
// `Wait(ctx)` on the appropriate limiter before making a request.
//
// # Example
//
//	client := chatcli.NewClient(apiKey, chatcli.WithRateLimiter(chatcli.RateLimits.Chat.Requests))
type RateLimiters struct {
	Chat struct {
		Requests *rate.Limiter
		Tokens   *rate.Limiter
	}
}

// RateLimits is the default set of rate limiters for the chat API.
//
// The values follow the documented defaults for pay-as-you-go accounts;
// accounts with different limits should create their own limiters with
// [NewRateLimiters].
var RateLimits = NewRateLimiters()

// NewRateLimiters returns rate limiters using the documented default
// limits of 3,500 requests and 90,000 tokens per minute.
func NewRateLimiters() *RateLimiters {
	rl := &RateLimiters{}

	rl.Chat.Requests = rate.NewLimiter(rate.Every(1*time.Minute), 3500)
	rl.Chat.Tokens = rate.NewLimiter(rate.Every(1*time.Minute), 90000)

	return rl
}
