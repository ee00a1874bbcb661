package chatcli_test

import (
	"testing"
	"time"

	"github.com/picatz/chatcli"
	"golang.org/x/time/rate"
)

func TestNewChatRequestRateLimiter(t *testing.T) {
	limiter := chatcli.NewRateLimiters().Chat.Requests

	// Verify that the rate limiter allows up to 3,500 requests per minute.
	if limiter.Limit() != rate.Every(1*time.Minute) {
		t.Fatalf("unexpected rate limit interval: got %v, want %v", limiter.Limit(), rate.Every(1*time.Minute))
	}
	if limiter.Burst() != 3500 {
		t.Fatalf("unexpected burst limit: got %d, want %d", limiter.Burst(), 3500)
	}

	// Burn through the burst, then verify the limiter blocks.
	for i := 0; i < 3500; i++ {
		if !limiter.Allow() {
			t.Fatalf("unexpected rate limit at %d", i)
		}
	}

	if limiter.Allow() {
		t.Fatalf("expected rate limit after %d requests", 3500)
	}
}
