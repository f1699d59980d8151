// Package models holds the rate limit vocabulary shared by stores and
// middleware.
package models

import (
	"fmt"
	"time"
)

// EndpointClass groups routes that share a budget.
type EndpointClass string

const (
	// ClassTokenLookup covers routes keyed by an invite token or a manager
	// phone, where a caller could enumerate secrets.
	ClassTokenLookup EndpointClass = "token_lookup"
	// ClassCodeRedeem covers family invitation code acceptance.
	ClassCodeRedeem EndpointClass = "code_redeem"
)

func (c EndpointClass) IsValid() bool {
	switch c {
	case ClassTokenLookup, ClassCodeRedeem:
		return true
	}
	return false
}

// Limit is a sliding window budget.
type Limit struct {
	Requests int
	Window   time.Duration
}

// Key builds the bucket key for a class and client.
func Key(class EndpointClass, client string) string {
	return fmt.Sprintf("ratelimit:%s:%s", class, client)
}

type RateLimitResult struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

type RateLimitExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

// RetryAfterSeconds is zero for allowed results.
func RetryAfterSeconds(allowed bool, now, resetAt time.Time) int {
	if allowed {
		return 0
	}
	seconds := int(resetAt.Sub(now).Seconds())
	if seconds < 1 {
		return 1
	}
	return seconds
}
