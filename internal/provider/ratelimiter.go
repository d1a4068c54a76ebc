package provider

import (
	"time"

	"golang.org/x/time/rate"
)

// NewRateLimiter allows bursts of up to maxTokens calls and then one call
// per refillInterval.
func NewRateLimiter(maxTokens int, refillInterval time.Duration) *rate.Limiter {
	if maxTokens <= 0 {
		maxTokens = 1
	}
	return rate.NewLimiter(rate.Every(refillInterval), maxTokens)
}
