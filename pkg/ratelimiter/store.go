package ratelimiter

import (
	"context"
	"time"
)

// Store is a rate limit storage backend.
type Store interface {
	// ConsumeTokens attempts to take tokens from the bucket identified by
	// key, returning the remaining balance and the next refill time. A
	// negative remaining balance means the request must be denied.
	ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (remaining int, resetAt time.Time, err error)

	// Reset clears the bucket state for key.
	Reset(ctx context.Context, key string) error
}
