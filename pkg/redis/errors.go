package redis

import "errors"

var (
	// ErrFailedToParseConnString indicates an invalid Redis connection URL.
	ErrFailedToParseConnString = errors.New("redis: failed to parse connection string")

	// ErrNotReady indicates the server did not become reachable within the
	// configured retry budget.
	ErrNotReady = errors.New("redis: server not ready")
)
