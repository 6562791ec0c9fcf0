// Package redis provides connection helpers for the go-redis client with
// retry logic and health checks. The session store uses it to share session
// state across workers.
package redis
