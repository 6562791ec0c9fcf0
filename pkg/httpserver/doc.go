// Package httpserver wraps net/http with graceful shutdown, configurable
// timeouts, lifecycle hooks, and a health check handler.
//
// Construct a Server with New or NewFromConfig and start it with Run,
// which blocks until the passed context is canceled or the listener
// fails; the caller owns signal handling. Start failures are wrapped
// with ErrStart and shutdown failures with ErrShutdown so they can be
// inspected with errors.Is.
//
// HealthCheckHandler doubles as a liveness probe (no dependency checks)
// and a readiness probe (with dependency check functions supplied).
package httpserver
