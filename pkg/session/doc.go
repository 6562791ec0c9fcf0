// Package session provides server-side sessions with pluggable storage and
// cookie token transport.
//
// A Manager ties together a Store (in-memory or Redis), a Transport (HMAC
// signed cookies by default) and timeout configuration. Session data is a
// JSON-serializable key/value map, which makes the store safe to share across
// processes when backed by Redis.
//
// Authenticating a session rotates its token to prevent session fixation.
// The Pop operation reads and deletes a value atomically with respect to the
// request, which is how one-shot state like a post-login redirect target is
// consumed.
package session
