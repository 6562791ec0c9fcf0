// Package clientip extracts the originating client IP from an
// *http.Request, looking through the forwarding headers set by reverse
// proxies before falling back to the TCP peer address.
//
// GetIP never returns an error; an empty string means no candidate in
// the request parsed as a valid address. Middleware stores the resolved
// address in the request context so downstream handlers can read it with
// GetIPFromContext instead of repeating the resolution.
package clientip
