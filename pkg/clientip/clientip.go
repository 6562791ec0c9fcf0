package clientip

import (
	"net"
	"net/http"
	"strings"
)

// GetIP resolves the originating client address of r. Forwarding headers
// are consulted in priority order and each candidate is validated before
// being trusted:
//
//  1. X-Forwarded-For (first valid entry of the comma-separated list)
//  2. X-Real-IP
//  3. RemoteAddr
//
// The returned address is normalized via net.ParseIP; an empty string
// means nothing in the request parsed as an IP.
func GetIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		for _, candidate := range strings.Split(forwarded, ",") {
			if ip := parseIP(candidate); ip != "" {
				return ip
			}
		}
	}

	if ip := parseIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port, e.g. in tests.
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

// parseIP validates and normalizes a single IP address string, returning
// the empty string when the input is not a valid address.
func parseIP(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return ""
	}
	return ip.String()
}
