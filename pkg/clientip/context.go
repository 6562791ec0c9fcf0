package clientip

import "context"

type contextKey struct{}

// SetIPToContext returns a context carrying the resolved client IP.
func SetIPToContext(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKey{}, ip)
}

// GetIPFromContext returns the client IP stored by Middleware, or an
// empty string when none was stored.
func GetIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(contextKey{}).(string)
	return ip
}
