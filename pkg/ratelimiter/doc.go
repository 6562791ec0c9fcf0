// Package ratelimiter implements token bucket rate limiting with pluggable
// storage and HTTP middleware.
//
// Buckets are keyed by arbitrary strings; the middleware composes keys from
// an action name and the client IP so that limits apply per operation per
// client:
//
//	bucket, _ := ratelimiter.NewBucket(store, ratelimiter.Config{
//		Capacity:       5,
//		RefillRate:     5,
//		RefillInterval: time.Minute,
//	})
//	r.Use(ratelimiter.Middleware(bucket, ratelimiter.Composite(
//		ratelimiter.ByAction("login"),
//		ratelimiter.ByClientIP(),
//	)))
package ratelimiter
