// Package cookie manages HTTP cookies with HMAC signing and one-shot flash
// values. Signing uses a list of secrets so that keys can be rotated without
// invalidating cookies issued under the previous key.
package cookie
