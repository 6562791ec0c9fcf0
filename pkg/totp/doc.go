// Package totp implements time-based one-time passwords (RFC 6238) on top of
// the HOTP algorithm (RFC 4226), plus otpauth:// provisioning URIs for
// authenticator apps.
//
// Verification accepts the previous, current, and next time window to handle
// modest clock drift between the server and the authenticator device.
package totp
