// Package account implements identity and sign-in for the portfolio site:
// password authentication with a verified-email requirement, two optional
// second factors (a code sent by email, or a TOTP authenticator app), device
// enrollment with QR provisioning, email address management, password reset,
// social login, and the per-user encryption key lifecycle.
//
// Sign-in is a two-step flow. The password check resolves the user and fails
// closed without revealing which precondition missed. If the user has a
// second factor configured, a pending login is parked in the session and the
// request is redirected into the confirmation step, which allows a bounded
// number of attempts before discarding the pending state.
//
// Every user carries a wrapped 32-byte data-encryption key, generated and
// attached atomically on first create. The key is stored as IV || AES-CFB
// ciphertext under the application master secret and is unwrapped on demand
// by KeyService.
//
// Storage is expressed as small per-service interfaces; MemoryRepository and
// PostgresRepository implement all of them.
package account
