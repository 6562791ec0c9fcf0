// Package secrets provides authenticated symmetric encryption (AES-256-GCM)
// for sensitive values stored at rest, such as TOTP device secrets.
//
// The nonce is prepended to the ciphertext, so stored values are
// self-contained. Decryption authenticates the ciphertext: any tampering is
// detected and surfaced as ErrDecryptionFailed.
package secrets
