package account

import "errors"

var (
	// Authentication failures are deliberately indistinct: bad password,
	// unknown email, unverified email, and inactive account all surface as
	// ErrAuthenticationFailed so callers cannot enumerate users.
	ErrAuthenticationFailed = errors.New("account: authentication failed")

	ErrUserNotFound       = errors.New("account: user not found")
	ErrEmailTaken         = errors.New("account: email already in use")
	ErrUsernameTaken      = errors.New("account: username already in use")
	ErrMissingUsername    = errors.New("account: username is required")
	ErrMissingEmail       = errors.New("account: email is required")
	ErrMissingPassword    = errors.New("account: password is required")
	ErrExclusiveFactors   = errors.New("account: login by code and one-time password are mutually exclusive")
	ErrEmailNotFound      = errors.New("account: email address not found")
	ErrEmailAlreadyExists = errors.New("account: email address already registered")
	ErrPrimaryEmail       = errors.New("account: primary email address cannot be removed")

	ErrNoPendingLogin  = errors.New("account: no pending login in session")
	ErrCodeMismatch    = errors.New("account: incorrect code")
	ErrCodeExpired     = errors.New("account: code expired")
	ErrTooManyAttempts = errors.New("account: too many attempts")

	ErrDeviceNotFound = errors.New("account: totp device not found")

	ErrInvalidToken = errors.New("account: invalid or expired token")

	ErrMasterSecretTooShort = errors.New("account: master secret must be at least 32 bytes")
	ErrInvalidAttemptLimit  = errors.New("account: attempt limit must be positive")
	ErrInvalidKeySize       = errors.New("account: encryption key must be 32 bytes")
	ErrCiphertextTooShort   = errors.New("account: ciphertext shorter than IV")

	ErrOAuthInvalidCode    = errors.New("account: oauth code exchange failed")
	ErrOAuthNoEmail        = errors.New("account: oauth provider returned no email")
	ErrOAuthEmailUnverified = errors.New("account: oauth provider email is not verified")
	ErrOAuthStateMismatch  = errors.New("account: oauth state mismatch")
	ErrOAuthUnknownPartner = errors.New("account: unknown oauth provider")
)
