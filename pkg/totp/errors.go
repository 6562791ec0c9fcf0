package totp

import "errors"

var (
	ErrFailedToGenerateSecretKey = errors.New("failed to generate TOTP secret key")
	ErrFailedToGenerateCode      = errors.New("failed to generate TOTP code")
	ErrFailedToVerifyCode        = errors.New("failed to verify TOTP code")
	ErrMissingSecret             = errors.New("missing secret")
	ErrInvalidSecret             = errors.New("invalid secret")
	ErrMissingAccountName        = errors.New("missing account name")
	ErrMissingIssuer             = errors.New("missing issuer")
	ErrInvalidCodeFormat         = errors.New("invalid code format")
)
