package cookie

import "errors"

var (
	// ErrNoSecret indicates the manager was created without any signing secret.
	ErrNoSecret = errors.New("cookie: no signing secret provided")

	// ErrSecretTooShort indicates a signing secret below the minimum length.
	ErrSecretTooShort = errors.New("cookie: signing secret too short")

	// ErrCookieNotFound indicates the named cookie is absent from the request.
	ErrCookieNotFound = errors.New("cookie: not found")

	// ErrInvalidFormat indicates a signed cookie value that cannot be parsed.
	ErrInvalidFormat = errors.New("cookie: invalid signed value format")

	// ErrInvalidSignature indicates a signature that fails verification.
	ErrInvalidSignature = errors.New("cookie: invalid signature")
)
