package account

import "time"

// Config holds the account subsystem settings loaded from the environment.
type Config struct {
	// MasterSecret keys the per-user encryption key wrapping and must be at
	// least 32 bytes; only the first 32 bytes are used.
	MasterSecret string `env:"ACCOUNT_MASTER_SECRET,required"`

	// TOTPIssuer is shown in authenticator apps next to the account label.
	TOTPIssuer string `env:"ACCOUNT_TOTP_ISSUER" envDefault:"Cobaemon Portfolio"`

	// LoginCodeTTL bounds how long an emailed login code stays redeemable.
	LoginCodeTTL time.Duration `env:"ACCOUNT_LOGIN_CODE_TTL" envDefault:"3m"`

	// MaxCodeAttempts is the number of second-factor submissions allowed
	// before the pending login is discarded.
	MaxCodeAttempts int `env:"ACCOUNT_MAX_CODE_ATTEMPTS" envDefault:"3"`

	// LoginRedirectURL is where a completed login lands when no explicit
	// destination was captured.
	LoginRedirectURL string `env:"ACCOUNT_LOGIN_REDIRECT_URL" envDefault:"/"`

	// VerificationTokenTTL bounds email verification and password reset links.
	VerificationTokenTTL time.Duration `env:"ACCOUNT_VERIFICATION_TOKEN_TTL" envDefault:"24h"`

	// BaseURL is the externally visible origin used when building links in
	// outgoing email.
	BaseURL string `env:"ACCOUNT_BASE_URL" envDefault:"http://localhost:8080"`
}

// MasterKey returns the first 32 bytes of the master secret, the AES key for
// wrapping per-user keys and authenticator secrets. Call Validate first; the
// secret must be at least 32 bytes.
func (c Config) MasterKey() []byte {
	return []byte(c.MasterSecret)[:32]
}

// Validate reports configuration errors that cannot be expressed as env tags.
func (c Config) Validate() error {
	if len(c.MasterSecret) < 32 {
		return ErrMasterSecretTooShort
	}
	if c.MaxCodeAttempts < 1 {
		return ErrInvalidAttemptLimit
	}
	return nil
}
