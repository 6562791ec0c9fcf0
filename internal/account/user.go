package account

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User is the identity record. At most one of UseLoginByCode and
// UseOneTimePassword may be true; Validate enforces this at write time.
type User struct {
	ID                 uuid.UUID
	Username           string
	Email              string
	PasswordHash       string
	UseLoginByCode     bool
	UseOneTimePassword bool
	IsActive           bool
	IsStaff            bool
	IsSuperuser        bool
	EncryptionKeyID    *uuid.UUID
	CreatedAt          time.Time
	UpdatedAt          time.Time
	LastLogin          *time.Time
}

// NewUser constructs an active user with a bcrypt password hash. The returned
// user has no encryption key attached; repositories attach one on first create.
func NewUser(username, email, password string) (*User, error) {
	if username == "" {
		return nil, ErrMissingUsername
	}
	if email == "" {
		return nil, ErrMissingEmail
	}
	if password == "" {
		return nil, ErrMissingPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Validate checks the write-time invariants.
func (u *User) Validate() error {
	if u.Username == "" {
		return ErrMissingUsername
	}
	if u.Email == "" {
		return ErrMissingEmail
	}
	if u.UseLoginByCode && u.UseOneTimePassword {
		return ErrExclusiveFactors
	}
	return nil
}

// CheckPassword reports whether the plaintext password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetPassword replaces the stored password hash.
func (u *User) SetPassword(password string) error {
	if password == "" {
		return ErrMissingPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// RequiresSecondFactor reports whether login must continue through a
// second-factor challenge.
func (u *User) RequiresSecondFactor() bool {
	return u.UseLoginByCode || u.UseOneTimePassword
}

// EncryptionKey holds a user's wrapped data-encryption key as opaque binary
// in the form IV(16) || ciphertext. The plaintext key is never persisted.
type EncryptionKey struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Key       []byte
	CreatedAt time.Time
	ExpiresAt *time.Time
}

// IsValid reports whether the key is usable: the expiration must be set and
// strictly in the future. A key with no expiration is never valid.
func (k *EncryptionKey) IsValid() bool {
	if k.ExpiresAt == nil {
		return false
	}
	return k.ExpiresAt.After(time.Now())
}

// EmailAddress is a per-user email record managed by the verification flow.
// A user may hold several; exactly one is primary.
type EmailAddress struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Email     string
	Verified  bool
	Primary   bool
	CreatedAt time.Time
}

// TOTPDevice binds an authenticator secret to a user. The secret is stored
// encrypted at rest; Confirmed flips once the user proves possession by
// submitting a valid code.
type TOTPDevice struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Name            string
	EncryptedSecret string
	Confirmed       bool
	CreatedAt       time.Time
}
