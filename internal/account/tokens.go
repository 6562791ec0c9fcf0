package account

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Token purposes. Each purpose has its own redemption path; a token minted
// for one purpose cannot be consumed by another.
const (
	TokenPurposeEmailVerify   = "email_verify"
	TokenPurposePasswordReset = "password_reset"
)

// VerificationToken is the stored side of a single-use link. Only the SHA-256
// hash of the token is persisted; the raw value exists only inside the email.
type VerificationToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Purpose   string
	TokenHash string
	Payload   string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// TokenStorage defines the storage operations for single-use tokens.
type TokenStorage interface {
	CreateToken(ctx context.Context, token *VerificationToken) error
	// ConsumeToken atomically fetches and deletes the token by hash and
	// purpose, so each token redeems at most once.
	ConsumeToken(ctx context.Context, tokenHash, purpose string) (*VerificationToken, error)
}

// mintToken creates a raw token and its stored record. The payload carries
// purpose-specific context, e.g. the email address being verified.
func mintToken(userID uuid.UUID, purpose, payload string, ttl time.Duration) (string, *VerificationToken, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", nil, err
	}
	raw := base64.RawURLEncoding.EncodeToString(buf)

	return raw, &VerificationToken{
		ID:        uuid.New(),
		UserID:    userID,
		Purpose:   purpose,
		TokenHash: hashToken(raw),
		Payload:   payload,
		ExpiresAt: time.Now().Add(ttl),
		CreatedAt: time.Now(),
	}, nil
}

// redeemToken consumes the token and rejects expired ones.
func redeemToken(ctx context.Context, storage TokenStorage, raw, purpose string) (*VerificationToken, error) {
	token, err := storage.ConsumeToken(ctx, hashToken(raw), purpose)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if time.Now().After(token.ExpiresAt) {
		return nil, ErrInvalidToken
	}
	return token, nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
