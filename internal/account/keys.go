package account

import (
	"context"

	"github.com/google/uuid"
)

// KeyStorage defines the storage operations needed by the key service.
type KeyStorage interface {
	GetEncryptionKey(ctx context.Context, userID uuid.UUID) (*EncryptionKey, error)
}

// KeyService unwraps a user's stored encryption key and applies it to
// arbitrary payloads. The wrapped key never leaves this layer in plaintext.
type KeyService struct {
	cfg     Config
	storage KeyStorage
}

func NewKeyService(cfg Config, storage KeyStorage) *KeyService {
	return &KeyService{cfg: cfg, storage: storage}
}

// userKey fetches and unwraps the caller's current key.
func (s *KeyService) userKey(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	stored, err := s.storage.GetEncryptionKey(ctx, userID)
	if err != nil {
		return nil, err
	}
	return DecryptSecretKey([]byte(s.cfg.MasterSecret), stored.Key)
}

// EncryptForUser encrypts a UTF-8 payload under the user's key.
func (s *KeyService) EncryptForUser(ctx context.Context, userID uuid.UUID, plaintext string) ([]byte, error) {
	key, err := s.userKey(ctx, userID)
	if err != nil {
		return nil, err
	}
	return EncryptUserData(key, plaintext)
}

// DecryptForUser is the inverse of EncryptForUser.
func (s *KeyService) DecryptForUser(ctx context.Context, userID uuid.UUID, ciphertext []byte) (string, error) {
	key, err := s.userKey(ctx, userID)
	if err != nil {
		return "", err
	}
	return DecryptUserData(key, ciphertext)
}
