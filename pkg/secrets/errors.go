package secrets

import "errors"

var (
	// ErrInvalidKeyLength indicates a key that is not exactly KeySize bytes.
	ErrInvalidKeyLength = errors.New("secrets: invalid key length")

	// ErrEncryptionFailed indicates a failure during encryption.
	ErrEncryptionFailed = errors.New("secrets: encryption failed")

	// ErrDecryptionFailed indicates a failure during decryption or authentication.
	ErrDecryptionFailed = errors.New("secrets: decryption failed")

	// ErrInvalidCiphertext indicates malformed or truncated ciphertext.
	ErrInvalidCiphertext = errors.New("secrets: invalid ciphertext")

	// ErrKeyGenerationFailed indicates the random source failed.
	ErrKeyGenerationFailed = errors.New("secrets: key generation failed")
)
