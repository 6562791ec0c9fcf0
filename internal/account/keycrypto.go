package account

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
)

// Wire format for wrapped keys and encrypted user data: a fresh random
// 16-byte IV followed by AES-CFB ciphertext. CFB is a stream construction,
// so ciphertext length equals plaintext length plus the IV; there is no
// authentication tag, and corrupted ciphertext decrypts to garbage rather
// than failing. Existing stored material depends on this exact layout.

const ivSize = aes.BlockSize

// KeySize is the length of a per-user data-encryption key.
const KeySize = 32

// GenerateUserKey returns 32 bytes of cryptographically secure random data.
func GenerateUserKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

// EncryptSecretKey wraps a 32-byte per-user key under the first 32 bytes of
// the master secret, returning IV || ciphertext.
func EncryptSecretKey(masterSecret, key []byte) ([]byte, error) {
	if len(masterSecret) < 32 {
		return nil, ErrMasterSecretTooShort
	}
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}
	return cfbEncrypt(masterSecret[:32], key)
}

// DecryptSecretKey unwraps a key previously produced by EncryptSecretKey.
func DecryptSecretKey(masterSecret, wrapped []byte) ([]byte, error) {
	if len(masterSecret) < 32 {
		return nil, ErrMasterSecretTooShort
	}
	key, err := cfbDecrypt(masterSecret[:32], wrapped)
	if err != nil {
		return nil, err
	}
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}
	return key, nil
}

// EncryptUserData encrypts a UTF-8 payload with the user's plaintext key,
// returning IV || ciphertext.
func EncryptUserData(key []byte, plaintext string) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}
	return cfbEncrypt(key, []byte(plaintext))
}

// DecryptUserData is the inverse of EncryptUserData.
func DecryptUserData(key, ciphertext []byte) (string, error) {
	if len(key) != KeySize {
		return "", ErrInvalidKeySize
	}
	plaintext, err := cfbDecrypt(key, ciphertext)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func cfbEncrypt(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	out := make([]byte, ivSize+len(plaintext))
	iv := out[:ivSize]
	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}

	cipher.NewCFBEncrypter(block, iv).XORKeyStream(out[ivSize:], plaintext)
	return out, nil
}

func cfbDecrypt(key, data []byte) ([]byte, error) {
	if len(data) < ivSize {
		return nil, ErrCiphertextTooShort
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	plaintext := make([]byte, len(data)-ivSize)
	cipher.NewCFBDecrypter(block, data[:ivSize]).XORKeyStream(plaintext, data[ivSize:])
	return plaintext, nil
}
