// Package webhook parses the platform's event envelope: optional AES
// decryption of the transport wrapper and classification of the payload
// into the event shapes the bot handles.
package webhook

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

var (
	// ErrEncryptionNotConfigured is returned when a ciphertext arrives but
	// no encrypt key is configured.
	ErrEncryptionNotConfigured = errors.New("encryption not configured")
	// ErrDecryptFailed wraps any decrypt or unpadding failure. The cause is
	// for logs only and must not be echoed to the caller.
	ErrDecryptFailed = errors.New("decryption failed")
)

// Decrypt decodes and decrypts an encrypted envelope payload. The platform
// uses AES-256-CBC with an all-zero IV; keys that are not exactly 32 bytes
// are digested with SHA-256 first.
func Decrypt(ciphertext, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEncryptionNotConfigured
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptFailed, err)
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d not a block multiple", ErrDecryptFailed, len(raw))
	}

	block, err := aes.NewCipher(keyBytes(key))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptFailed, err)
	}

	iv := make([]byte, aes.BlockSize)
	plaintext := make([]byte, len(raw))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, raw)

	plaintext, err = stripPKCS7(plaintext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptFailed, err)
	}
	return plaintext, nil
}

func keyBytes(key string) []byte {
	if len(key) == 32 {
		return []byte(key)
	}
	sum := sha256.Sum256([]byte(key))
	return sum[:]
}

func stripPKCS7(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("empty plaintext")
	}
	pad := int(data[len(data)-1])
	if pad == 0 || pad > aes.BlockSize || pad > len(data) {
		return nil, errors.New("invalid padding")
	}
	for _, b := range data[len(data)-pad:] {
		if int(b) != pad {
			return nil, errors.New("invalid padding")
		}
	}
	return data[:len(data)-pad], nil
}
