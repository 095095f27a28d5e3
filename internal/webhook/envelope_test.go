package webhook

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encrypt(t *testing.T, key string, plaintext []byte) string {
	t.Helper()

	block, err := aes.NewCipher(keyBytes(key))
	require.NoError(t, err)

	pad := aes.BlockSize - len(plaintext)%aes.BlockSize
	padded := append(append([]byte{}, plaintext...), bytes.Repeat([]byte{byte(pad)}, pad)...)

	iv := make([]byte, aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return base64.StdEncoding.EncodeToString(out)
}

func TestDecryptRoundTrip(t *testing.T) {
	key := "0123456789abcdef0123456789abcdef"
	event := map[string]any{
		"type":      "url_verification",
		"challenge": "abc",
	}
	plaintext, err := json.Marshal(event)
	require.NoError(t, err)

	got, err := Decrypt(encrypt(t, key, plaintext), key)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(got, &decoded))
	assert.Equal(t, "abc", decoded["challenge"])
}

func TestDecryptShortKeyIsDigested(t *testing.T) {
	key := "short-key"
	plaintext := []byte(`{"ok":true}`)

	got, err := Decrypt(encrypt(t, key, plaintext), key)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestDecryptWithoutKey(t *testing.T) {
	_, err := Decrypt("aGVsbG8=", "")
	assert.ErrorIs(t, err, ErrEncryptionNotConfigured)
}

func TestDecryptBadBase64(t *testing.T) {
	_, err := Decrypt("not base64!!!", "0123456789abcdef0123456789abcdef")
	assert.ErrorIs(t, err, ErrDecryptFailed)
}

func TestDecryptTruncatedCiphertext(t *testing.T) {
	// Valid base64 but not a block multiple.
	short := base64.StdEncoding.EncodeToString([]byte("abc"))
	_, err := Decrypt(short, "0123456789abcdef0123456789abcdef")
	assert.ErrorIs(t, err, ErrDecryptFailed)
}

func TestDecryptWrongKey(t *testing.T) {
	key := "0123456789abcdef0123456789abcdef"
	ciphertext := encrypt(t, key, []byte(`{"ok":true}`))

	_, err := Decrypt(ciphertext, "ffffffffffffffffffffffffffffffff")
	if err == nil {
		// CBC with a wrong key almost always breaks the padding; when it
		// does not, the plaintext must still differ.
		got, _ := Decrypt(ciphertext, "ffffffffffffffffffffffffffffffff")
		assert.NotEqual(t, []byte(`{"ok":true}`), got)
		return
	}
	assert.True(t, errors.Is(err, ErrDecryptFailed))
}
