// Package pan protects primary account numbers: encryption at rest and
// masking for display.
package pan

import (
	"crypto/aes"
	"encoding/base64"
	"errors"
	"fmt"
)

const keySize = 16 // AES-128

// ErrCipher indicates input that cannot be decrypted: truncated data, a
// key mismatch, or a value never produced by this cipher.
var ErrCipher = errors.New("pan cipher failure")

// Cipher encrypts and decrypts card numbers with AES-128.
//
// Encryption is deterministic (ECB with PKCS#7 padding): equal card
// numbers always yield equal ciphertexts, which lets the store enforce
// uniqueness directly on the encrypted column.
type Cipher struct {
	key []byte
}

// NewCipher derives a fixed-size key from the configured secret. Secrets
// shorter than 16 bytes are zero-padded, longer ones truncated.
func NewCipher(secret string) *Cipher {
	key := make([]byte, keySize)
	copy(key, secret)
	return &Cipher{key: key}
}

// Encrypt returns the Base64-encoded ciphertext of plaintext.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCipher, err)
	}
	padded := pad([]byte(plaintext))
	out := make([]byte, len(padded))
	for i := 0; i < len(padded); i += aes.BlockSize {
		block.Encrypt(out[i:i+aes.BlockSize], padded[i:i+aes.BlockSize])
	}
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt. Corrupted or foreign input fails with an error
// wrapping ErrCipher.
func (c *Cipher) Decrypt(encrypted string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("%w: invalid base64: %v", ErrCipher, err)
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: ciphertext length %d", ErrCipher, len(raw))
	}
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCipher, err)
	}
	out := make([]byte, len(raw))
	for i := 0; i < len(raw); i += aes.BlockSize {
		block.Decrypt(out[i:i+aes.BlockSize], raw[i:i+aes.BlockSize])
	}
	plain, err := unpad(out)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func pad(data []byte) []byte {
	n := aes.BlockSize - len(data)%aes.BlockSize
	for i := 0; i < n; i++ {
		data = append(data, byte(n))
	}
	return data
}

func unpad(data []byte) ([]byte, error) {
	n := int(data[len(data)-1])
	if n == 0 || n > aes.BlockSize || n > len(data) {
		return nil, fmt.Errorf("%w: invalid padding", ErrCipher)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: invalid padding", ErrCipher)
		}
	}
	return data[:len(data)-n], nil
}
