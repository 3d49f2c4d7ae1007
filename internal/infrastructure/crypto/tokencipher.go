// Package crypto provides the symmetric cipher that protects OAuth tokens
// at rest. Ciphertext is self-contained: a random nonce is generated per
// call and prepended as a hex prefix, so decryption needs no state beyond
// the process-wide key.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"stridesync/internal/shared/errors"
)

const keySize = 32

// TokenCipher encrypts and decrypts token strings.
type TokenCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

type tokenCipher struct {
	aead cipher.AEAD
}

// NewTokenCipher creates an AES-256-GCM cipher from a 32-byte key. The key
// is process-wide configuration loaded once at startup and must never be
// logged or exposed.
func NewTokenCipher(key []byte) (TokenCipher, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("token cipher key must be %d bytes, got %d", keySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &tokenCipher{aead: aead}, nil
}

// Encrypt returns "hexNonce:hexCiphertext" with a fresh random nonce.
func (c *tokenCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Malformed or undecryptable input yields a
// DecryptionError so callers can tell corrupted credentials apart from a
// never-connected state; it never degrades to an empty string.
func (c *tokenCipher) Decrypt(ciphertext string) (string, error) {
	nonceHex, sealedHex, found := strings.Cut(ciphertext, ":")
	if !found {
		return "", errors.NewDecryptionError("missing nonce delimiter")
	}

	nonce, err := hex.DecodeString(nonceHex)
	if err != nil || len(nonce) != c.aead.NonceSize() {
		return "", errors.NewDecryptionError("malformed nonce")
	}

	sealed, err := hex.DecodeString(sealedHex)
	if err != nil {
		return "", errors.NewDecryptionError("malformed ciphertext")
	}

	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", errors.NewDecryptionError("authentication failed")
	}

	return string(plaintext), nil
}
