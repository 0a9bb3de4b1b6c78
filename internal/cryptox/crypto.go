// Package cryptox holds the document encryption helpers and random token
// generation.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

var (
	ErrKeySize = errors.New("encryption key must be 32 bytes or 64 hex characters")
	ErrDecrypt = errors.New("decrypt failed")
)

// ParseKey turns the configured key string into AES-256 key bytes.
// It accepts either exactly 32 raw bytes or 64 hex characters.
func ParseKey(s string) ([]byte, error) {
	if len(s) == KeySize {
		return []byte(s), nil
	}
	if len(s) == 2*KeySize {
		if b, err := hex.DecodeString(s); err == nil {
			return b, nil
		}
	}
	return nil, ErrKeySize
}

// Encrypt seals plaintext with AES-256-GCM under key using a fresh random
// nonce. It returns the hex encoded ciphertext (including the GCM tag) and the
// hex encoded nonce; the two must always be stored together.
func Encrypt(plaintext, key []byte) (ciphertextHex, ivHex string, err error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return "", "", err
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", "", fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := aesgcm.Seal(nil, nonce, plaintext, nil)
	return hex.EncodeToString(ciphertext), hex.EncodeToString(nonce), nil
}

// Decrypt reverses Encrypt. A wrong key, a tampered ciphertext or a malformed
// IV all return an error wrapping ErrDecrypt and never any plaintext.
func Decrypt(ciphertextHex, ivHex string, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce, err := hex.DecodeString(ivHex)
	if err != nil {
		return nil, fmt.Errorf("%w: iv: %v", ErrDecrypt, err)
	}
	if len(nonce) != aesgcm.NonceSize() {
		return nil, fmt.Errorf("%w: iv must be %d bytes, got %d", ErrDecrypt, aesgcm.NonceSize(), len(nonce))
	}
	ciphertext, err := hex.DecodeString(ciphertextHex)
	if err != nil {
		return nil, fmt.Errorf("%w: ciphertext: %v", ErrDecrypt, err)
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return plaintext, nil
}

// RandomToken returns n bytes from crypto/rand, hex encoded.
func RandomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
