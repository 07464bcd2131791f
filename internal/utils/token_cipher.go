package utils

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
)

// TokenCipher seals provider access tokens with NaCl secretbox before they
// are stored. Sealed values are base64(nonce || box).
type TokenCipher struct {
	key [keySize]byte
}

// NewTokenCipher builds a cipher from a base64 encoded 32 byte key. An empty
// key yields a random one, which only suits tests and throwaway stores.
func NewTokenCipher(encodedKey string) (*TokenCipher, error) {
	c := &TokenCipher{}
	if encodedKey == "" {
		if _, err := io.ReadFull(rand.Reader, c.key[:]); err != nil {
			return nil, fmt.Errorf("failed to read random bytes: %w", err)
		}
		return c, nil
	}

	raw, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("token encryption key is not valid base64: %w", err)
	}
	if len(raw) != keySize {
		return nil, fmt.Errorf("token encryption key must be %d bytes, got %d", keySize, len(raw))
	}
	copy(c.key[:], raw)
	return c, nil
}

// Seal encrypts plaintext.
func (c *TokenCipher) Seal(plaintext string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &c.key)
	return base64.StdEncoding.EncodeToString(box), nil
}

// Open decrypts a value produced by Seal.
func (c *TokenCipher) Open(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("sealed token is not valid base64: %w", err)
	}
	if len(raw) < nonceSize+secretbox.Overhead {
		return "", errors.New("sealed token is too short")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &c.key)
	if !ok {
		return "", errors.New("sealed token failed authentication")
	}
	return string(plain), nil
}
