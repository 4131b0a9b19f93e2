// Package cryptox holds the server-side cryptographic primitives: the vault
// cipher used for stored secrets and the password hasher used for account
// credentials.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/lifedesk/internal/common"
	"golang.org/x/crypto/hkdf"
)

const vaultKeyInfo = "lifedesk vault v1"

// VaultCipher encrypts and decrypts vault secrets with AES-256-GCM.
//
// The AES key is derived from a process-wide secret with HKDF-SHA256, so any
// non-empty secret string can be configured. Each Encrypt call draws a fresh
// 12-byte nonce; the output is base64(nonce || sealed).
type VaultCipher struct {
	aead cipher.AEAD
}

// NewVaultCipher derives the vault key from secret and prepares the AEAD.
func NewVaultCipher(secret string) (*VaultCipher, error) {
	if secret == "" {
		return nil, errors.New("vault key must not be empty")
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(vaultKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive vault key: %w", err)
	}
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &VaultCipher{aead: aead}, nil
}

// Encrypt seals plaintext and returns the encoded ciphertext.
func (c *VaultCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt. Malformed input, tampering and a
// changed key all yield common.ErrDecryption.
func (c *VaultCipher) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: bad encoding", common.ErrDecryption)
	}

	ns := c.aead.NonceSize()
	if len(raw) < ns+c.aead.Overhead() {
		return "", fmt.Errorf("%w: ciphertext too short", common.ErrDecryption)
	}

	plaintext, err := c.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: authentication failed", common.ErrDecryption)
	}

	return string(plaintext), nil
}
