package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

const (
	gcmNonceLen = 12
	gcmTagLen   = 16
)

var hexKeyPattern = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)

// KeyCipher encrypts API keys with AES-256-GCM so they can be revealed later.
// The zero value has no key: Encrypt and Decrypt fail with ErrConfiguration.
type KeyCipher struct {
	key []byte
}

// NewKeyCipher derives the AES key from secret. An empty secret yields a
// cipher that refuses to operate.
func NewKeyCipher(secret string) *KeyCipher {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return &KeyCipher{}
	}
	return &KeyCipher{key: parseEncryptionSecret(secret)}
}

// parseEncryptionSecret accepts 64 hex chars or base64 of 32 bytes, and
// otherwise hashes the secret down to 32 bytes.
func parseEncryptionSecret(secret string) []byte {
	if hexKeyPattern.MatchString(secret) {
		if b, err := hex.DecodeString(secret); err == nil {
			return b
		}
	}
	if b, err := base64.StdEncoding.DecodeString(secret); err == nil && len(b) == 32 {
		return b
	}
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}

// Configured reports whether an encryption secret is available.
func (k *KeyCipher) Configured() bool {
	return k != nil && len(k.key) == 32
}

func (k *KeyCipher) aead() (cipher.AEAD, error) {
	if !k.Configured() {
		return nil, fmt.Errorf("API_KEY_ENCRYPTION_SECRET is not set: %w", ErrConfiguration)
	}
	block, err := aes.NewCipher(k.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return cipher.NewGCM(block)
}

// Encrypt returns base64(iv).base64(tag).base64(ciphertext).
func (k *KeyCipher) Encrypt(plain string) (string, error) {
	gcm, err := k.aead()
	if err != nil {
		return "", err
	}
	iv := make([]byte, gcmNonceLen)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nil, iv, []byte(plain), nil)
	ct, tag := sealed[:len(sealed)-gcmTagLen], sealed[len(sealed)-gcmTagLen:]

	return strings.Join([]string{
		base64.StdEncoding.EncodeToString(iv),
		base64.StdEncoding.EncodeToString(tag),
		base64.StdEncoding.EncodeToString(ct),
	}, "."), nil
}

// Decrypt reverses Encrypt. A tampered or malformed value fails with
// ErrDecryption and never yields partial plaintext.
func (k *KeyCipher) Decrypt(encrypted string) (string, error) {
	gcm, err := k.aead()
	if err != nil {
		return "", err
	}
	parts := strings.Split(encrypted, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("invalid encrypted api key format: %w", ErrDecryption)
	}
	iv, err1 := base64.StdEncoding.DecodeString(parts[0])
	tag, err2 := base64.StdEncoding.DecodeString(parts[1])
	ct, err3 := base64.StdEncoding.DecodeString(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return "", fmt.Errorf("invalid encrypted api key encoding: %w", ErrDecryption)
	}
	if len(iv) != gcmNonceLen || len(tag) != gcmTagLen {
		return "", fmt.Errorf("invalid encrypted api key parameters: %w", ErrDecryption)
	}

	plain, err := gcm.Open(nil, iv, append(ct, tag...), nil)
	if err != nil {
		return "", fmt.Errorf("authentication failed: %w", ErrDecryption)
	}
	return string(plain), nil
}
