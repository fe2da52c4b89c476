package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// APIKeyTag marks every partner API key so it is recognizable in configs and logs.
const APIKeyTag = "gm_"

const apiKeyPrefixLen = 8

// GeneratedKey is a freshly minted API key. Plain must be shown to the caller
// once and never stored.
type GeneratedKey struct {
	Plain  string
	Prefix string
	Hash   string
}

// RandomAPIKey generates a key: gm_ followed by 32 random bytes, base64url.
func RandomAPIKey() (GeneratedKey, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return GeneratedKey{}, err
	}
	plain := APIKeyTag + base64.RawURLEncoding.EncodeToString(b)
	return GeneratedKey{
		Plain:  plain,
		Prefix: plain[:apiKeyPrefixLen],
		Hash:   SHA256Hex(plain),
	}, nil
}

// SHA256Hex returns the lowercase hex SHA-256 digest of input.
func SHA256Hex(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
