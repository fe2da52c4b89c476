package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/pbkdf2"
)

const (
	passwordAlgo       = "pbkdf2_sha256"
	passwordIterations = 200_000
	passwordKeyLen     = 32
	passwordSaltLen    = 16

	// MinPasswordLength is the shortest password accepted anywhere.
	MinPasswordLength = 6
)

// PasswordTooShort reports whether password has fewer than
// MinPasswordLength characters.
func PasswordTooShort(password string) bool {
	return utf8.RuneCountInString(password) < MinPasswordLength
}

// HashPassword derives a self-describing PBKDF2 hash:
// pbkdf2_sha256$<iterations>$<salt>$<hash>.
func HashPassword(password string) (string, error) {
	if PasswordTooShort(password) {
		return "", fmt.Errorf("password must be at least %d characters: %w", MinPasswordLength, ErrInvalidInput)
	}

	raw := make([]byte, passwordSaltLen)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	salt := base64.StdEncoding.EncodeToString(raw)

	derived := pbkdf2.Key([]byte(password), []byte(salt), passwordIterations, passwordKeyLen, sha256.New)
	hash := base64.StdEncoding.EncodeToString(derived)

	return fmt.Sprintf("%s$%d$%s$%s", passwordAlgo, passwordIterations, salt, hash), nil
}

// VerifyPassword checks password against a stored hash. Malformed input or an
// unknown algorithm never verifies.
func VerifyPassword(password, stored string) bool {
	parts := strings.Split(stored, "$")
	if len(parts) != 4 {
		return false
	}
	algo, iterStr, salt, hash := parts[0], parts[1], parts[2], parts[3]
	if algo != passwordAlgo {
		return false
	}
	iterations, err := strconv.Atoi(iterStr)
	if err != nil || iterations <= 0 {
		return false
	}

	derived := pbkdf2.Key([]byte(password), []byte(salt), iterations, passwordKeyLen, sha256.New)
	candidate := []byte(base64.StdEncoding.EncodeToString(derived))
	expected := []byte(hash)

	if len(candidate) != len(expected) {
		return false
	}
	return subtle.ConstantTimeCompare(candidate, expected) == 1
}
