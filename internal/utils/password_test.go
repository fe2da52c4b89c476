package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	stored, err := HashPassword("correct horse")
	require.NoError(t, err)

	parts := strings.Split(stored, "$")
	require.Len(t, parts, 4)
	assert.Equal(t, "pbkdf2_sha256", parts[0])
	assert.Equal(t, "200000", parts[1])

	assert.True(t, VerifyPassword("correct horse", stored))
	assert.False(t, VerifyPassword("wrong horse", stored))
}

func TestHashPassword_UsesFreshSalt(t *testing.T) {
	a, err := HashPassword("secret1")
	require.NoError(t, err)
	b, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashPassword_RejectsShort(t *testing.T) {
	_, err := HashPassword("12345")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = HashPassword("123456")
	assert.NoError(t, err)
}

func TestPasswordTooShort_CountsCharacters(t *testing.T) {
	assert.True(t, PasswordTooShort("ééé"), "three characters in six bytes")
	assert.False(t, PasswordTooShort("ééééé1"))

	_, err := HashPassword("ééé")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestVerifyPassword_FailsClosed(t *testing.T) {
	stored, err := HashPassword("secret1")
	require.NoError(t, err)
	parts := strings.Split(stored, "$")

	cases := map[string]string{
		"empty":          "",
		"three fields":   strings.Join(parts[:3], "$"),
		"five fields":    stored + "$extra",
		"unknown algo":   "bcrypt$" + strings.Join(parts[1:], "$"),
		"zero iter":      parts[0] + "$0$" + parts[2] + "$" + parts[3],
		"negative iter":  parts[0] + "$-5$" + parts[2] + "$" + parts[3],
		"non-num iter":   parts[0] + "$abc$" + parts[2] + "$" + parts[3],
		"truncated hash": parts[0] + "$" + parts[1] + "$" + parts[2] + "$" + parts[3][:10],
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			assert.False(t, VerifyPassword("secret1", s))
		})
	}
}

func TestVerifyPassword_HonoursStoredIterations(t *testing.T) {
	// A hash produced with a lower iteration count keeps verifying after the
	// default changes.
	stored := "pbkdf2_sha256$1000$c2FsdHNhbHQ=$" + pbkdf2B64("legacy-pass", "c2FsdHNhbHQ=", 1000)
	assert.True(t, VerifyPassword("legacy-pass", stored))
	assert.False(t, VerifyPassword("legacy-pasS", stored))
}
