package utils

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyCipher_RoundTrip(t *testing.T) {
	c := NewKeyCipher("a passphrase that is hashed down")
	for _, plain := range []string{"", "gm_abc", strings.Repeat("x", 4096), "ünïcødé ✓"} {
		enc, err := c.Encrypt(plain)
		require.NoError(t, err)
		assert.Len(t, strings.Split(enc, "."), 3)

		got, err := c.Decrypt(enc)
		require.NoError(t, err)
		assert.Equal(t, plain, got)
	}
}

func TestKeyCipher_SecretFormats(t *testing.T) {
	hexSecret := strings.Repeat("ab", 32)
	assert.Equal(t, byte(0xab), NewKeyCipher(hexSecret).key[0])

	raw := make([]byte, 32)
	raw[0] = 7
	assert.Equal(t, byte(7), NewKeyCipher(base64.StdEncoding.EncodeToString(raw)).key[0])

	assert.Len(t, NewKeyCipher("short").key, 32)
	assert.False(t, NewKeyCipher("   ").Configured())
}

func TestKeyCipher_Unconfigured(t *testing.T) {
	c := NewKeyCipher("")
	_, err := c.Encrypt("gm_x")
	assert.ErrorIs(t, err, ErrConfiguration)

	var nilCipher *KeyCipher
	_, err = nilCipher.Encrypt("gm_x")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestKeyCipher_TamperDetected(t *testing.T) {
	c := NewKeyCipher("secret")
	enc, err := c.Encrypt("gm_the_real_key")
	require.NoError(t, err)

	for seg := 0; seg < 3; seg++ {
		parts := strings.Split(enc, ".")
		b, err := base64.StdEncoding.DecodeString(parts[seg])
		require.NoError(t, err)
		b[0] ^= 0x01
		parts[seg] = base64.StdEncoding.EncodeToString(b)

		_, err = c.Decrypt(strings.Join(parts, "."))
		assert.ErrorIs(t, err, ErrDecryption, "segment %d", seg)
	}
}

func TestKeyCipher_RotatedSecret(t *testing.T) {
	enc, err := NewKeyCipher("old").Encrypt("gm_key")
	require.NoError(t, err)

	_, err = NewKeyCipher("new").Decrypt(enc)
	assert.ErrorIs(t, err, ErrDecryption)
}

func TestKeyCipher_Malformed(t *testing.T) {
	c := NewKeyCipher("secret")
	for _, s := range []string{"", "a.b", "a.b.c.d", "!!.??.##", "AAAA.AAAA.AAAA"} {
		_, err := c.Decrypt(s)
		assert.ErrorIs(t, err, ErrDecryption, s)
	}
}
