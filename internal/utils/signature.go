package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HMACSHA256Hex creates a hex HMAC-SHA256 of input. Used for session signing.
func HMACSHA256Hex(secret, input string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(input))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHMACSHA256Hex validates a hex HMAC-SHA256 signature.
func VerifyHMACSHA256Hex(secret, input, signature string) bool {
	expected := HMACSHA256Hex(secret, input)
	return hmac.Equal([]byte(signature), []byte(expected))
}
