// Package session implements the stateless signed-cookie sessions used by the
// admin back-office and the partner dashboard. Tokens carry their own expiry
// and an HMAC-SHA256 signature; nothing is stored server-side.
package session

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GTDGit/herbal_api/internal/utils"
)

const (
	AdminCookieName   = "gm_admin"
	PartnerCookieName = "gm_partner"
)

// AdminSigner signs admin sessions: "<exp>.<sig>" with sig = HMAC(secret, exp).
// No identity is encoded; the admin is a single shared-password principal.
type AdminSigner struct {
	secret string
}

// NewAdminSigner constructs an AdminSigner. An empty secret makes every
// verification fail.
func NewAdminSigner(secret string) *AdminSigner {
	return &AdminSigner{secret: secret}
}

// Sign returns a token valid until expiresAt.
func (s *AdminSigner) Sign(expiresAt time.Time) string {
	exp := strconv.FormatInt(expiresAt.Unix(), 10)
	return exp + "." + utils.HMACSHA256Hex(s.secret, exp)
}

// Verify reports whether token is a well-formed, unexpired admin session.
func (s *AdminSigner) Verify(token string, now time.Time) bool {
	if token == "" || s.secret == "" {
		return false
	}
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return false
	}
	expStr, sig := parts[0], parts[1]
	if !unexpired(expStr, now) {
		return false
	}
	return utils.VerifyHMACSHA256Hex(s.secret, expStr, sig)
}

// PartnerSigner signs partner sessions: "<partnerId>.<exp>.<sig>" with
// sig = HMAC(secret, partnerId + "." + exp).
type PartnerSigner struct {
	secret string
}

// NewPartnerSigner constructs a PartnerSigner.
func NewPartnerSigner(secret string) *PartnerSigner {
	return &PartnerSigner{secret: secret}
}

// Sign returns a token binding partnerID until expiresAt.
func (s *PartnerSigner) Sign(partnerID string, expiresAt time.Time) string {
	payload := partnerID + "." + strconv.FormatInt(expiresAt.Unix(), 10)
	return payload + "." + utils.HMACSHA256Hex(s.secret, payload)
}

// Verify returns the partner id bound by a valid, unexpired token. The caller
// must still check that the partner exists and is ACTIVE.
func (s *PartnerSigner) Verify(token string, now time.Time) (string, bool) {
	if token == "" || s.secret == "" {
		return "", false
	}
	// Partner ids never contain dots.
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", false
	}
	partnerID, expStr, sig := parts[0], parts[1], parts[2]
	if partnerID == "" || !unexpired(expStr, now) {
		return "", false
	}
	if !utils.VerifyHMACSHA256Hex(s.secret, partnerID+"."+expStr, sig) {
		return "", false
	}
	return partnerID, true
}

func unexpired(expStr string, now time.Time) bool {
	exp, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil || exp <= 0 {
		return false
	}
	return now.Unix() <= exp
}

// NewCookie builds the session cookie for token.
func NewCookie(name, token string, expiresAt time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie builds an already-expired cookie that removes name.
func ClearCookie(name string, secure bool) *http.Cookie {
	return NewCookie(name, "", time.Unix(0, 0), secure)
}
