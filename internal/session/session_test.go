package session

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Unix(1_760_000_000, 0)

func TestAdminSigner(t *testing.T) {
	s := NewAdminSigner("admin-secret")
	token := s.Sign(now.Add(time.Hour))

	assert.True(t, s.Verify(token, now))
	assert.True(t, s.Verify(token, now.Add(time.Hour)))
	assert.False(t, s.Verify(token, now.Add(time.Hour+time.Second)), "expired")

	assert.False(t, s.Verify("", now))
	assert.False(t, s.Verify("abc", now))
	assert.False(t, s.Verify(token+".x", now))
	assert.False(t, NewAdminSigner("other").Verify(token, now))
	assert.False(t, NewAdminSigner("").Verify(NewAdminSigner("").Sign(now.Add(time.Hour)), now))
}

func TestAdminSigner_TamperedExpiry(t *testing.T) {
	s := NewAdminSigner("admin-secret")
	token := s.Sign(now.Add(time.Hour))
	sig := strings.Split(token, ".")[1]

	longer := strconv.FormatInt(now.Add(48*time.Hour).Unix(), 10)
	assert.False(t, s.Verify(longer+"."+sig, now))
	assert.False(t, s.Verify("notanumber."+sig, now))
	assert.False(t, s.Verify("0."+sig, now))
}

func TestPartnerSigner(t *testing.T) {
	s := NewPartnerSigner("partner-secret")
	token := s.Sign("p_123", now.Add(time.Hour))

	id, ok := s.Verify(token, now)
	require.True(t, ok)
	assert.Equal(t, "p_123", id)

	_, ok = s.Verify(token, now.Add(2*time.Hour))
	assert.False(t, ok, "expired")

	parts := strings.Split(token, ".")
	_, ok = s.Verify("p_999."+parts[1]+"."+parts[2], now)
	assert.False(t, ok, "swapped partner id")

	longer := strconv.FormatInt(now.Add(48*time.Hour).Unix(), 10)
	_, ok = s.Verify(parts[0]+"."+longer+"."+parts[2], now)
	assert.False(t, ok, "tampered expiry")

	_, ok = s.Verify("."+parts[1]+"."+parts[2], now)
	assert.False(t, ok, "empty id")

	_, ok = NewPartnerSigner("").Verify(token, now)
	assert.False(t, ok, "no secret")
}

func TestSignersAreNotInterchangeable(t *testing.T) {
	admin := NewAdminSigner("admin-secret")
	partner := NewPartnerSigner("partner-secret")

	adminToken := admin.Sign(now.Add(time.Hour))
	_, ok := partner.Verify("p_1."+adminToken, now)
	assert.False(t, ok)

	partnerToken := partner.Sign("p_1", now.Add(time.Hour))
	parts := strings.Split(partnerToken, ".")
	assert.False(t, admin.Verify(parts[1]+"."+parts[2], now))
}

func TestCookies(t *testing.T) {
	c := NewCookie(PartnerCookieName, "tok", now, true)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, "/", c.Path)

	cleared := ClearCookie(AdminCookieName, false)
	assert.Equal(t, "", cleared.Value)
	assert.True(t, cleared.Expires.Before(now))
}
