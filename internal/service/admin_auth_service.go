package service

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/herbal_api/internal/session"
	"github.com/GTDGit/herbal_api/internal/utils"
)

// AdminAuthService checks the shared admin password and issues admin sessions.
// The configured password may be plaintext or a bcrypt hash.
type AdminAuthService struct {
	password string
	signer   *session.AdminSigner
	ttl      time.Duration
	now      func() time.Time
}

// NewAdminAuthService creates an AdminAuthService.
func NewAdminAuthService(password string, signer *session.AdminSigner, ttl time.Duration) *AdminAuthService {
	return &AdminAuthService{password: password, signer: signer, ttl: ttl, now: time.Now}
}

// Login returns a signed session token and its expiry when password matches.
// An unset admin password rejects every attempt.
func (s *AdminAuthService) Login(password string) (string, time.Time, error) {
	if !s.passwordMatches(password) {
		log.Warn().Msg("Admin login rejected")
		return "", time.Time{}, utils.WithMessage(utils.ErrUnauthorized, "Invalid password")
	}
	exp := s.now().Add(s.ttl)
	log.Info().Time("expires_at", exp).Msg("Admin login successful")
	return s.signer.Sign(exp), exp, nil
}

// Authenticated reports whether token is a valid, unexpired admin session.
func (s *AdminAuthService) Authenticated(token string) bool {
	return s.signer.Verify(token, s.now())
}

func (s *AdminAuthService) passwordMatches(password string) bool {
	if s.password == "" || password == "" {
		return false
	}
	if isBcryptHash(s.password) {
		return bcrypt.CompareHashAndPassword([]byte(s.password), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(s.password), []byte(password)) == 1
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}
