package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/herbal_api/internal/models"
	"github.com/GTDGit/herbal_api/internal/session"
	"github.com/GTDGit/herbal_api/internal/utils"
)

// PartnerCredential is what a request presents to identify a partner:
// either an APIKeyCredential or a SessionCredential.
type PartnerCredential interface {
	partnerCredential()
}

// APIKeyCredential is a plaintext API key from the x-api-key header.
type APIKeyCredential struct {
	Key string
}

// SessionCredential is the value of the partner session cookie.
type SessionCredential struct {
	Token string
}

func (APIKeyCredential) partnerCredential()  {}
func (SessionCredential) partnerCredential() {}

// CredentialFromRequest picks the credential a request presents. A non-empty
// API key always wins over a session cookie. Nil means neither was sent.
func CredentialFromRequest(apiKeyHeader, sessionCookie string) PartnerCredential {
	if k := strings.TrimSpace(apiKeyHeader); k != "" {
		return APIKeyCredential{Key: k}
	}
	if sessionCookie != "" {
		return SessionCredential{Token: sessionCookie}
	}
	return nil
}

// KeyUsageRecorder stamps lastUsedAt on an API key. Implementations must not
// block or fail the request that used the key.
type KeyUsageRecorder interface {
	RecordKeyUsage(ctx context.Context, keyID string, at time.Time)
}

// SyncKeyUsageRecorder writes lastUsedAt inline. Write errors are logged only.
type SyncKeyUsageRecorder struct {
	keys APIKeyStore
}

// NewSyncKeyUsageRecorder creates a SyncKeyUsageRecorder.
func NewSyncKeyUsageRecorder(keys APIKeyStore) *SyncKeyUsageRecorder {
	return &SyncKeyUsageRecorder{keys: keys}
}

// RecordKeyUsage implements KeyUsageRecorder.
func (r *SyncKeyUsageRecorder) RecordKeyUsage(ctx context.Context, keyID string, at time.Time) {
	if err := r.keys.TouchLastUsed(ctx, []string{keyID}, at); err != nil {
		log.Warn().Err(err).Str("api_key_id", keyID).Msg("Failed to stamp API key usage")
	}
}

// PartnerAuthService resolves request credentials to an ACTIVE partner.
type PartnerAuthService struct {
	partners PartnerStore
	keys     APIKeyStore
	signer   *session.PartnerSigner
	usage    KeyUsageRecorder
	now      func() time.Time
}

// NewPartnerAuthService creates a PartnerAuthService.
func NewPartnerAuthService(partners PartnerStore, keys APIKeyStore, signer *session.PartnerSigner, usage KeyUsageRecorder) *PartnerAuthService {
	return &PartnerAuthService{
		partners: partners,
		keys:     keys,
		signer:   signer,
		usage:    usage,
		now:      time.Now,
	}
}

// Resolve returns the partner behind cred. Bad, unknown, expired or inactive
// credentials all yield utils.ErrUnauthorized; a storage failure yields
// utils.ErrStorageUnavailable so it is never mistaken for a rejection.
func (s *PartnerAuthService) Resolve(ctx context.Context, cred PartnerCredential) (*models.Partner, error) {
	switch c := cred.(type) {
	case APIKeyCredential:
		return s.resolveAPIKey(ctx, c.Key)
	case SessionCredential:
		return s.resolveSession(ctx, c.Token)
	}
	return nil, utils.ErrUnauthorized
}

func (s *PartnerAuthService) resolveAPIKey(ctx context.Context, key string) (*models.Partner, error) {
	if key == "" {
		return nil, utils.ErrUnauthorized
	}
	k, err := s.keys.GetActiveByHash(ctx, utils.SHA256Hex(key))
	if err != nil {
		return nil, unauthorizedOr(err)
	}
	partner, err := s.activePartner(ctx, k.PartnerID)
	if err != nil {
		return nil, err
	}
	if s.usage != nil {
		s.usage.RecordKeyUsage(ctx, k.ID, s.now())
	}
	return partner, nil
}

func (s *PartnerAuthService) resolveSession(ctx context.Context, token string) (*models.Partner, error) {
	partnerID, ok := s.signer.Verify(token, s.now())
	if !ok {
		return nil, utils.ErrUnauthorized
	}
	return s.activePartner(ctx, partnerID)
}

func (s *PartnerAuthService) activePartner(ctx context.Context, id string) (*models.Partner, error) {
	p, err := s.partners.GetByID(ctx, id)
	if err != nil {
		return nil, unauthorizedOr(err)
	}
	if !p.IsActive() {
		return nil, utils.ErrUnauthorized
	}
	return p, nil
}

// IssueSession signs a partner session token valid for ttl.
func (s *PartnerAuthService) IssueSession(partnerID string, ttl time.Duration) (string, time.Time) {
	exp := s.now().Add(ttl)
	return s.signer.Sign(partnerID, exp), exp
}

func unauthorizedOr(err error) error {
	if errors.Is(err, utils.ErrNotFound) {
		return utils.ErrUnauthorized
	}
	return storageErr(err)
}
