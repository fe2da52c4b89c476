package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/herbal_api/internal/models"
	"github.com/GTDGit/herbal_api/internal/utils"
)

const (
	msgNotRevealable  = "This key cannot be revealed again. Create a new key and store it safely."
	msgDecryptFailed  = "Unable to decrypt key. Check API_KEY_ENCRYPTION_SECRET."
	msgNotConfigured  = "API key storage is not configured. Set API_KEY_ENCRYPTION_SECRET"
	msgAPIKeyNotFound = "Not found"

	msgAdminNotRevealable = "API key cannot be revealed (not stored)"
	msgAdminDecryptFailed = "Unable to decrypt API key. Check API_KEY_ENCRYPTION_SECRET"
)

// RevealScope limits which keys a reveal may read.
type RevealScope struct {
	partnerID string
	admin     bool
}

// PartnerScope allows revealing only keys owned by partnerID.
func PartnerScope(partnerID string) RevealScope {
	return RevealScope{partnerID: partnerID}
}

// AdminScope allows revealing any key. A non-empty partnerID still requires
// the key to belong to that partner.
func AdminScope(partnerID string) RevealScope {
	return RevealScope{partnerID: partnerID, admin: true}
}

// APIKeyService manages partner API keys. Plaintext keys are returned to the
// caller once and never logged.
type APIKeyService struct {
	keys   APIKeyStore
	cipher *utils.KeyCipher
}

// NewAPIKeyService creates an APIKeyService.
func NewAPIKeyService(keys APIKeyStore, cipher *utils.KeyCipher) *APIKeyService {
	return &APIKeyService{keys: keys, cipher: cipher}
}

// CreateForPartner mints a key for partnerID. If the ciphertext cannot be
// produced the key is stored without it: it still authenticates but can
// never be revealed.
func (s *APIKeyService) CreateForPartner(ctx context.Context, partnerID string) (string, error) {
	return s.create(ctx, partnerID, false)
}

// CreateForPartnerStrict mints a key for partnerID and fails with
// utils.ErrConfiguration, storing nothing, when it cannot be encrypted.
func (s *APIKeyService) CreateForPartnerStrict(ctx context.Context, partnerID string) (string, error) {
	return s.create(ctx, partnerID, true)
}

func (s *APIKeyService) create(ctx context.Context, partnerID string, strict bool) (string, error) {
	gen, err := utils.RandomAPIKey()
	if err != nil {
		return "", err
	}

	var encrypted *string
	ct, err := s.cipher.Encrypt(gen.Plain)
	switch {
	case err == nil:
		encrypted = &ct
	case strict:
		return "", utils.WithMessage(utils.ErrConfiguration, msgNotConfigured)
	default:
		log.Warn().Err(err).Str("partner_id", partnerID).Msg("API key stored without ciphertext; it cannot be revealed")
	}

	key := &models.APIKey{
		PartnerID:    partnerID,
		Prefix:       gen.Prefix,
		KeyHash:      gen.Hash,
		EncryptedKey: encrypted,
	}
	if err := s.keys.Create(ctx, key); err != nil {
		return "", storageErr(err)
	}

	log.Info().
		Str("partner_id", partnerID).
		Str("api_key_id", key.ID).
		Str("prefix", key.Prefix).
		Bool("revealable", encrypted != nil).
		Msg("API key created")
	return gen.Plain, nil
}

// List returns the partner's keys for display.
func (s *APIKeyService) List(ctx context.Context, partnerID string) ([]models.APIKeyView, error) {
	keys, err := s.keys.ListByPartner(ctx, partnerID)
	if err != nil {
		return nil, storageErr(err)
	}
	views := make([]models.APIKeyView, len(keys))
	for i, k := range keys {
		views[i] = k.View()
	}
	return views, nil
}

// ListForPartners returns the keys of several partners grouped by owner.
func (s *APIKeyService) ListForPartners(ctx context.Context, partnerIDs []string) (map[string][]models.APIKeyView, error) {
	keys, err := s.keys.ListByPartners(ctx, partnerIDs)
	if err != nil {
		return nil, storageErr(err)
	}
	out := make(map[string][]models.APIKeyView, len(partnerIDs))
	for _, k := range keys {
		out[k.PartnerID] = append(out[k.PartnerID], k.View())
	}
	return out, nil
}

// Reveal decrypts a stored key. A missing key, a key outside scope and a key
// stored without ciphertext are all reported as not found.
func (s *APIKeyService) Reveal(ctx context.Context, keyID string, scope RevealScope) (string, error) {
	keyID = strings.TrimSpace(keyID)
	if keyID == "" {
		return "", utils.Invalid("id required")
	}
	if !scope.admin && scope.partnerID == "" {
		return "", utils.ErrUnauthorized
	}

	notRevealable, decryptFailed := msgNotRevealable, msgDecryptFailed
	if scope.admin {
		notRevealable, decryptFailed = msgAdminNotRevealable, msgAdminDecryptFailed
	}

	k, err := s.keys.Get(ctx, keyID, scope.partnerID)
	if errors.Is(err, utils.ErrNotFound) {
		return "", utils.NotFound(notRevealable)
	}
	if err != nil {
		return "", storageErr(err)
	}
	if k.EncryptedKey == nil || *k.EncryptedKey == "" {
		return "", utils.NotFound(notRevealable)
	}

	plain, err := s.cipher.Decrypt(*k.EncryptedKey)
	if err != nil {
		log.Error().Err(err).Str("api_key_id", k.ID).Msg("API key reveal failed")
		return "", utils.WithMessage(utils.ErrDecryption, decryptFailed)
	}

	log.Info().Str("api_key_id", k.ID).Str("partner_id", k.PartnerID).Bool("admin", scope.admin).Msg("API key revealed")
	return plain, nil
}

// Delete removes a key owned by partnerID. Keys of other partners are
// reported as not found.
func (s *APIKeyService) Delete(ctx context.Context, keyID, partnerID string) error {
	keyID = strings.TrimSpace(keyID)
	if keyID == "" {
		return utils.Invalid("id required")
	}
	n, err := s.keys.Delete(ctx, keyID, partnerID)
	if err != nil {
		return storageErr(err)
	}
	if n == 0 {
		return utils.NotFound(msgAPIKeyNotFound)
	}
	log.Info().Str("api_key_id", keyID).Str("partner_id", partnerID).Msg("API key deleted")
	return nil
}

// SetActive enables or disables any key.
func (s *APIKeyService) SetActive(ctx context.Context, keyID string, active bool) error {
	keyID = strings.TrimSpace(keyID)
	if keyID == "" {
		return utils.Invalid("apiKeyId required")
	}
	n, err := s.keys.SetActive(ctx, keyID, active)
	if err != nil {
		return storageErr(err)
	}
	if n == 0 {
		return utils.NotFound(msgAPIKeyNotFound)
	}
	log.Info().Str("api_key_id", keyID).Bool("active", active).Msg("API key status changed")
	return nil
}
