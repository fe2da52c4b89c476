package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GTDGit/herbal_api/internal/models"
)

const apiKeyColumns = `id, partner_id, prefix, key_hash, encrypted_key, is_active, created_at, last_used_at`

// APIKeyRepository provides data access methods for the api_keys table.
type APIKeyRepository struct {
	db *sqlx.DB
}

// NewAPIKeyRepository creates a new APIKeyRepository.
func NewAPIKeyRepository(db *sqlx.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Create inserts a key row. The plaintext never reaches this layer.
func (r *APIKeyRepository) Create(ctx context.Context, k *models.APIKey) error {
	if k.ID == "" {
		k.ID = uuid.NewString()
	}
	const q = `INSERT INTO api_keys (id, partner_id, prefix, key_hash, encrypted_key, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING is_active, created_at`
	err := r.db.QueryRowxContext(ctx, q, k.ID, k.PartnerID, k.Prefix, k.KeyHash, k.EncryptedKey).
		Scan(&k.IsActive, &k.CreatedAt)
	return translate(err)
}

// GetActiveByHash finds an active key by the SHA-256 of its plaintext.
func (r *APIKeyRepository) GetActiveByHash(ctx context.Context, hash string) (*models.APIKey, error) {
	var k models.APIKey
	const q = `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE key_hash = $1 AND is_active = TRUE LIMIT 1`
	if err := r.db.GetContext(ctx, &k, q, hash); err != nil {
		return nil, translate(err)
	}
	return &k, nil
}

// Get finds a key by id. A non-empty partnerID restricts the lookup to keys
// owned by that partner.
func (r *APIKeyRepository) Get(ctx context.Context, id, partnerID string) (*models.APIKey, error) {
	var k models.APIKey
	const q = `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE id = $1 AND ($2 = '' OR partner_id = $2)`
	if err := r.db.GetContext(ctx, &k, q, id, partnerID); err != nil {
		return nil, translate(err)
	}
	return &k, nil
}

// ListByPartner returns a partner's keys, newest first.
func (r *APIKeyRepository) ListByPartner(ctx context.Context, partnerID string) ([]*models.APIKey, error) {
	return r.ListByPartners(ctx, []string{partnerID})
}

// ListByPartners returns the keys of all given partners, newest first.
func (r *APIKeyRepository) ListByPartners(ctx context.Context, partnerIDs []string) ([]*models.APIKey, error) {
	keys := []*models.APIKey{}
	if len(partnerIDs) == 0 {
		return keys, nil
	}
	const q = `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE partner_id = ANY($1) ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &keys, q, pq.Array(partnerIDs)); err != nil {
		return nil, err
	}
	return keys, nil
}

// Delete removes a key owned by partnerID and returns the number of rows deleted.
func (r *APIKeyRepository) Delete(ctx context.Context, id, partnerID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM api_keys WHERE id = $1 AND partner_id = $2`, id, partnerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SetActive toggles a key regardless of owner.
func (r *APIKeyRepository) SetActive(ctx context.Context, id string, active bool) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE api_keys SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// TouchLastUsed stamps last_used_at on every given key.
func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `UPDATE api_keys SET last_used_at = $2 WHERE id = ANY($1)`, pq.Array(ids), at)
	return err
}
