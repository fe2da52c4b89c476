package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/herbal_api/internal/models"
	"github.com/GTDGit/herbal_api/internal/utils"
)

const partnerColumns = `id, name, email, phone, password_hash, status,
	payout_method, payout_account_name, payout_account_number, payout_bank_name,
	payout_iban, payout_phone, payout_notes, created_at, updated_at`

// PartnerRepository provides data access methods for the partners table.
type PartnerRepository struct {
	db *sqlx.DB
}

// NewPartnerRepository creates a new PartnerRepository.
func NewPartnerRepository(db *sqlx.DB) *PartnerRepository {
	return &PartnerRepository{db: db}
}

// Create inserts a partner, assigning its id. A duplicate email or phone
// yields utils.ErrConflict.
func (r *PartnerRepository) Create(ctx context.Context, p *models.Partner) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	const q = `INSERT INTO partners (id, name, email, phone, password_hash, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, q, p.ID, p.Name, p.Email, p.Phone, p.PasswordHash, p.Status).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	return translate(err)
}

// GetByID finds a partner by id.
func (r *PartnerRepository) GetByID(ctx context.Context, id string) (*models.Partner, error) {
	var p models.Partner
	if err := r.db.GetContext(ctx, &p, `SELECT `+partnerColumns+` FROM partners WHERE id = $1`, id); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// GetByIdentifier finds a partner whose email or phone equals identifier.
func (r *PartnerRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.Partner, error) {
	var p models.Partner
	const q = `SELECT ` + partnerColumns + ` FROM partners
		WHERE email = $1 OR phone = $1
		ORDER BY created_at ASC LIMIT 1`
	if err := r.db.GetContext(ctx, &p, q, identifier); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// ExistsByContact reports whether a partner already uses email or phone.
// Empty values are ignored.
func (r *PartnerRepository) ExistsByContact(ctx context.Context, email, phone string) (bool, error) {
	var exists bool
	const q = `SELECT EXISTS (
		SELECT 1 FROM partners
		WHERE ($1 <> '' AND email = $1) OR ($2 <> '' AND phone = $2)
	)`
	if err := r.db.GetContext(ctx, &exists, q, email, phone); err != nil {
		return false, err
	}
	return exists, nil
}

// List retrieves all partners, newest first.
func (r *PartnerRepository) List(ctx context.Context) ([]*models.Partner, error) {
	var partners []*models.Partner
	if err := r.db.SelectContext(ctx, &partners, `SELECT `+partnerColumns+` FROM partners ORDER BY created_at DESC`); err != nil {
		return nil, err
	}
	return partners, nil
}

// UpdateStatus sets the partner status.
func (r *PartnerRepository) UpdateStatus(ctx context.Context, id string, status models.PartnerStatus) error {
	return r.execOne(ctx, `UPDATE partners SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
}

// UpdatePasswordHash replaces the stored password hash.
func (r *PartnerRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return r.execOne(ctx, `UPDATE partners SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
}

// UpdatePayout replaces all payout fields and returns the stored values.
func (r *PartnerRepository) UpdatePayout(ctx context.Context, id string, d models.PayoutDetails) (*models.PayoutDetails, error) {
	const q = `UPDATE partners SET
			payout_method = $2, payout_account_name = $3, payout_account_number = $4,
			payout_bank_name = $5, payout_iban = $6, payout_phone = $7, payout_notes = $8,
			updated_at = NOW()
		WHERE id = $1
		RETURNING payout_method, payout_account_name, payout_account_number, payout_bank_name,
			payout_iban, payout_phone, payout_notes`

	var out models.PayoutDetails
	err := r.db.QueryRowxContext(ctx, q, id,
		d.PayoutMethod, d.PayoutAccountName, d.PayoutAccountNumber, d.PayoutBankName,
		d.PayoutIBAN, d.PayoutPhone, d.PayoutNotes,
	).StructScan(&out)
	if err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

// Analytics aggregates order count and profit for a partner's orders.
func (r *PartnerRepository) Analytics(ctx context.Context, partnerID string) (*models.PartnerAnalytics, error) {
	const q = `SELECT
			COUNT(*) AS orders_count,
			COALESCE(SUM(partner_profit), 0) AS total_profit,
			COALESCE(SUM(partner_profit) FILTER (WHERE partner_payout_status = 'PENDING'), 0) AS pending_profit,
			COALESCE(SUM(partner_profit) FILTER (WHERE partner_payout_status = 'PAID'), 0) AS paid_profit
		FROM orders
		WHERE partner_id = $1 AND source = 'PARTNER'`

	var a models.PartnerAnalytics
	if err := r.db.GetContext(ctx, &a, q, partnerID); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PartnerRepository) execOne(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return utils.ErrNotFound
	}
	return nil
}
