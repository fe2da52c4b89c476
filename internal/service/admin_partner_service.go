package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/herbal_api/internal/models"
	"github.com/GTDGit/herbal_api/internal/utils"
)

// AdminPartner is a partner as listed on the admin dashboard.
type AdminPartner struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Email     *string              `json:"email"`
	Phone     *string              `json:"phone"`
	Status    models.PartnerStatus `json:"status"`
	CreatedAt time.Time            `json:"createdAt"`
	models.PayoutDetails
	APIKeys []models.APIKeyView `json:"apiKeys"`
}

// AdminPartnerService is the back-office view of partners.
type AdminPartnerService struct {
	partners PartnerStore
	keys     *APIKeyService
}

// NewAdminPartnerService creates an AdminPartnerService.
func NewAdminPartnerService(partners PartnerStore, keys *APIKeyService) *AdminPartnerService {
	return &AdminPartnerService{partners: partners, keys: keys}
}

// List returns every partner with its keys, newest first.
func (s *AdminPartnerService) List(ctx context.Context) ([]AdminPartner, error) {
	partners, err := s.partners.List(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	ids := make([]string, len(partners))
	for i, p := range partners {
		ids[i] = p.ID
	}
	keys, err := s.keys.ListForPartners(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]AdminPartner, len(partners))
	for i, p := range partners {
		views := keys[p.ID]
		if views == nil {
			views = []models.APIKeyView{}
		}
		out[i] = AdminPartner{
			ID:            p.ID,
			Name:          p.Name,
			Email:         p.Email,
			Phone:         p.Phone,
			Status:        p.Status,
			CreatedAt:     p.CreatedAt,
			PayoutDetails: p.PayoutDetails,
			APIKeys:       views,
		}
	}
	return out, nil
}

// Create adds a partner from the operator CLI. Password may be empty, in
// which case the partner can only use API keys.
func (s *AdminPartnerService) Create(ctx context.Context, name, email, phone, password string, status models.PartnerStatus) (*models.Partner, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, utils.Invalid("Name is required")
	}
	p := &models.Partner{
		Name:   name,
		Email:  trimmed(email),
		Phone:  trimmed(phone),
		Status: status,
	}
	if password != "" {
		hash, err := utils.HashPassword(password)
		if err != nil {
			return nil, utils.Invalid("Password must be at least %d characters", utils.MinPasswordLength)
		}
		p.PasswordHash = &hash
	}
	if err := s.partners.Create(ctx, p); err != nil {
		if errors.Is(err, utils.ErrConflict) {
			return nil, duplicateAccount()
		}
		return nil, storageErr(err)
	}
	log.Info().Str("partner_id", p.ID).Str("status", string(p.Status)).Msg("Partner created by operator")
	return p, nil
}

// SetStatus changes a partner's lifecycle status.
func (s *AdminPartnerService) SetStatus(ctx context.Context, partnerID, status string) (*models.PartnerSummary, error) {
	st, ok := models.ParsePartnerStatus(status)
	if !ok {
		return nil, utils.Invalid("Invalid status")
	}
	if err := s.partners.UpdateStatus(ctx, partnerID, st); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.NotFound("Partner not found")
		}
		return nil, storageErr(err)
	}
	log.Info().Str("partner_id", partnerID).Str("status", string(st)).Msg("Partner status changed")
	return &models.PartnerSummary{ID: partnerID, Status: st}, nil
}

// SetPassword overwrites a partner's password.
func (s *AdminPartnerService) SetPassword(ctx context.Context, partnerID, password string) error {
	if utils.PasswordTooShort(password) {
		return utils.Invalid("Password must be at least %d characters", utils.MinPasswordLength)
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.partners.UpdatePasswordHash(ctx, partnerID, hash); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.NotFound("Partner not found")
		}
		return storageErr(err)
	}
	log.Info().Str("partner_id", partnerID).Msg("Partner password set by admin")
	return nil
}
