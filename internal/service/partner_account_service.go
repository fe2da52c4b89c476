package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/herbal_api/internal/models"
	"github.com/GTDGit/herbal_api/internal/utils"
)

const msgInvalidCredentials = "Invalid credentials"

// RegisterInput is a partner self-registration request.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// LoginInput is a partner login request. Identifier is an email or phone.
type LoginInput struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// ChangePasswordInput is a self-service password change.
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// PayoutInput carries the free-text payout fields. Blank values clear the field.
type PayoutInput struct {
	PayoutMethod        string `json:"payoutMethod"`
	PayoutAccountName   string `json:"payoutAccountName"`
	PayoutAccountNumber string `json:"payoutAccountNumber"`
	PayoutBankName      string `json:"payoutBankName"`
	PayoutIBAN          string `json:"payoutIban"`
	PayoutPhone         string `json:"payoutPhone"`
	PayoutNotes         string `json:"payoutNotes"`
}

// PartnerAccountService handles partner self-service: registration, login,
// password and payout details, analytics.
type PartnerAccountService struct {
	partners PartnerStore
}

// NewPartnerAccountService creates a PartnerAccountService.
func NewPartnerAccountService(partners PartnerStore) *PartnerAccountService {
	return &PartnerAccountService{partners: partners}
}

// Register creates an ACTIVE partner with a password.
func (s *PartnerAccountService) Register(ctx context.Context, in *RegisterInput) (*models.Partner, error) {
	if in == nil {
		return nil, utils.Invalid("Invalid payload")
	}
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	phone := strings.TrimSpace(in.Phone)

	if name == "" {
		return nil, utils.Invalid("Name is required")
	}
	if email == "" && phone == "" {
		return nil, utils.Invalid("Email or phone is required")
	}
	if utils.PasswordTooShort(in.Password) {
		return nil, utils.Invalid("Password must be at least %d characters", utils.MinPasswordLength)
	}

	exists, err := s.partners.ExistsByContact(ctx, email, phone)
	if err != nil {
		return nil, storageErr(err)
	}
	if exists {
		return nil, duplicateAccount()
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	p := &models.Partner{
		Name:         name,
		Email:        trimmed(email),
		Phone:        trimmed(phone),
		PasswordHash: &hash,
		Status:       models.PartnerActive,
	}
	if err := s.partners.Create(ctx, p); err != nil {
		if errors.Is(err, utils.ErrConflict) {
			return nil, duplicateAccount()
		}
		return nil, storageErr(err)
	}

	log.Info().Str("partner_id", p.ID).Msg("Partner registered")
	return p, nil
}

func duplicateAccount() error {
	return utils.WithMessage(utils.ErrConflict, "An account with this email/phone already exists")
}

// Login checks an identifier and password. Unknown partners, inactive
// partners, partners without a password and wrong passwords are
// indistinguishable to the caller.
func (s *PartnerAccountService) Login(ctx context.Context, in *LoginInput) (*models.Partner, error) {
	if in == nil {
		return nil, utils.Invalid("Invalid payload")
	}
	identifier := strings.TrimSpace(in.Identifier)
	if identifier == "" {
		return nil, utils.Invalid("Email or phone is required")
	}
	if in.Password == "" {
		return nil, utils.Invalid("Password is required")
	}

	p, err := s.partners.GetByIdentifier(ctx, identifier)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.WithMessage(utils.ErrUnauthorized, msgInvalidCredentials)
	}
	if err != nil {
		return nil, storageErr(err)
	}
	if !p.IsActive() || p.PasswordHash == nil || !utils.VerifyPassword(in.Password, *p.PasswordHash) {
		return nil, utils.WithMessage(utils.ErrUnauthorized, msgInvalidCredentials)
	}
	return p, nil
}

// ChangePassword replaces the partner's password after checking the current one.
func (s *PartnerAccountService) ChangePassword(ctx context.Context, partnerID string, in *ChangePasswordInput) error {
	if in == nil {
		return utils.Invalid("Invalid payload")
	}
	if in.CurrentPassword == "" {
		return utils.Invalid("Current password is required")
	}
	if utils.PasswordTooShort(in.NewPassword) {
		return utils.Invalid("New password must be at least %d characters", utils.MinPasswordLength)
	}

	p, err := s.partners.GetByID(ctx, partnerID)
	if err != nil {
		return storageErr(err)
	}
	if p.PasswordHash == nil || *p.PasswordHash == "" {
		return utils.Invalid("Password is not set")
	}
	if !utils.VerifyPassword(in.CurrentPassword, *p.PasswordHash) {
		return utils.Invalid("Current password is incorrect")
	}

	hash, err := utils.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	if err := s.partners.UpdatePasswordHash(ctx, partnerID, hash); err != nil {
		return storageErr(err)
	}
	log.Info().Str("partner_id", partnerID).Msg("Partner password changed")
	return nil
}

// GetPayout returns the partner's payout details.
func (s *PartnerAccountService) GetPayout(ctx context.Context, partnerID string) (*models.PayoutDetails, error) {
	p, err := s.partners.GetByID(ctx, partnerID)
	if err != nil {
		return nil, storageErr(err)
	}
	d := p.PayoutDetails
	return &d, nil
}

// UpdatePayout replaces every payout field.
func (s *PartnerAccountService) UpdatePayout(ctx context.Context, partnerID string, in *PayoutInput) (*models.PayoutDetails, error) {
	if in == nil {
		in = &PayoutInput{}
	}
	d := models.PayoutDetails{
		PayoutMethod:        trimmed(in.PayoutMethod),
		PayoutAccountName:   trimmed(in.PayoutAccountName),
		PayoutAccountNumber: trimmed(in.PayoutAccountNumber),
		PayoutBankName:      trimmed(in.PayoutBankName),
		PayoutIBAN:          trimmed(in.PayoutIBAN),
		PayoutPhone:         trimmed(in.PayoutPhone),
		PayoutNotes:         trimmed(in.PayoutNotes),
	}
	out, err := s.partners.UpdatePayout(ctx, partnerID, d)
	if err != nil {
		return nil, storageErr(err)
	}
	return out, nil
}

// Analytics returns order count and profit totals for the partner.
func (s *PartnerAccountService) Analytics(ctx context.Context, partnerID string) (*models.PartnerAnalytics, error) {
	a, err := s.partners.Analytics(ctx, partnerID)
	if err != nil {
		return nil, storageErr(err)
	}
	return a, nil
}
