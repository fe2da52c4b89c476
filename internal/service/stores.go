package service

import (
	"context"
	"errors"
	"time"

	"github.com/GTDGit/herbal_api/internal/models"
	"github.com/GTDGit/herbal_api/internal/repository"
	"github.com/GTDGit/herbal_api/internal/utils"
)

// PartnerStore is the partner persistence used by the services. It is
// satisfied by *repository.PartnerRepository.
type PartnerStore interface {
	Create(ctx context.Context, p *models.Partner) error
	GetByID(ctx context.Context, id string) (*models.Partner, error)
	GetByIdentifier(ctx context.Context, identifier string) (*models.Partner, error)
	ExistsByContact(ctx context.Context, email, phone string) (bool, error)
	List(ctx context.Context) ([]*models.Partner, error)
	UpdateStatus(ctx context.Context, id string, status models.PartnerStatus) error
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	UpdatePayout(ctx context.Context, id string, d models.PayoutDetails) (*models.PayoutDetails, error)
	Analytics(ctx context.Context, partnerID string) (*models.PartnerAnalytics, error)
}

// APIKeyStore is satisfied by *repository.APIKeyRepository.
type APIKeyStore interface {
	Create(ctx context.Context, k *models.APIKey) error
	GetActiveByHash(ctx context.Context, hash string) (*models.APIKey, error)
	Get(ctx context.Context, id, partnerID string) (*models.APIKey, error)
	ListByPartner(ctx context.Context, partnerID string) ([]*models.APIKey, error)
	ListByPartners(ctx context.Context, partnerIDs []string) ([]*models.APIKey, error)
	Delete(ctx context.Context, id, partnerID string) (int64, error)
	SetActive(ctx context.Context, id string, active bool) (int64, error)
	TouchLastUsed(ctx context.Context, ids []string, at time.Time) error
}

// ProductStore is satisfied by *repository.ProductRepository.
type ProductStore interface {
	ListActive(ctx context.Context) ([]*models.Product, error)
	ListActiveByIDs(ctx context.Context, ids []string) ([]*models.Product, error)
}

// OrderStore is satisfied by *repository.OrderRepository.
type OrderStore interface {
	Create(ctx context.Context, o *models.Order) error
	CreateWithItems(ctx context.Context, o *models.Order) error
	ListByPartner(ctx context.Context, partnerID string, limit int) ([]*models.Order, error)
	GetByPartner(ctx context.Context, id, partnerID string) (*models.Order, error)
	List(ctx context.Context, f models.OrderFilter) ([]*models.Order, error)
	Count(ctx context.Context, f models.OrderFilter) (int64, error)
	Update(ctx context.Context, id string, u repository.OrderUpdate) (*models.Order, error)
	Track(ctx context.Context, id, phone string) (*models.TrackedOrder, error)
}

// OrderNotifier is told about order changes so dashboards can refresh.
type OrderNotifier interface {
	OrderCreated(o *models.Order)
	OrderUpdated(o *models.Order)
}

type noopNotifier struct{}

func (noopNotifier) OrderCreated(*models.Order) {}
func (noopNotifier) OrderUpdated(*models.Order) {}

// storageErr passes through the errors a caller can act on and turns
// everything else into ErrStorageUnavailable.
func storageErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, utils.ErrNotFound),
		errors.Is(err, utils.ErrConflict),
		errors.Is(err, utils.ErrStorageUnavailable):
		return err
	}
	return utils.Unavailable(err)
}
