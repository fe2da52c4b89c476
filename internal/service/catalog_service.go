package service

import (
	"context"

	"github.com/GTDGit/herbal_api/internal/models"
)

// CatalogService serves the active product list. It is read on every call
// so partners always see current prices.
type CatalogService struct {
	products ProductStore
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(products ProductStore) *CatalogService {
	return &CatalogService{products: products}
}

// ListActive returns active products in display order.
func (s *CatalogService) ListActive(ctx context.Context) ([]*models.Product, error) {
	products, err := s.products.ListActive(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	return products, nil
}
