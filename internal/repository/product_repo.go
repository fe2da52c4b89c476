package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GTDGit/herbal_api/internal/models"
)

const productColumns = `id, name, slug, description, price, image_url, is_active, is_featured, sort_order, created_at`

// ProductRepository provides data access methods for the products table.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// ListActive returns the active catalog in display order.
func (r *ProductRepository) ListActive(ctx context.Context) ([]*models.Product, error) {
	products := []*models.Product{}
	const q = `SELECT ` + productColumns + ` FROM products
		WHERE is_active = TRUE
		ORDER BY sort_order DESC, created_at DESC`
	if err := r.db.SelectContext(ctx, &products, q); err != nil {
		return nil, err
	}
	return products, nil
}

// ListActiveByIDs returns the active products among ids. Unknown or inactive
// ids are simply absent from the result.
func (r *ProductRepository) ListActiveByIDs(ctx context.Context, ids []string) ([]*models.Product, error) {
	products := []*models.Product{}
	if len(ids) == 0 {
		return products, nil
	}
	const q = `SELECT ` + productColumns + ` FROM products WHERE is_active = TRUE AND id = ANY($1)`
	if err := r.db.SelectContext(ctx, &products, q, pq.Array(ids)); err != nil {
		return nil, err
	}
	return products, nil
}

// Upsert inserts a product or updates the existing row with the same slug.
func (r *ProductRepository) Upsert(ctx context.Context, p *models.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	const q = `INSERT INTO products (id, name, slug, description, price, image_url, is_active, is_featured, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name, description = EXCLUDED.description, price = EXCLUDED.price,
			image_url = EXCLUDED.image_url, is_active = EXCLUDED.is_active,
			is_featured = EXCLUDED.is_featured, sort_order = EXCLUDED.sort_order,
			updated_at = NOW()
		RETURNING id, created_at`
	err := r.db.QueryRowxContext(ctx, q, p.ID, p.Name, p.Slug, p.Description, p.Price, p.ImageURL,
		p.IsActive, p.IsFeatured, p.SortOrder).Scan(&p.ID, &p.CreatedAt)
	return translate(err)
}
