package models

import "time"

// Product is a catalog entry. A nil Price means the product cannot be
// ordered through the partner API.
type Product struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Slug        string    `db:"slug" json:"slug"`
	Description string    `db:"description" json:"description"`
	Price       *int64    `db:"price" json:"price"`
	ImageURL    *string   `db:"image_url" json:"imageUrl"`
	IsActive    bool      `db:"is_active" json:"-"`
	IsFeatured  bool      `db:"is_featured" json:"isFeatured"`
	SortOrder   int       `db:"sort_order" json:"sortOrder"`
	CreatedAt   time.Time `db:"created_at" json:"-"`
}

// Orderable reports whether the product has a usable catalog price.
func (p *Product) Orderable() bool {
	return p.Price != nil && *p.Price > 0
}
