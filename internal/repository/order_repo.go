package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GTDGit/herbal_api/internal/models"
)

const orderColumns = `o.id, o.source, o.partner_id, o.product_id, o.status, o.name, o.father_name,
	o.address, o.phone1, o.phone2, o.total_base_amount, o.total_partner_amount, o.partner_profit,
	o.partner_payout_status, o.partner_payout_paid_at, o.created_at, o.updated_at`

const insertOrder = `INSERT INTO orders (
		id, source, partner_id, product_id, status, name, father_name, address, phone1, phone2,
		total_base_amount, total_partner_amount, partner_profit, partner_payout_status
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	RETURNING created_at, updated_at`

const insertOrderItem = `INSERT INTO order_items (
		id, order_id, product_id, product_name, quantity, base_unit_price, partner_unit_price
	) VALUES ($1, $2, $3, $4, $5, $6, $7)`

// DefaultOrderListLimit caps order listings when no limit is given.
const DefaultOrderListLimit = 50

// OrderRepository provides data access methods for orders and their items.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts an order without items.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return translate(r.insertHeader(ctx, r.db, o))
}

// CreateWithItems inserts the order header and all of its items in a single
// transaction. Either every row is written or none is.
func (r *OrderRepository) CreateWithItems(ctx context.Context, o *models.Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if err := r.insertHeader(ctx, tx, o); err != nil {
		return translate(err)
	}

	for i := range o.Items {
		it := &o.Items[i]
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		it.OrderID = o.ID
		if _, err := tx.ExecContext(ctx, insertOrderItem,
			it.ID, it.OrderID, it.ProductID, it.ProductName, it.Quantity, it.BaseUnitPrice, it.PartnerUnitPrice,
		); err != nil {
			return fmt.Errorf("insert order item %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func (r *OrderRepository) insertHeader(ctx context.Context, q sqlx.QueryerContext, o *models.Order) error {
	return q.QueryRowxContext(ctx, insertOrder,
		o.ID, o.Source, o.PartnerID, o.ProductID, o.Status, o.Name, o.FatherName, o.Address, o.Phone1, o.Phone2,
		o.TotalBaseAmount, o.TotalPartnerAmount, o.PartnerProfit, o.PartnerPayoutStatus,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
}

// ListByPartner returns a partner's orders, newest first, with their items.
func (r *OrderRepository) ListByPartner(ctx context.Context, partnerID string, limit int) ([]*models.Order, error) {
	if limit <= 0 {
		limit = DefaultOrderListLimit
	}
	orders := []*models.Order{}
	q := `SELECT ` + orderColumns + ` FROM orders o
		WHERE o.partner_id = $1
		ORDER BY o.created_at DESC LIMIT $2`
	if err := r.db.SelectContext(ctx, &orders, q, partnerID, limit); err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetByPartner returns one order with items if it belongs to partnerID.
func (r *OrderRepository) GetByPartner(ctx context.Context, id, partnerID string) (*models.Order, error) {
	var o models.Order
	q := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1 AND o.partner_id = $2`
	if err := r.db.GetContext(ctx, &o, q, id, partnerID); err != nil {
		return nil, translate(err)
	}
	orders := []*models.Order{&o}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) attachItems(ctx context.Context, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	byID := make(map[string]*models.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
		o.Items = []models.OrderItem{}
	}

	var items []models.OrderItem
	const q = `SELECT id, order_id, product_id, product_name, quantity, base_unit_price, partner_unit_price
		FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, id`
	if err := r.db.SelectContext(ctx, &items, q, pq.Array(ids)); err != nil {
		return err
	}
	for _, it := range items {
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return nil
}

// List returns orders for the admin dashboard with partner and product names.
func (r *OrderRepository) List(ctx context.Context, f models.OrderFilter) ([]*models.Order, error) {
	where, args := orderWhere(f)
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultOrderListLimit
	}
	args = append(args, limit)

	q := `SELECT ` + orderColumns + `, p.name AS partner_name, pr.name AS product_name
		FROM orders o
		LEFT JOIN partners p ON p.id = o.partner_id
		LEFT JOIN products pr ON pr.id = o.product_id` + where + `
		ORDER BY o.created_at DESC LIMIT $` + fmt.Sprint(len(args))

	orders := []*models.Order{}
	if err := r.db.SelectContext(ctx, &orders, q, args...); err != nil {
		return nil, err
	}
	return orders, nil
}

// Count returns the number of orders matching the filter.
func (r *OrderRepository) Count(ctx context.Context, f models.OrderFilter) (int64, error) {
	where, args := orderWhere(f)
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM orders o`+where, args...); err != nil {
		return 0, err
	}
	return n, nil
}

func orderWhere(f models.OrderFilter) (string, []any) {
	var conds []string
	var args []any
	if f.Source != "" {
		args = append(args, f.Source)
		conds = append(conds, fmt.Sprintf("o.source = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("o.status = $%d", len(args)))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(o.id ILIKE $%[1]d OR o.phone1 ILIKE $%[1]d OR o.phone2 ILIKE $%[1]d OR o.name ILIKE $%[1]d)", n))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// OrderUpdate carries the optional fields of an admin order update.
type OrderUpdate struct {
	Status       *models.OrderStatus
	PayoutStatus *models.PayoutStatus
	PaidAt       *time.Time
}

// Update applies the given fields to an order and returns the stored row.
// When PayoutStatus is set the paid-at timestamp is overwritten with PaidAt,
// which may be nil.
func (r *OrderRepository) Update(ctx context.Context, id string, u OrderUpdate) (*models.Order, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}
	if u.Status != nil {
		args = append(args, *u.Status)
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}
	if u.PayoutStatus != nil {
		args = append(args, *u.PayoutStatus)
		sets = append(sets, fmt.Sprintf("partner_payout_status = $%d", len(args)))
		args = append(args, u.PaidAt)
		sets = append(sets, fmt.Sprintf("partner_payout_paid_at = $%d", len(args)))
	}

	q := `UPDATE orders o SET ` + strings.Join(sets, ", ") + ` WHERE o.id = $1 RETURNING ` + orderColumns
	var o models.Order
	if err := r.db.QueryRowxContext(ctx, q, args...).StructScan(&o); err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

// Track finds an order by id and either contact phone for public tracking.
func (r *OrderRepository) Track(ctx context.Context, id, phone string) (*models.TrackedOrder, error) {
	var t models.TrackedOrder
	const q = `SELECT o.id, o.status, o.created_at, pr.name AS product_name, pr.slug AS product_slug
		FROM orders o
		LEFT JOIN products pr ON pr.id = o.product_id
		WHERE o.id = $1 AND (o.phone1 = $2 OR o.phone2 = $2)`
	if err := r.db.GetContext(ctx, &t, q, id, phone); err != nil {
		return nil, translate(err)
	}
	return &t, nil
}
