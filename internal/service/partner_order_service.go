package service

import (
	"context"
	"errors"
	"math/bits"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/herbal_api/internal/metrics"
	"github.com/GTDGit/herbal_api/internal/models"
	"github.com/GTDGit/herbal_api/internal/utils"
)

// DefaultFatherName is stored when a partner order omits the father name.
const DefaultFatherName = "-"

// PartnerOrderLimit caps partner order listings.
const PartnerOrderLimit = 50

// PartnerOrderItemInput is one requested line of a partner order.
type PartnerOrderItemInput struct {
	ProductID        string `json:"productId"`
	Qty              Number `json:"qty"`
	PartnerUnitPrice Number `json:"partnerUnitPrice"`
}

// PartnerOrderInput is the body of a partner order request.
type PartnerOrderInput struct {
	Name       string                  `json:"name"`
	FatherName string                  `json:"fatherName"`
	Address    string                  `json:"address"`
	Phone1     string                  `json:"phone1"`
	Phone2     string                  `json:"phone2"`
	Items      []PartnerOrderItemInput `json:"items"`
}

// ValidatePartnerOrderInput trims the contact fields, defaults the father
// name, and drops items without a product id or with a non-positive quantity
// or price. It fails when a required field is blank or no item survives.
func ValidatePartnerOrderInput(in *PartnerOrderInput) (*PartnerOrderInput, error) {
	if in == nil {
		return nil, utils.Invalid("Invalid payload")
	}
	out := &PartnerOrderInput{
		Name:       strings.TrimSpace(in.Name),
		FatherName: strings.TrimSpace(in.FatherName),
		Address:    strings.TrimSpace(in.Address),
		Phone1:     strings.TrimSpace(in.Phone1),
		Phone2:     strings.TrimSpace(in.Phone2),
	}
	switch {
	case out.Name == "":
		return nil, utils.Invalid("Name is required")
	case out.Address == "":
		return nil, utils.Invalid("Address is required")
	case out.Phone1 == "":
		return nil, utils.Invalid("Contact number is required")
	}
	if out.FatherName == "" {
		out.FatherName = DefaultFatherName
	}

	for _, it := range in.Items {
		id := strings.TrimSpace(it.ProductID)
		if id == "" || it.Qty <= 0 || it.PartnerUnitPrice <= 0 {
			continue
		}
		out.Items = append(out.Items, PartnerOrderItemInput{ProductID: id, Qty: it.Qty, PartnerUnitPrice: it.PartnerUnitPrice})
	}
	if len(out.Items) == 0 {
		return nil, utils.Invalid("Items are required")
	}
	return out, nil
}

// PartnerOrderService prices and records orders placed by partners.
type PartnerOrderService struct {
	products ProductStore
	orders   OrderStore
	notifier OrderNotifier
}

// NewPartnerOrderService creates a PartnerOrderService. notifier may be nil.
func NewPartnerOrderService(products ProductStore, orders OrderStore, notifier OrderNotifier) *PartnerOrderService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &PartnerOrderService{products: products, orders: orders, notifier: notifier}
}

// CreatePartnerOrder validates in, re-reads catalog prices, enforces the
// partner margin and stores the order with all of its items atomically.
// Nothing is written unless every item passes.
func (s *PartnerOrderService) CreatePartnerOrder(ctx context.Context, partner *models.Partner, in *PartnerOrderInput) (*models.CreatedPartnerOrder, error) {
	if !partner.IsActive() {
		return nil, utils.ErrUnauthorized
	}
	valid, err := ValidatePartnerOrderInput(in)
	if err != nil {
		metrics.ObserveOrderRejection("validation")
		return nil, err
	}

	ids := distinctProductIDs(valid.Items)
	products, err := s.products.ListActiveByIDs(ctx, ids)
	if err != nil {
		return nil, storageErr(err)
	}
	byID := make(map[string]*models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	if err := checkItems(valid.Items, byID); err != nil {
		var pe *utils.ProductError
		if errors.As(err, &pe) {
			metrics.ObserveOrderRejection(rejectionReason(pe.Kind))
		}
		return nil, err
	}

	order, err := buildPartnerOrder(partner.ID, valid, byID)
	if err != nil {
		return nil, err
	}
	if err := s.orders.CreateWithItems(ctx, order); err != nil {
		return nil, storageErr(err)
	}

	metrics.ObservePartnerOrder(*order.PartnerProfit)
	log.Info().
		Str("order_id", order.ID).
		Str("partner_id", partner.ID).
		Int("items", len(order.Items)).
		Int64("partner_profit", *order.PartnerProfit).
		Msg("Partner order created")
	s.notifier.OrderCreated(order)

	return &models.CreatedPartnerOrder{
		ID:                  order.ID,
		CreatedAt:           order.CreatedAt,
		Status:              order.Status,
		TotalBaseAmount:     *order.TotalBaseAmount,
		TotalPartnerAmount:  *order.TotalPartnerAmount,
		PartnerProfit:       *order.PartnerProfit,
		PartnerPayoutStatus: *order.PartnerPayoutStatus,
	}, nil
}

func distinctProductIDs(items []PartnerOrderItemInput) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	return ids
}

// checkItems runs the three catalog checks in order: every product exists,
// every product has a price, every partner price is at least that price.
func checkItems(items []PartnerOrderItemInput, byID map[string]*models.Product) error {
	for _, it := range items {
		if _, ok := byID[it.ProductID]; !ok {
			return &utils.ProductError{Kind: utils.ErrInvalidProduct, Product: it.ProductID}
		}
	}
	for _, it := range items {
		if p := byID[it.ProductID]; !p.Orderable() {
			return &utils.ProductError{Kind: utils.ErrProductNotOrderable, Product: p.Name}
		}
	}
	for _, it := range items {
		if p := byID[it.ProductID]; int64(it.PartnerUnitPrice) < *p.Price {
			return &utils.ProductError{Kind: utils.ErrMarginViolation, Product: p.Name}
		}
	}
	return nil
}

func rejectionReason(kind error) string {
	switch kind {
	case utils.ErrInvalidProduct:
		return "invalid_product"
	case utils.ErrProductNotOrderable:
		return "not_orderable"
	case utils.ErrMarginViolation:
		return "margin"
	}
	return "other"
}

func buildPartnerOrder(partnerID string, in *PartnerOrderInput, byID map[string]*models.Product) (*models.Order, error) {
	var totalBase, totalPartner, profit int64
	items := make([]models.OrderItem, 0, len(in.Items))

	for _, it := range in.Items {
		p := byID[it.ProductID]
		qty := int64(it.Qty)
		base := *p.Price
		unit := int64(it.PartnerUnitPrice)

		lineBase, ok1 := mulInt64(base, qty)
		linePartner, ok2 := mulInt64(unit, qty)
		if !ok1 || !ok2 {
			return nil, utils.Invalid("Order total is too large")
		}
		var ok3, ok4 bool
		totalBase, ok3 = addInt64(totalBase, lineBase)
		totalPartner, ok4 = addInt64(totalPartner, linePartner)
		if !ok3 || !ok4 {
			return nil, utils.Invalid("Order total is too large")
		}
		profit += linePartner - lineBase

		productID := p.ID
		items = append(items, models.OrderItem{
			ProductID:        &productID,
			ProductName:      p.Name,
			Quantity:         qty,
			BaseUnitPrice:    base,
			PartnerUnitPrice: unit,
		})
	}

	payout := models.PayoutPending
	pid := partnerID
	return &models.Order{
		Source:              models.SourcePartner,
		PartnerID:           &pid,
		ProductID:           items[0].ProductID,
		Status:              models.OrderNew,
		Name:                in.Name,
		FatherName:          in.FatherName,
		Address:             in.Address,
		Phone1:              in.Phone1,
		Phone2:              trimmed(in.Phone2),
		TotalBaseAmount:     &totalBase,
		TotalPartnerAmount:  &totalPartner,
		PartnerProfit:       &profit,
		PartnerPayoutStatus: &payout,
		Items:               items,
	}, nil
}

func mulInt64(a, b int64) (int64, bool) {
	if a < 0 || b < 0 {
		return a * b, true
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > 1<<63-1 {
		return 0, false
	}
	return int64(lo), true
}

func addInt64(a, b int64) (int64, bool) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, false
	}
	return s, true
}

// ListPartnerOrders returns the partner's most recent orders with items.
func (s *PartnerOrderService) ListPartnerOrders(ctx context.Context, partnerID string) ([]*models.Order, error) {
	orders, err := s.orders.ListByPartner(ctx, partnerID, PartnerOrderLimit)
	if err != nil {
		return nil, storageErr(err)
	}
	return orders, nil
}

// GetPartnerOrder returns one of the partner's orders. Orders owned by
// someone else are reported as not found.
func (s *PartnerOrderService) GetPartnerOrder(ctx context.Context, partnerID, orderID string) (*models.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, utils.Invalid("orderId required")
	}
	o, err := s.orders.GetByPartner(ctx, orderID, partnerID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.NotFound("Order not found")
	}
	if err != nil {
		return nil, storageErr(err)
	}
	return o, nil
}
