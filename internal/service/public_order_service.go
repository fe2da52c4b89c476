package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/herbal_api/internal/metrics"
	"github.com/GTDGit/herbal_api/internal/models"
	"github.com/GTDGit/herbal_api/internal/utils"
)

// CartItemInput is one line of a public checkout cart. Prices are not
// accepted on this path.
type CartItemInput struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Variant   string `json:"variant"`
	Qty       Number `json:"qty"`
}

// PublicOrderInput is the body of a public checkout request.
type PublicOrderInput struct {
	Name       string          `json:"name"`
	FatherName string          `json:"fatherName"`
	Address    string          `json:"address"`
	Phone1     string          `json:"phone1"`
	Phone2     string          `json:"phone2"`
	Items      []CartItemInput `json:"items"`
}

// TrackInput is the body of an order tracking request.
type TrackInput struct {
	OrderID string `json:"orderId"`
	Phone   string `json:"phone"`
}

// PublicOrderService handles storefront checkout. Orders placed here carry
// no totals and are priced by staff when they confirm by phone; only partner
// orders go through the pricing checks.
type PublicOrderService struct {
	orders   OrderStore
	notifier OrderNotifier
}

// NewPublicOrderService creates a PublicOrderService. notifier may be nil.
func NewPublicOrderService(orders OrderStore, notifier OrderNotifier) *PublicOrderService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &PublicOrderService{orders: orders, notifier: notifier}
}

// PlaceOrder stores a bare NEW order with the cart rendered into the address.
func (s *PublicOrderService) PlaceOrder(ctx context.Context, in *PublicOrderInput) (*models.Order, error) {
	if in == nil {
		return nil, utils.Invalid("Invalid payload")
	}
	name := strings.TrimSpace(in.Name)
	fatherName := strings.TrimSpace(in.FatherName)
	address := strings.TrimSpace(in.Address)
	phone1 := strings.TrimSpace(in.Phone1)
	switch {
	case name == "":
		return nil, utils.Invalid("Name is required")
	case fatherName == "":
		return nil, utils.Invalid("Father name is required")
	case address == "":
		return nil, utils.Invalid("Address is required")
	case phone1 == "":
		return nil, utils.Invalid("Contact number is required")
	}

	items := cleanCart(in.Items)
	order := &models.Order{
		Source:     models.SourcePublic,
		Status:     models.OrderNew,
		Name:       name,
		FatherName: fatherName,
		Address:    address + renderCart(items),
		Phone1:     phone1,
		Phone2:     trimmed(in.Phone2),
	}
	if len(items) > 0 {
		id := items[0].ProductID
		order.ProductID = &id
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, storageErr(err)
	}

	metrics.PublicOrdersTotal.Inc()
	log.Info().Str("order_id", order.ID).Int("cart_lines", len(items)).Msg("Public order created")
	s.notifier.OrderCreated(order)
	return order, nil
}

func cleanCart(in []CartItemInput) []CartItemInput {
	var out []CartItemInput
	for _, it := range in {
		c := CartItemInput{
			ProductID: strings.TrimSpace(it.ProductID),
			Name:      strings.TrimSpace(it.Name),
			Variant:   strings.TrimSpace(it.Variant),
			Qty:       it.Qty,
		}
		if c.ProductID == "" || c.Name == "" || c.Qty <= 0 {
			continue
		}
		out = append(out, c)
	}
	return out
}

func renderCart(items []CartItemInput) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\nCart:")
	for _, it := range items {
		b.WriteString("\n- ")
		b.WriteString(it.Name)
		if it.Variant != "" {
			fmt.Fprintf(&b, " (%s)", it.Variant)
		}
		fmt.Fprintf(&b, " x%d", it.Qty)
	}
	return b.String()
}

// Track finds an order by id and either of its contact phones.
func (s *PublicOrderService) Track(ctx context.Context, in *TrackInput) (*models.TrackedOrder, error) {
	if in == nil {
		return nil, utils.Invalid("Invalid payload")
	}
	orderID := strings.TrimSpace(in.OrderID)
	phone := strings.TrimSpace(in.Phone)
	if orderID == "" {
		return nil, utils.Invalid("Order ID is required")
	}
	if phone == "" {
		return nil, utils.Invalid("Phone number is required")
	}

	t, err := s.orders.Track(ctx, orderID, phone)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.NotFound("Order not found")
	}
	if err != nil {
		return nil, storageErr(err)
	}
	return t, nil
}
