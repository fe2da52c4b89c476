package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/herbal_api/internal/models"
	"github.com/GTDGit/herbal_api/internal/repository"
	"github.com/GTDGit/herbal_api/internal/utils"
)

// UpdateOrderInput is an admin order update. At least one field must be set.
type UpdateOrderInput struct {
	OrderID             string `json:"orderId"`
	Status              string `json:"status"`
	PartnerPayoutStatus string `json:"partnerPayoutStatus"`
}

// AdminOrderService is the back-office view of orders. Fulfilment status and
// payout status are independent and may be changed separately.
type AdminOrderService struct {
	orders   OrderStore
	notifier OrderNotifier
	now      func() time.Time
}

// NewAdminOrderService creates an AdminOrderService. notifier may be nil.
func NewAdminOrderService(orders OrderStore, notifier OrderNotifier) *AdminOrderService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &AdminOrderService{orders: orders, notifier: notifier, now: time.Now}
}

// ParseOrderFilter builds a filter from raw query values. Unknown source or
// status values are ignored rather than rejected.
func ParseOrderFilter(q, source, status string) models.OrderFilter {
	f := models.OrderFilter{Query: strings.TrimSpace(q)}
	switch src := models.OrderSource(strings.ToUpper(strings.TrimSpace(source))); src {
	case models.SourcePublic, models.SourcePartner:
		f.Source = src
	}
	if st, ok := models.ParseOrderStatus(strings.ToUpper(strings.TrimSpace(status))); ok {
		f.Status = st
	}
	return f
}

// List returns matching orders, newest first.
func (s *AdminOrderService) List(ctx context.Context, f models.OrderFilter) ([]*models.Order, error) {
	orders, err := s.orders.List(ctx, f)
	if err != nil {
		return nil, storageErr(err)
	}
	return orders, nil
}

// Count returns the number of matching orders.
func (s *AdminOrderService) Count(ctx context.Context, f models.OrderFilter) (int64, error) {
	n, err := s.orders.Count(ctx, f)
	if err != nil {
		return 0, storageErr(err)
	}
	return n, nil
}

// UpdateOrder changes fulfilment status, payout status, or both. Marking a
// payout PAID stamps the paid-at time; any other payout status clears it.
func (s *AdminOrderService) UpdateOrder(ctx context.Context, in *UpdateOrderInput) (*models.Order, error) {
	if in == nil {
		return nil, utils.Invalid("Invalid payload")
	}
	orderID := strings.TrimSpace(in.OrderID)
	if orderID == "" {
		return nil, utils.Invalid("orderId required")
	}

	var upd repository.OrderUpdate
	if st, ok := models.ParseOrderStatus(in.Status); ok {
		upd.Status = &st
	}
	if ps, ok := models.ParsePayoutStatus(in.PartnerPayoutStatus); ok {
		upd.PayoutStatus = &ps
		if ps == models.PayoutPaid {
			now := s.now()
			upd.PaidAt = &now
		}
	}
	if upd.Status == nil && upd.PayoutStatus == nil {
		return nil, utils.Invalid("status or partnerPayoutStatus is required")
	}

	o, err := s.orders.Update(ctx, orderID, upd)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.NotFound("Order not found")
	}
	if err != nil {
		return nil, storageErr(err)
	}

	ev := log.Info().Str("order_id", o.ID).Str("status", string(o.Status))
	if o.PartnerPayoutStatus != nil {
		ev = ev.Str("payout_status", string(*o.PartnerPayoutStatus))
	}
	ev.Msg("Order updated")
	s.notifier.OrderUpdated(o)
	return o, nil
}
