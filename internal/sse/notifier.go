package sse

import (
	"time"

	"github.com/GTDGit/herbal_api/internal/models"
)

// HubNotifier turns order changes into dashboard events.
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) OrderCreated(o *models.Order) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(orderToEvent(EventOrderCreated, o))
}

func (n *HubNotifier) OrderUpdated(o *models.Order) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(orderToEvent(EventOrderUpdated, o))
}

func orderToEvent(eventType EventType, o *models.Order) *OrderEvent {
	ev := &OrderEvent{
		Event:              eventType,
		OrderID:            o.ID,
		Source:             string(o.Source),
		PartnerID:          o.PartnerID,
		Status:             string(o.Status),
		TotalPartnerAmount: o.TotalPartnerAmount,
		PartnerProfit:      o.PartnerProfit,
		Timestamp:          time.Now(),
	}
	if o.PartnerPayoutStatus != nil {
		s := string(*o.PartnerPayoutStatus)
		ev.PartnerPayoutStatus = &s
	}
	return ev
}
