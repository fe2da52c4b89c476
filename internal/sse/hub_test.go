package sse

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/herbal_api/internal/models"
)

func TestHub_BroadcastToRegisteredClients(t *testing.T) {
	hub := NewHub()
	a := hub.Register("a")
	b := hub.Register("b")
	assert.Equal(t, 2, hub.ClientCount())

	hub.Broadcast(&OrderEvent{Event: EventOrderCreated, OrderID: "o1"})

	for _, c := range []*Client{a, b} {
		var ev OrderEvent
		require.NoError(t, json.Unmarshal(<-c.Events, &ev))
		assert.Equal(t, "o1", ev.OrderID)
	}

	hub.Unregister("a")
	_, open := <-a.Events
	assert.False(t, open)
	assert.Equal(t, 1, hub.ClientCount())
}

func TestHub_DropsWhenClientBufferFull(t *testing.T) {
	hub := NewHub()
	c := hub.Register("slow")

	for i := 0; i < clientBuffer+10; i++ {
		hub.Broadcast(&OrderEvent{Event: EventOrderUpdated, OrderID: "o"})
	}
	assert.Len(t, c.Events, clientBuffer)
}

func TestHubNotifier(t *testing.T) {
	hub := NewHub()
	n := NewHubNotifier(hub)

	// No listeners: nothing to do.
	n.OrderCreated(&models.Order{ID: "ignored"})

	c := hub.Register("admin")
	paid := models.PayoutPaid
	partnerID := "p1"
	profit := int64(400)
	n.OrderUpdated(&models.Order{
		ID: "o1", Source: models.SourcePartner, PartnerID: &partnerID,
		Status: models.OrderShipped, PartnerPayoutStatus: &paid, PartnerProfit: &profit,
	})

	require.Len(t, c.Events, 1)
	var ev OrderEvent
	require.NoError(t, json.Unmarshal(<-c.Events, &ev))
	assert.Equal(t, EventOrderUpdated, ev.Event)
	assert.Equal(t, "SHIPPED", ev.Status)
	assert.Equal(t, "PAID", *ev.PartnerPayoutStatus)
	assert.Equal(t, int64(400), *ev.PartnerProfit)
}
