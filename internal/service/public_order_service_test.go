package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/herbal_api/internal/models"
	"github.com/GTDGit/herbal_api/internal/utils"
)

func TestPlaceOrder_AppendsCartToAddress(t *testing.T) {
	store := newMemStore()
	notifier := &recordingNotifier{}
	svc := NewPublicOrderService(orderStore{store}, notifier)

	o, err := svc.PlaceOrder(context.Background(), &PublicOrderInput{
		Name: " Bilal ", FatherName: "Aslam", Address: "House 4, Lahore", Phone1: "0300", Phone2: " ",
		Items: []CartItemInput{
			{ProductID: "oil", Name: "Mustard Oil", Variant: "1L", Qty: 2},
			{ProductID: "ghee", Name: "Desi Ghee", Qty: 1},
			{ProductID: "", Name: "Ignored", Qty: 1},
			{ProductID: "x", Name: "Zero", Qty: 0},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, models.SourcePublic, o.Source)
	assert.Equal(t, models.OrderNew, o.Status)
	assert.Equal(t, "Bilal", o.Name)
	assert.Equal(t, "House 4, Lahore\n\nCart:\n- Mustard Oil (1L) x2\n- Desi Ghee x1", o.Address)
	assert.Equal(t, "oil", *o.ProductID)
	assert.Nil(t, o.Phone2)
	assert.Nil(t, o.TotalBaseAmount)
	assert.Nil(t, o.PartnerPayoutStatus)
	assert.Len(t, notifier.created, 1)
}

func TestPlaceOrder_WithoutCart(t *testing.T) {
	store := newMemStore()
	o, err := NewPublicOrderService(orderStore{store}, nil).PlaceOrder(context.Background(), &PublicOrderInput{
		Name: "n", FatherName: "f", Address: "addr", Phone1: "1",
	})
	require.NoError(t, err)
	assert.Equal(t, "addr", o.Address)
	assert.Nil(t, o.ProductID)
}

func TestPlaceOrder_RequiredFields(t *testing.T) {
	svc := NewPublicOrderService(orderStore{newMemStore()}, nil)
	tests := map[string]*PublicOrderInput{
		"Name is required":           {FatherName: "f", Address: "a", Phone1: "1"},
		"Father name is required":    {Name: "n", Address: "a", Phone1: "1"},
		"Address is required":        {Name: "n", FatherName: "f", Phone1: "1"},
		"Contact number is required": {Name: "n", FatherName: "f", Address: "a"},
	}
	for msg, in := range tests {
		_, err := svc.PlaceOrder(context.Background(), in)
		assert.ErrorIs(t, err, utils.ErrValidation)
		assert.Equal(t, msg, err.Error())
	}
}

func TestPlaceOrder_StorageFailure(t *testing.T) {
	store := newMemStore()
	store.failWith = errors.New("database is closed")
	_, err := NewPublicOrderService(orderStore{store}, nil).PlaceOrder(context.Background(), &PublicOrderInput{
		Name: "n", FatherName: "f", Address: "a", Phone1: "1",
	})
	assert.ErrorIs(t, err, utils.ErrStorageUnavailable)
}

func TestTrack(t *testing.T) {
	store := newMemStore()
	svc := NewPublicOrderService(orderStore{store}, nil)
	o, err := svc.PlaceOrder(context.Background(), &PublicOrderInput{
		Name: "n", FatherName: "f", Address: "a", Phone1: "0300", Phone2: "0311",
	})
	require.NoError(t, err)

	got, err := svc.Track(context.Background(), &TrackInput{OrderID: o.ID, Phone: "0311"})
	require.NoError(t, err)
	assert.Equal(t, models.OrderNew, got.Status)

	_, err = svc.Track(context.Background(), &TrackInput{OrderID: o.ID, Phone: "0999"})
	assert.ErrorIs(t, err, utils.ErrNotFound)

	_, err = svc.Track(context.Background(), &TrackInput{Phone: "0300"})
	assert.Equal(t, "Order ID is required", err.Error())
	_, err = svc.Track(context.Background(), &TrackInput{OrderID: o.ID})
	assert.Equal(t, "Phone number is required", err.Error())
}
