package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-service/models"
)

type placedOrder struct {
	buyer, vendor models.Actor
	order         *models.Order
}

func placeOrder(t *testing.T, f *fixture) placedOrder {
	t.Helper()
	buyer := f.user("alice", models.RoleBuyer)
	vendor := f.user("vera", models.RoleVendor)
	f.putInCart("sess", f.product(f.store(vendor, "gadgets"), "Lamp", "5.00", 5), 1)
	order, err := f.checkout().FinalizeCheckout(f.ctx, buyer, "sess", "1 Road")
	require.NoError(t, err)
	return placedOrder{buyer: buyer, vendor: vendor, order: order}
}

func TestOrderDetailOwnerOnly(t *testing.T) {
	f := newFixture(t)
	placed := placeOrder(t, f)
	svc := NewOrderService(f.repos, f.events)

	got, err := svc.OrderDetail(f.ctx, placed.buyer, placed.order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, placed.order.TotalAmount.String(), got.TotalAmount.String())

	_, err = svc.OrderDetail(f.ctx, f.user("mallory", models.RoleBuyer), placed.order.OrderID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.OrderDetail(f.ctx, placed.buyer, "no-such-order")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListOrdersPaged(t *testing.T) {
	f := newFixture(t)
	buyer := f.user("alice", models.RoleBuyer)
	p := f.product(f.store(f.user("vera", models.RoleVendor), "gadgets"), "Lamp", "1.00", 100)
	for range 12 {
		f.putInCart("sess", p, 1)
		_, err := f.checkout().FinalizeCheckout(f.ctx, buyer, "sess", "1 Road")
		require.NoError(t, err)
	}
	svc := NewOrderService(f.repos, f.events)

	page, err := svc.ListOrders(f.ctx, buyer, 1)
	require.NoError(t, err)
	assert.Len(t, page.Items, OrdersPageSize)
	assert.Equal(t, 12, page.Total)
	assert.True(t, page.HasNext)

	page, err = svc.ListOrders(f.ctx, buyer, 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Len(t, page.Items[0].Items, 1)
}

func TestBuyerCancelsPendingOrder(t *testing.T) {
	f := newFixture(t)
	placed := placeOrder(t, f)
	svc := NewOrderService(f.repos, f.events)
	lampID := *placed.order.Items[0].ProductID
	require.Equal(t, 4, f.stock(lampID))

	_, err := svc.UpdateStatus(f.ctx, placed.buyer, placed.order.OrderID, "shipped")
	assert.ErrorIs(t, err, models.ErrAuthorization)

	order, err := svc.UpdateStatus(f.ctx, placed.buyer, placed.order.OrderID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, order.Status)
	assert.Equal(t, 5, f.stock(lampID), "cancelling returns the units to stock")

	_, err = svc.UpdateStatus(f.ctx, placed.buyer, placed.order.OrderID, "cancelled")
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, 5, f.stock(lampID))

	last := f.events.events[len(f.events.events)-1]
	assert.Equal(t, models.EventOrderStatusUpdated, last.Type)
	assert.Equal(t, models.OrderCancelled, last.Status)
}

func TestVendorAdvancesOrder(t *testing.T) {
	f := newFixture(t)
	placed := placeOrder(t, f)
	svc := NewOrderService(f.repos, f.events)

	_, err := svc.UpdateStatus(f.ctx, placed.vendor, placed.order.OrderID, "delivered")
	assert.ErrorIs(t, err, models.ErrValidation)

	for _, status := range []string{"processing", "shipped", "delivered"} {
		order, err := svc.UpdateStatus(f.ctx, placed.vendor, placed.order.OrderID, status)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatus(status), order.Status)
	}

	_, err = svc.UpdateStatus(f.ctx, placed.vendor, placed.order.OrderID, "cancelled")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.UpdateStatus(f.ctx, f.user("victor", models.RoleVendor), placed.order.OrderID, "cancelled")
	assert.ErrorIs(t, err, models.ErrAuthorization)

	_, err = svc.UpdateStatus(f.ctx, placed.vendor, placed.order.OrderID, "lost")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestVendorCancelRestocksSurvivingProducts(t *testing.T) {
	f := newFixture(t)
	buyer := f.user("alice", models.RoleBuyer)
	vendor := f.user("vera", models.RoleVendor)
	store := f.store(vendor, "gadgets")
	lamp := f.product(store, "Lamp", "5.00", 5)
	desk := f.product(store, "Desk", "80.00", 3)
	f.putInCart("sess", lamp, 2)
	f.putInCart("sess", desk, 1)
	placed, err := f.checkout().FinalizeCheckout(f.ctx, buyer, "sess", "1 Road")
	require.NoError(t, err)
	require.NoError(t, f.repos.Products.Delete(f.ctx, desk.ID))

	svc := NewOrderService(f.repos, f.events)
	_, err = svc.UpdateStatus(f.ctx, vendor, placed.OrderID, "processing")
	require.NoError(t, err)
	order, err := svc.UpdateStatus(f.ctx, vendor, placed.OrderID, "cancelled")
	require.NoError(t, err)

	assert.Equal(t, models.OrderCancelled, order.Status)
	assert.Equal(t, 5, f.stock(lamp.ID))
}
