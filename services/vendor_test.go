package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-service/models"
)

func TestVendorStoreLifecycle(t *testing.T) {
	f := newFixture(t)
	vendor := f.user("vera", models.RoleVendor)
	other := f.user("victor", models.RoleVendor)
	svc := NewVendorService(f.repos)

	store, err := svc.CreateStore(f.ctx, vendor, StoreInput{Name: "Gadgets", Email: "gadgets@example.com"})
	require.NoError(t, err)
	assert.True(t, store.IsActive)

	_, err = svc.CreateStore(f.ctx, other, StoreInput{Name: "Copy", Email: "gadgets@example.com"})
	assert.ErrorIs(t, err, models.ErrValidation)

	inactive := false
	updated, err := svc.UpdateStore(f.ctx, vendor, store.ID, StoreInput{Name: "Gizmos", Email: "gadgets@example.com", IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Gizmos", updated.Name)
	assert.False(t, updated.IsActive)

	_, err = svc.UpdateStore(f.ctx, other, store.ID, StoreInput{Name: "Mine now", Email: "x@example.com"})
	assert.ErrorIs(t, err, models.ErrAuthorization)

	_, err = svc.DeleteStore(f.ctx, other, store.ID)
	assert.ErrorIs(t, err, models.ErrAuthorization)
	_, err = svc.DeleteStore(f.ctx, vendor, store.ID)
	require.NoError(t, err)
	_, err = svc.DeleteStore(f.ctx, vendor, store.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestVendorProductRules(t *testing.T) {
	f := newFixture(t)
	vendor := f.user("vera", models.RoleVendor)
	buyer := f.user("alice", models.RoleBuyer)
	svc := NewVendorService(f.repos)
	store := f.store(vendor, "gadgets")

	_, err := svc.CreateProduct(f.ctx, vendor, store.ID, ProductInput{Name: "Free", Price: decimal.Zero})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.CreateProduct(f.ctx, vendor, store.ID, ProductInput{Name: "Neg", Price: decimal.NewFromInt(1), QuantityInStock: -1})
	assert.ErrorIs(t, err, models.ErrValidation)

	missing := int64(999)
	_, err = svc.CreateProduct(f.ctx, vendor, store.ID, ProductInput{Name: "Cat", Price: decimal.NewFromInt(1), CategoryID: &missing})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.CreateProduct(f.ctx, buyer, store.ID, ProductInput{Name: "Nope", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, models.ErrAuthorization)

	p, err := svc.CreateProduct(f.ctx, vendor, store.ID, ProductInput{Name: "Lamp", Price: decimal.RequireFromString("12.50"), QuantityInStock: 3})
	require.NoError(t, err)
	assert.Equal(t, "gadgets", p.StoreName)

	p, err = svc.UpdateProduct(f.ctx, vendor, p.ID, ProductInput{Name: "Lamp v2", Price: decimal.RequireFromString("15"), QuantityInStock: 7})
	require.NoError(t, err)
	assert.Equal(t, "Lamp v2", p.Name)
	assert.Equal(t, 7, p.QuantityInStock)

	_, products, err := svc.StoreProducts(f.ctx, vendor, store.ID)
	require.NoError(t, err)
	assert.Len(t, products, 1)

	_, err = svc.DeleteProduct(f.ctx, f.user("victor", models.RoleVendor), p.ID)
	assert.ErrorIs(t, err, models.ErrAuthorization)
	_, err = svc.DeleteProduct(f.ctx, vendor, p.ID)
	require.NoError(t, err)
}

func TestVendorDashboard(t *testing.T) {
	f := newFixture(t)
	vendor := f.user("vera", models.RoleVendor)
	buyer := f.user("alice", models.RoleBuyer)
	store := f.store(vendor, "gadgets")
	a := f.product(store, "A", "10.00", 10)
	b := f.product(store, "B", "2.50", 10)
	f.putInCart("sess", a, 2)
	f.putInCart("sess", b, 4)
	_, err := f.checkout().FinalizeCheckout(f.ctx, buyer, "sess", "1 Road")
	require.NoError(t, err)

	f.putInCart("sess", a, 1)
	cancelled, err := f.checkout().FinalizeCheckout(f.ctx, buyer, "sess", "1 Road")
	require.NoError(t, err)
	_, err = NewOrderService(f.repos, f.events).UpdateStatus(f.ctx, buyer, cancelled.OrderID, "cancelled")
	require.NoError(t, err)

	dash, err := NewVendorService(f.repos).Dashboard(f.ctx, vendor)
	require.NoError(t, err)
	assert.Equal(t, 1, dash.TotalStores)
	assert.Equal(t, 2, dash.TotalProducts)
	assert.Equal(t, 2, dash.TotalOrders)
	assert.True(t, decimal.RequireFromString("30.00").Equal(dash.TotalRevenue))
	assert.Len(t, dash.RecentStores, 1)
	assert.Len(t, dash.RecentProducts, 2)

	_, err = NewVendorService(f.repos).Dashboard(f.ctx, buyer)
	assert.ErrorIs(t, err, models.ErrAuthorization)
}
