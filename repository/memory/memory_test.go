package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-service/models"
	"marketplace-service/repository"
)

func seed(t *testing.T, repos repository.Repositories) (*models.User, *models.Store, *models.Product) {
	t.Helper()
	ctx := context.Background()

	vendor := &models.User{Username: "vendor", Email: "vendor@example.com", Role: models.RoleVendor}
	require.NoError(t, repos.Users.Create(ctx, vendor))

	store := &models.Store{VendorID: vendor.ID, Name: "Corner Shop", Email: "shop@example.com", IsActive: true}
	require.NoError(t, repos.Stores.Create(ctx, store))

	product := &models.Product{StoreID: store.ID, Name: "Lamp", Price: decimal.RequireFromString("19.99"), QuantityInStock: 3, IsActive: true}
	require.NoError(t, repos.Products.Create(ctx, product))
	return vendor, store, product
}

func TestNewSeedsCategories(t *testing.T) {
	categories, err := New().Repositories().Categories.List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, categories)
	for i := 1; i < len(categories); i++ {
		assert.LessOrEqual(t, categories[i-1].Name, categories[i].Name)
	}
}

func TestWithinTxRestoresStateOnError(t *testing.T) {
	repos := New().Repositories()
	_, _, product := seed(t, repos)
	ctx := context.Background()

	boom := errors.New("boom")
	err := repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		ok, err := repos.Products.DecrementStock(ctx, product.ID, 2)
		require.NoError(t, err)
		require.True(t, ok)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repos.Products.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.QuantityInStock)
}

func TestDecrementStockRefusesOversell(t *testing.T) {
	repos := New().Repositories()
	_, _, product := seed(t, repos)
	ctx := context.Background()

	ok, err := repos.Products.DecrementStock(ctx, product.ID, 4)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repos.Products.DecrementStock(ctx, product.ID, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repos.Products.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.QuantityInStock)
}

func TestProductJoinsStoreAndVendor(t *testing.T) {
	repos := New().Repositories()
	vendor, store, product := seed(t, repos)

	got, err := repos.Products.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, store.Name, got.StoreName)
	assert.Equal(t, vendor.ID, got.VendorID)
}

func TestDeleteProductKeepsOrderHistory(t *testing.T) {
	repos := New().Repositories()
	_, _, product := seed(t, repos)
	ctx := context.Background()

	buyer := &models.User{Username: "buyer", Email: "buyer@example.com", Role: models.RoleBuyer}
	require.NoError(t, repos.Users.Create(ctx, buyer))

	productID := product.ID
	order := &models.Order{
		OrderID: "0b5e8f40-0000-4000-8000-000000000001",
		BuyerID: buyer.ID,
		Status:  models.OrderPending,
		Items: []models.OrderItem{{
			ProductID: &productID, ProductName: product.Name, Quantity: 1, PriceAtPurchase: product.Price,
		}},
	}
	require.NoError(t, repos.Orders.Create(ctx, order))
	require.NoError(t, repos.Products.Delete(ctx, product.ID))

	got, err := repos.Orders.GetByOrderID(ctx, order.OrderID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Nil(t, got.Items[0].ProductID)
	assert.Equal(t, "Lamp", got.Items[0].ProductName)
}

func TestDuplicateUsernameRejected(t *testing.T) {
	repos := New().Repositories()
	seed(t, repos)

	err := repos.Users.Create(context.Background(), &models.User{Username: "VENDOR", Email: "other@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestCatalogFilterAndSort(t *testing.T) {
	repos := New().Repositories()
	_, store, _ := seed(t, repos)
	ctx := context.Background()

	for _, p := range []models.Product{
		{StoreID: store.ID, Name: "Desk", Price: decimal.NewFromInt(120), IsActive: true},
		{StoreID: store.ID, Name: "Chair", Price: decimal.NewFromInt(45), IsActive: true},
		{StoreID: store.ID, Name: "Hidden lamp", Price: decimal.NewFromInt(5), IsActive: false},
	} {
		require.NoError(t, repos.Products.Create(ctx, &p))
	}

	products, err := repos.Products.List(ctx, models.ProductFilter{Sort: models.SortPriceAsc}, 10, 0)
	require.NoError(t, err)
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Lamp", "Chair", "Desk"}, names)

	n, err := repos.Products.Count(ctx, models.ProductFilter{Text: "LAMP"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = repos.Products.Count(ctx, models.ProductFilter{Text: "corner"})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
