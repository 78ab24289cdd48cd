package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-service/models"
)

func newCatalogService(f *fixture) *CatalogService {
	return NewCatalogService(f.repos.Products, f.repos.Categories, f.repos.Reviews)
}

func TestListProductsPagination(t *testing.T) {
	f := newFixture(t)
	store := f.store(f.user("vera", models.RoleVendor), "gadgets")
	for i := range 25 {
		f.product(store, fmt.Sprintf("Item %02d", i), "1.00", 1)
	}
	svc := newCatalogService(f)

	page, err := svc.ListProducts(f.ctx, ProductQuery{Sort: models.SortNameAsc})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultPageSize, page.PageSize)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasNext)
	assert.False(t, page.HasPrevious)
	assert.Equal(t, "Item 00", page.Items[0].Name)

	page, err = svc.ListProducts(f.ctx, ProductQuery{Sort: models.SortNameAsc, Page: 99})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Page)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, "Item 24", page.Items[0].Name)

	page, err = svc.ListProducts(f.ctx, ProductQuery{Page: -4, PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, MaxPageSize, page.PageSize)
	assert.Len(t, page.Items, 25)
}

func TestListProductsSearchAndCategory(t *testing.T) {
	f := newFixture(t)
	categories, err := f.repos.Categories.List(f.ctx)
	require.NoError(t, err)
	category := categories[0].ID

	store := f.store(f.user("vera", models.RoleVendor), "gadgets")
	phone := f.product(store, "Smart Phone", "300.00", 4)
	phone.CategoryID = &category
	require.NoError(t, f.repos.Products.Update(f.ctx, phone))
	f.product(store, "Phone case", "9.00", 4)
	f.product(store, "Desk", "90.00", 4)
	svc := newCatalogService(f)

	page, err := svc.ListProducts(f.ctx, ProductQuery{Text: "phone", Sort: models.SortPriceDesc})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Smart Phone", page.Items[0].Name)

	page, err = svc.ListProducts(f.ctx, ProductQuery{CategoryID: &category})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, categories[0].Name, page.Items[0].CategoryName)

	page, err = svc.ListProducts(f.ctx, ProductQuery{Text: "nothing matches"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.TotalPages)
}

func TestProductDetailAverageRating(t *testing.T) {
	f := newFixture(t)
	store := f.store(f.user("vera", models.RoleVendor), "gadgets")
	p := f.product(store, "Lamp", "1.00", 1)
	for i, rating := range []int{5, 4, 4} {
		buyer := f.user(fmt.Sprintf("b%d", i), models.RoleBuyer)
		require.NoError(t, f.repos.Reviews.Create(f.ctx, &models.Review{ProductID: p.ID, BuyerID: buyer.UserID, Rating: rating, Comment: "ok"}))
	}
	svc := newCatalogService(f)

	detail, err := svc.ProductDetail(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, detail.AverageRating)
	assert.Len(t, detail.Reviews, 3)
	assert.Equal(t, "b2", detail.Reviews[0].BuyerUsername)

	p.IsActive = false
	require.NoError(t, f.repos.Products.Update(f.ctx, p))
	_, err = svc.ProductDetail(f.ctx, p.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAverageRatingRounds(t *testing.T) {
	assert.Equal(t, 0, averageRating(nil))
	assert.Equal(t, 5, averageRating([]models.Review{{Rating: 5}, {Rating: 4}}))
	assert.Equal(t, 3, averageRating([]models.Review{{Rating: 3}, {Rating: 3}, {Rating: 4}}))
}

func TestFeaturedReturnsNewestSix(t *testing.T) {
	f := newFixture(t)
	store := f.store(f.user("vera", models.RoleVendor), "gadgets")
	for i := range 8 {
		f.product(store, fmt.Sprintf("P%d", i), "1.00", 1)
	}

	featured, err := newCatalogService(f).Featured(f.ctx)
	require.NoError(t, err)
	require.Len(t, featured, FeaturedCount)
	assert.Equal(t, "P7", featured[0].Name)
}
