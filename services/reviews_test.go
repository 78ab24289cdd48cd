package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-service/models"
)

func newReviewService(f *fixture) *ReviewService {
	return NewReviewService(f.repos.Tx, f.repos.Products, f.repos.Reviews, f.repos.Orders)
}

func TestAddReviewUniquePerBuyer(t *testing.T) {
	f := newFixture(t)
	buyer := f.user("alice", models.RoleBuyer)
	store := f.store(f.user("vera", models.RoleVendor), "gadgets")
	p := f.product(store, "Lamp", "1.00", 1)
	svc := newReviewService(f)

	first, err := svc.AddReview(f.ctx, buyer, p.ID, 4, "  Solid lamp ")
	require.NoError(t, err)
	assert.Equal(t, "Solid lamp", first.Comment)
	assert.False(t, first.IsVerified)

	_, err = svc.AddReview(f.ctx, buyer, p.ID, 1, "changed my mind")
	assert.ErrorIs(t, err, models.ErrDuplicateReview)
	assert.ErrorIs(t, err, models.ErrValidation)

	stored, err := f.repos.Reviews.GetByProductAndBuyer(f.ctx, p.ID, buyer.UserID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Rating)
	assert.Equal(t, "Solid lamp", stored.Comment)
}

func TestAddReviewVerifiedAfterPurchase(t *testing.T) {
	f := newFixture(t)
	buyer := f.user("alice", models.RoleBuyer)
	store := f.store(f.user("vera", models.RoleVendor), "gadgets")
	p := f.product(store, "Lamp", "1.00", 5)
	f.putInCart("sess", p, 1)
	_, err := f.checkout().FinalizeCheckout(f.ctx, buyer, "sess", "1 Road")
	require.NoError(t, err)

	review, err := newReviewService(f).AddReview(f.ctx, buyer, p.ID, 5, "Bought it, love it")
	require.NoError(t, err)
	assert.True(t, review.IsVerified)
}

func TestAddReviewValidation(t *testing.T) {
	f := newFixture(t)
	buyer := f.user("alice", models.RoleBuyer)
	vendor := f.user("vera", models.RoleVendor)
	p := f.product(f.store(vendor, "gadgets"), "Lamp", "1.00", 1)
	svc := newReviewService(f)

	_, err := svc.AddReview(f.ctx, vendor, p.ID, 5, "my own product")
	assert.ErrorIs(t, err, models.ErrAuthorization)

	_, err = svc.AddReview(f.ctx, buyer, 404, 5, "ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.AddReview(f.ctx, buyer, p.ID, 6, "too good")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.AddReview(f.ctx, buyer, p.ID, 3, "   ")
	assert.ErrorIs(t, err, models.ErrValidation)
}
