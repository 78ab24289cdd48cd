package services

import (
	"context"
	"errors"
	"strings"

	"marketplace-service/models"
	"marketplace-service/repository"
)

type ReviewService struct {
	tx       repository.Transactor
	products repository.ProductRepository
	reviews  repository.ReviewRepository
	orders   repository.OrderRepository
}

func NewReviewService(tx repository.Transactor, products repository.ProductRepository, reviews repository.ReviewRepository, orders repository.OrderRepository) *ReviewService {
	return &ReviewService{tx: tx, products: products, reviews: reviews, orders: orders}
}

// AddReview records the buyer's single review of a product. The review is
// verified when the buyer has a live order containing the product.
func (s *ReviewService) AddReview(ctx context.Context, actor models.Actor, productID int64, rating int, comment string) (*models.Review, error) {
	if err := requireBuyer(actor); err != nil {
		return nil, err
	}

	var review *models.Review
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.products.GetByID(ctx, productID); err != nil {
			return notFound(err, "product")
		}

		comment = strings.TrimSpace(comment)
		if rating < 1 || rating > 5 {
			return models.Invalid("rating", "must be between 1 and 5")
		}
		if comment == "" {
			return models.Invalid("comment", "is required")
		}

		_, err := s.reviews.GetByProductAndBuyer(ctx, productID, actor.UserID)
		switch {
		case err == nil:
			return models.ErrDuplicateReview
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}

		verified, err := s.orders.HasPurchased(ctx, actor.UserID, productID)
		if err != nil {
			return err
		}

		review = &models.Review{
			ProductID:  productID,
			BuyerID:    actor.UserID,
			Rating:     rating,
			Comment:    comment,
			IsVerified: verified,
		}
		if err := s.reviews.Create(ctx, review); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return models.ErrDuplicateReview
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}
