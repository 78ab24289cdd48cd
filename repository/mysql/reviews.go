package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"marketplace-service/models"
	"marketplace-service/repository"
)

type reviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

const reviewSelect = "SELECT r.id, r.product_id, r.buyer_id, u.username, r.rating, r.comment, r.is_verified, r.created_at, r.updated_at FROM reviews r JOIN users u ON u.id = r.buyer_id"

func scanReview(row interface{ Scan(...any) error }) (models.Review, error) {
	var rv models.Review
	err := row.Scan(&rv.ID, &rv.ProductID, &rv.BuyerID, &rv.BuyerUsername, &rv.Rating,
		&rv.Comment, &rv.IsVerified, &rv.CreatedAt, &rv.UpdatedAt)
	return rv, err
}

func (r *reviewRepository) Create(ctx context.Context, rv *models.Review) error {
	rv.CreatedAt = now()
	rv.UpdatedAt = rv.CreatedAt
	res, err := conn(ctx, r.db).ExecContext(ctx,
		"INSERT INTO reviews (product_id, buyer_id, rating, comment, is_verified, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		rv.ProductID, rv.BuyerID, rv.Rating, rv.Comment, rv.IsVerified, rv.CreatedAt, rv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert review: %w", translate(err))
	}
	rv.ID, err = res.LastInsertId()
	return err
}

func (r *reviewRepository) GetByProductAndBuyer(ctx context.Context, productID, buyerID int64) (*models.Review, error) {
	rv, err := scanReview(conn(ctx, r.db).QueryRowContext(ctx,
		reviewSelect+" WHERE r.product_id = ? AND r.buyer_id = ?", productID, buyerID))
	if err != nil {
		return nil, translate(err)
	}
	return &rv, nil
}

func (r *reviewRepository) ListByProduct(ctx context.Context, productID int64) ([]models.Review, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		reviewSelect+" WHERE r.product_id = ? ORDER BY r.created_at DESC, r.id DESC", productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}
