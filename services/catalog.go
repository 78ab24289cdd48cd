package services

import (
	"context"
	"math"

	"marketplace-service/models"
	"marketplace-service/repository"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
	FeaturedCount   = 6
)

type ProductQuery struct {
	Text       string
	CategoryID *int64
	Sort       models.ProductSort
	Page       int
	PageSize   int
}

type CatalogService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	reviews    repository.ReviewRepository
}

func NewCatalogService(products repository.ProductRepository, categories repository.CategoryRepository, reviews repository.ReviewRepository) *CatalogService {
	return &CatalogService{products: products, categories: categories, reviews: reviews}
}

// ListProducts searches active products and returns the requested page,
// clamped into range.
func (s *CatalogService) ListProducts(ctx context.Context, q ProductQuery) (models.Page[models.Product], error) {
	size := q.PageSize
	switch {
	case size <= 0:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}
	filter := models.ProductFilter{Text: q.Text, CategoryID: q.CategoryID, Sort: q.Sort}

	total, err := s.products.Count(ctx, filter)
	if err != nil {
		return models.Page[models.Product]{}, err
	}
	page := models.NewPage[models.Product](q.Page, size, total)
	if total == 0 {
		return page, nil
	}
	if page.Items, err = s.products.List(ctx, filter, page.PageSize, page.Offset()); err != nil {
		return models.Page[models.Product]{}, err
	}
	return page, nil
}

// Featured returns the newest active products for the home page.
func (s *CatalogService) Featured(ctx context.Context) ([]models.Product, error) {
	return s.products.List(ctx, models.ProductFilter{Sort: models.SortNewest}, FeaturedCount, 0)
}

func (s *CatalogService) ProductDetail(ctx context.Context, id int64) (*models.ProductDetail, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}
	if !product.IsActive {
		return nil, models.NotFound("product")
	}
	reviews, err := s.reviews.ListByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.ProductDetail{
		Product:       *product,
		Reviews:       reviews,
		AverageRating: averageRating(reviews),
	}, nil
}

func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

// averageRating is the mean rating rounded to the nearest whole star.
func averageRating(reviews []models.Review) int {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return int(math.Round(float64(sum) / float64(len(reviews))))
}
