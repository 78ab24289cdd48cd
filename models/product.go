package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID              int64           `json:"id"`
	StoreID         int64           `json:"store_id"`
	StoreName       string          `json:"store_name"`
	VendorID        int64           `json:"vendor_id"`
	CategoryID      *int64          `json:"category_id,omitempty"`
	CategoryName    string          `json:"category_name,omitempty"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	QuantityInStock int             `json:"quantity_in_stock"`
	ImageURL        string          `json:"image_url,omitempty"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (p Product) InStock() bool {
	return p.QuantityInStock > 0
}

type ProductSort string

const (
	SortNameAsc   ProductSort = "name_asc"
	SortNameDesc  ProductSort = "name_desc"
	SortPriceAsc  ProductSort = "price_asc"
	SortPriceDesc ProductSort = "price_desc"
	SortNewest    ProductSort = "newest"
)

// ParseProductSort falls back to newest for unknown keys.
func ParseProductSort(s string) ProductSort {
	switch ProductSort(s) {
	case SortNameAsc, SortNameDesc, SortPriceAsc, SortPriceDesc, SortNewest:
		return ProductSort(s)
	default:
		return SortNewest
	}
}

// ProductFilter selects active products for the catalog.
type ProductFilter struct {
	Text       string
	CategoryID *int64
	Sort       ProductSort
}

type Page[T any] struct {
	Items       []T  `json:"items"`
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// NewPage clamps page into [1, totalPages] the same way for every listing.
func NewPage[T any](page, pageSize, total int) Page[T] {
	totalPages := 1
	if total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return Page[T]{
		Items:       []T{},
		Page:        page,
		PageSize:    pageSize,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}

func (p Page[T]) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type Review struct {
	ID            int64     `json:"id"`
	ProductID     int64     `json:"product_id"`
	BuyerID       int64     `json:"buyer_id"`
	BuyerUsername string    `json:"buyer_username"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment"`
	IsVerified    bool      `json:"is_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ProductDetail struct {
	Product       Product  `json:"product"`
	Reviews       []Review `json:"reviews"`
	AverageRating int      `json:"average_rating"`
}
