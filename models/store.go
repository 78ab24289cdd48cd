package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Store struct {
	ID          int64     `json:"id"`
	VendorID    int64     `json:"vendor_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	PhoneNumber string    `json:"phone_number"`
	Email       string    `json:"email"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// VendorSales aggregates the order lines of products sold by one vendor.
type VendorSales struct {
	OrderLines int
	Revenue    decimal.Decimal
}

type VendorDashboard struct {
	TotalStores    int             `json:"total_stores"`
	TotalProducts  int             `json:"total_products"`
	TotalOrders    int             `json:"total_orders"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	RecentStores   []Store         `json:"recent_stores"`
	RecentProducts []Product       `json:"recent_products"`
}
