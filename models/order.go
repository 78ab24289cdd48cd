package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return OrderStatus(s), nil
	default:
		return "", &ValidationError{Field: "status", Message: "unknown order status " + s}
	}
}

type Order struct {
	ID              int64           `json:"id"`
	OrderID         string          `json:"order_id"`
	BuyerID         int64           `json:"buyer_id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          OrderStatus     `json:"status"`
	ShippingAddress string          `json:"shipping_address"`
	Items           []OrderItem     `json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem freezes name and price at purchase time; ProductID is nil once
// the product has been deleted.
type OrderItem struct {
	ID              int64           `json:"id"`
	OrderID         int64           `json:"-"`
	ProductID       *int64          `json:"product_id"`
	ProductName     string          `json:"product_name"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
}

func (i OrderItem) TotalPrice() decimal.Decimal {
	return i.PriceAtPurchase.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusUpdated = "order.status_updated"
)

type OrderEvent struct {
	OrderID    string          `json:"order_id"`
	BuyerID    int64           `json:"buyer_id"`
	BuyerEmail string          `json:"buyer_email"`
	Type       string          `json:"type"`
	Status     OrderStatus     `json:"status"`
	Total      decimal.Decimal `json:"total"`
	Occurred   time.Time       `json:"occurred"`
}
