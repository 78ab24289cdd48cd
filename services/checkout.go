package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"marketplace-service/models"
	"marketplace-service/repository"
)

// CheckoutService turns a session cart into a persisted order.
type CheckoutService struct {
	tx       repository.Transactor
	carts    repository.CartRepository
	products repository.ProductRepository
	orders   repository.OrderRepository
	users    repository.UserRepository
	events   EventPublisher
	newID    func() string
}

func NewCheckoutService(repos repository.Repositories, events EventPublisher) *CheckoutService {
	return &CheckoutService{
		tx:       repos.Tx,
		carts:    repos.Carts,
		products: repos.Products,
		orders:   repos.Orders,
		users:    repos.Users,
		events:   events,
		newID:    newID,
	}
}

// FinalizeCheckout validates every line against fresh stock, then decrements
// stock, writes the order and deletes the cart in one transaction. Either all
// of it happens or none of it does.
func (s *CheckoutService) FinalizeCheckout(ctx context.Context, actor models.Actor, sessionKey, shippingAddress string) (*models.Order, error) {
	if err := requireBuyer(actor); err != nil {
		return nil, err
	}

	cart, err := s.carts.GetBySessionKey(ctx, sessionKey)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.ErrEmptyCart
	}
	if err != nil {
		return nil, err
	}
	items, err := s.carts.Items(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, models.ErrEmptyCart
	}

	shippingAddress = strings.TrimSpace(shippingAddress)
	if shippingAddress == "" {
		return nil, models.ErrMissingShippingAddress
	}

	var order *models.Order
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// Re-read under lock; the cart may have changed since the check above.
		items, err := s.carts.Items(ctx, cart.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return models.ErrEmptyCart
		}

		for _, item := range items {
			if err := checkLine(item); err != nil {
				return err
			}
		}

		order = &models.Order{
			OrderID:         s.newID(),
			BuyerID:         actor.UserID,
			Status:          models.OrderPending,
			ShippingAddress: shippingAddress,
			TotalAmount:     decimal.Zero,
			Items:           make([]models.OrderItem, 0, len(items)),
		}
		for _, item := range items {
			ok, err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return &models.InsufficientStockError{
					ProductID:   item.ProductID,
					ProductName: item.Product.Name,
					Requested:   item.Quantity,
					Available:   item.Product.QuantityInStock,
				}
			}

			productID := item.ProductID
			line := models.OrderItem{
				ProductID:       &productID,
				ProductName:     item.Product.Name,
				Quantity:        item.Quantity,
				PriceAtPurchase: item.Product.Price,
			}
			order.Items = append(order.Items, line)
			order.TotalAmount = order.TotalAmount.Add(line.TotalPrice())
		}

		if err := s.orders.Create(ctx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return s.carts.Delete(ctx, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Order placed", "order_id", order.OrderID, "buyer_id", order.BuyerID, "total", order.TotalAmount.StringFixed(2))
	publishOrderEvent(ctx, s.events, s.users, models.OrderEvent{
		OrderID:  order.OrderID,
		BuyerID:  order.BuyerID,
		Type:     models.EventOrderCreated,
		Status:   order.Status,
		Total:    order.TotalAmount,
		Occurred: time.Now().UTC(),
	})
	return order, nil
}

func checkLine(item models.CartItem) error {
	if !item.Product.IsActive {
		return models.NotFound(fmt.Sprintf("product %q is no longer available", item.Product.Name))
	}
	if item.Quantity > item.Product.QuantityInStock {
		return &models.InsufficientStockError{
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			Requested:   item.Quantity,
			Available:   item.Product.QuantityInStock,
		}
	}
	return nil
}
