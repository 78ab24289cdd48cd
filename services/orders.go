package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace-service/models"
	"marketplace-service/repository"
)

const OrdersPageSize = 10

type OrderService struct {
	tx       repository.Transactor
	orders   repository.OrderRepository
	products repository.ProductRepository
	users    repository.UserRepository
	events   EventPublisher
}

func NewOrderService(repos repository.Repositories, events EventPublisher) *OrderService {
	return &OrderService{tx: repos.Tx, orders: repos.Orders, products: repos.Products, users: repos.Users, events: events}
}

// ListOrders pages through the buyer's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, actor models.Actor, page int) (models.Page[models.Order], error) {
	if err := requireBuyer(actor); err != nil {
		return models.Page[models.Order]{}, err
	}
	total, err := s.orders.CountByBuyer(ctx, actor.UserID)
	if err != nil {
		return models.Page[models.Order]{}, err
	}
	p := models.NewPage[models.Order](page, OrdersPageSize, total)
	if total == 0 {
		return p, nil
	}
	if p.Items, err = s.orders.ListByBuyer(ctx, actor.UserID, p.PageSize, p.Offset()); err != nil {
		return models.Page[models.Order]{}, err
	}
	return p, nil
}

// OrderDetail returns one of the buyer's orders. Orders of other buyers are
// reported as missing.
func (s *OrderService) OrderDetail(ctx context.Context, actor models.Actor, orderID string) (*models.Order, error) {
	if err := requireBuyer(actor); err != nil {
		return nil, err
	}
	order, err := s.orders.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, notFound(err, "order")
	}
	if order.BuyerID != actor.UserID {
		return nil, models.NotFound("order")
	}
	return order, nil
}

// next is the fulfilment pipeline a vendor walks an order along.
var next = map[models.OrderStatus]models.OrderStatus{
	models.OrderPending:    models.OrderProcessing,
	models.OrderProcessing: models.OrderShipped,
	models.OrderShipped:    models.OrderDelivered,
}

// UpdateStatus applies a status change allowed for the actor's role.
func (s *OrderService) UpdateStatus(ctx context.Context, actor models.Actor, orderID, status string) (*models.Order, error) {
	target, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByOrderID(ctx, orderID)
		if err != nil {
			return notFound(err, "order")
		}
		if err := s.checkTransition(ctx, actor, o, target); err != nil {
			return err
		}
		if err := s.orders.UpdateStatus(ctx, o.ID, target); err != nil {
			return notFound(err, "order")
		}
		if target == models.OrderCancelled {
			if err := s.restock(ctx, o); err != nil {
				return err
			}
		}
		o.Status = target
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishOrderEvent(ctx, s.events, s.users, models.OrderEvent{
		OrderID:  order.OrderID,
		BuyerID:  order.BuyerID,
		Type:     models.EventOrderStatusUpdated,
		Status:   order.Status,
		Total:    order.TotalAmount,
		Occurred: time.Now().UTC(),
	})
	return order, nil
}

func (s *OrderService) checkTransition(ctx context.Context, actor models.Actor, order *models.Order, target models.OrderStatus) error {
	switch actor.Role {
	case models.RoleBuyer:
		if order.BuyerID != actor.UserID {
			return models.NotFound("order")
		}
		if target != models.OrderCancelled {
			return models.Forbidden("buyers can only cancel orders")
		}
		if order.Status != models.OrderPending {
			return models.Invalid("status", "only pending orders can be cancelled")
		}
		return nil
	case models.RoleVendor:
		ok, err := s.orders.VendorHasItems(ctx, order.ID, actor.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return models.Forbidden("order contains none of your products")
		}
		if target == models.OrderCancelled && (order.Status == models.OrderPending || order.Status == models.OrderProcessing) {
			return nil
		}
		if next[order.Status] == target {
			return nil
		}
		return models.Invalid("status", fmt.Sprintf("cannot move order from %s to %s", order.Status, target))
	default:
		return models.Forbidden("unknown account type")
	}
}

// restock returns a cancelled order's quantities to the products that still exist.
func (s *OrderService) restock(ctx context.Context, order *models.Order) error {
	for _, item := range order.Items {
		if item.ProductID == nil {
			continue
		}
		err := s.products.IncrementStock(ctx, *item.ProductID, item.Quantity)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			continue
		case err != nil:
			return fmt.Errorf("failed to restock product %d: %w", *item.ProductID, err)
		}
	}
	return nil
}
