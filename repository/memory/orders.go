package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"marketplace-service/models"
	"marketplace-service/repository"
)

type orderRepository struct {
	db *DB
}

func (st *state) orderWithItems(o models.Order) models.Order {
	o.Items = []models.OrderItem{}
	for _, item := range st.orderItems {
		if item.OrderID == o.ID {
			o.Items = append(o.Items, item)
		}
	}
	slices.SortFunc(o.Items, func(a, b models.OrderItem) int { return cmp.Compare(a.ID, b.ID) })
	return o
}

func (r *orderRepository) Create(ctx context.Context, o *models.Order) error {
	return r.db.view(ctx, func(st *state) error {
		if _, ok := st.users[o.BuyerID]; !ok {
			return fmt.Errorf("buyer %d: %w", o.BuyerID, repository.ErrNotFound)
		}
		for _, existing := range st.orders {
			if existing.OrderID == o.OrderID {
				return fmt.Errorf("%w: order id %s", repository.ErrDuplicate, o.OrderID)
			}
		}
		o.ID = st.next("orders")
		o.CreatedAt = now()
		o.UpdatedAt = o.CreatedAt
		for i := range o.Items {
			o.Items[i].ID = st.next("order_items")
			o.Items[i].OrderID = o.ID
			st.orderItems[o.Items[i].ID] = o.Items[i]
		}
		stored := *o
		stored.Items = nil
		st.orders[o.ID] = stored
		return nil
	})
}

func (r *orderRepository) GetByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	var found *models.Order
	err := r.db.view(ctx, func(st *state) error {
		for _, o := range st.orders {
			if o.OrderID == orderID {
				joined := st.orderWithItems(o)
				found = &joined
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return found, err
}

func (st *state) buyerOrders(buyerID int64) []models.Order {
	orders := []models.Order{}
	for _, o := range st.orders {
		if o.BuyerID == buyerID {
			orders = append(orders, o)
		}
	}
	return orders
}

func (r *orderRepository) ListByBuyer(ctx context.Context, buyerID int64, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.view(ctx, func(st *state) error {
		all := st.buyerOrders(buyerID)
		slices.SortFunc(all, func(a, b models.Order) int {
			return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
		})
		orders = window(all, limit, offset)
		for i := range orders {
			orders[i] = st.orderWithItems(orders[i])
		}
		return nil
	})
	return orders, err
}

func (r *orderRepository) CountByBuyer(ctx context.Context, buyerID int64) (int, error) {
	var n int
	err := r.db.view(ctx, func(st *state) error {
		n = len(st.buyerOrders(buyerID))
		return nil
	})
	return n, err
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	return r.db.view(ctx, func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return repository.ErrNotFound
		}
		o.Status = status
		o.UpdatedAt = now()
		st.orders[id] = o
		return nil
	})
}

func (r *orderRepository) HasPurchased(ctx context.Context, buyerID, productID int64) (bool, error) {
	var ok bool
	err := r.db.view(ctx, func(st *state) error {
		for _, item := range st.orderItems {
			if item.ProductID == nil || *item.ProductID != productID {
				continue
			}
			o := st.orders[item.OrderID]
			if o.BuyerID == buyerID && o.Status != models.OrderCancelled {
				ok = true
				return nil
			}
		}
		return nil
	})
	return ok, err
}

// vendorOwns reports whether the order line still points at one of vendorID's products.
func (st *state) vendorOwns(item models.OrderItem, vendorID int64) bool {
	if item.ProductID == nil {
		return false
	}
	p, ok := st.product(*item.ProductID)
	return ok && p.VendorID == vendorID
}

func (r *orderRepository) VendorHasItems(ctx context.Context, orderID, vendorID int64) (bool, error) {
	var ok bool
	err := r.db.view(ctx, func(st *state) error {
		for _, item := range st.orderItems {
			if item.OrderID == orderID && st.vendorOwns(item, vendorID) {
				ok = true
				return nil
			}
		}
		return nil
	})
	return ok, err
}

func (r *orderRepository) VendorSales(ctx context.Context, vendorID int64) (models.VendorSales, error) {
	sales := models.VendorSales{Revenue: decimal.Zero}
	err := r.db.view(ctx, func(st *state) error {
		for _, item := range st.orderItems {
			if st.orders[item.OrderID].Status == models.OrderCancelled {
				continue
			}
			if st.vendorOwns(item, vendorID) {
				sales.OrderLines++
				sales.Revenue = sales.Revenue.Add(item.TotalPrice())
			}
		}
		return nil
	})
	return sales, err
}
