package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"marketplace-service/models"
	"marketplace-service/repository"
)

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = "id, order_id, buyer_id, total_amount, status, shipping_address, created_at, updated_at"

func scanOrder(row interface{ Scan(...any) error }) (models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.OrderID, &o.BuyerID, &o.TotalAmount, &o.Status,
		&o.ShippingAddress, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (r *orderRepository) Create(ctx context.Context, o *models.Order) error {
	db := conn(ctx, r.db)
	o.CreatedAt = now()
	o.UpdatedAt = o.CreatedAt

	res, err := db.ExecContext(ctx,
		"INSERT INTO orders (order_id, buyer_id, total_amount, status, shipping_address, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		o.OrderID, o.BuyerID, o.TotalAmount, o.Status, o.ShippingAddress, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", translate(err))
	}
	if o.ID, err = res.LastInsertId(); err != nil {
		return err
	}

	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID
		res, err := db.ExecContext(ctx,
			"INSERT INTO order_items (order_id, product_id, product_name, quantity, price_at_purchase) VALUES (?, ?, ?, ?, ?)",
			item.OrderID, item.ProductID, item.ProductName, item.Quantity, item.PriceAtPurchase,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
		if item.ID, err = res.LastInsertId(); err != nil {
			return err
		}
	}
	return nil
}

func (r *orderRepository) items(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT id, order_id, product_id, product_name, quantity, price_at_purchase FROM order_items WHERE order_id = ? ORDER BY id",
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var (
			item      models.OrderItem
			productID sql.NullInt64
		)
		if err := rows.Scan(&item.ID, &item.OrderID, &productID, &item.ProductName, &item.Quantity, &item.PriceAtPurchase); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		if productID.Valid {
			id := productID.Int64
			item.ProductID = &id
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *orderRepository) GetByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	o, err := scanOrder(conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE order_id = ?"+lockClause(ctx), orderID))
	if err != nil {
		return nil, translate(err)
	}
	if o.Items, err = r.items(ctx, o.ID); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) ListByBuyer(ctx context.Context, buyerID int64, limit, offset int) ([]models.Order, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE buyer_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		buyerID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		if orders[i].Items, err = r.items(ctx, orders[i].ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *orderRepository) CountByBuyer(ctx context.Context, buyerID int64) (int, error) {
	var n int
	err := conn(ctx, r.db).QueryRowContext(ctx, "SELECT COUNT(*) FROM orders WHERE buyer_id = ?", buyerID).Scan(&n)
	return n, err
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	return mustAffect(conn(ctx, r.db).ExecContext(ctx,
		"UPDATE orders SET status = ?, updated_at = ? WHERE id = ?", status, now(), id))
}

func (r *orderRepository) HasPurchased(ctx context.Context, buyerID, productID int64) (bool, error) {
	var ok bool
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM order_items oi JOIN orders o ON o.id = oi.order_id
			WHERE o.buyer_id = ? AND oi.product_id = ? AND o.status <> 'cancelled'
		)`, buyerID, productID,
	).Scan(&ok)
	return ok, err
}

func (r *orderRepository) VendorHasItems(ctx context.Context, orderID, vendorID int64) (bool, error) {
	var ok bool
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM order_items oi
			JOIN products p ON p.id = oi.product_id
			JOIN stores s ON s.id = p.store_id
			WHERE oi.order_id = ? AND s.vendor_id = ?
		)`, orderID, vendorID,
	).Scan(&ok)
	return ok, err
}

func (r *orderRepository) VendorSales(ctx context.Context, vendorID int64) (models.VendorSales, error) {
	var sales models.VendorSales
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(oi.price_at_purchase * oi.quantity), 0)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		JOIN stores s ON s.id = p.store_id
		WHERE s.vendor_id = ? AND o.status <> 'cancelled'`, vendorID,
	).Scan(&sales.OrderLines, &sales.Revenue)
	if err != nil {
		return sales, fmt.Errorf("failed to aggregate vendor sales: %w", err)
	}
	return sales, nil
}
