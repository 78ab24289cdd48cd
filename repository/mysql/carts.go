package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"marketplace-service/models"
	"marketplace-service/repository"
)

type cartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) repository.CartRepository {
	return &cartRepository{db: db}
}

const cartItemSelect = "SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.added_at, " + productColumns +
	" FROM cart_items ci JOIN products p ON p.id = ci.product_id JOIN stores s ON s.id = p.store_id LEFT JOIN categories c ON c.id = p.category_id"

func scanCartItem(row interface{ Scan(...any) error }) (models.CartItem, error) {
	var (
		item models.CartItem
		ps   productScanner
	)
	err := row.Scan(ps.dest(&item.Product, &item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.AddedAt)...)
	if err != nil {
		return item, err
	}
	ps.finish(&item.Product)
	return item, nil
}

func (r *cartRepository) GetOrCreate(ctx context.Context, sessionKey string) (*models.Cart, error) {
	ts := now()
	if _, err := conn(ctx, r.db).ExecContext(ctx,
		"INSERT IGNORE INTO carts (session_key, created_at, updated_at) VALUES (?, ?, ?)",
		sessionKey, ts, ts,
	); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return r.GetBySessionKey(ctx, sessionKey)
}

func (r *cartRepository) GetBySessionKey(ctx context.Context, sessionKey string) (*models.Cart, error) {
	var c models.Cart
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT id, session_key, created_at, updated_at FROM carts WHERE session_key = ?", sessionKey,
	).Scan(&c.ID, &c.SessionKey, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *cartRepository) Items(ctx context.Context, cartID int64) ([]models.CartItem, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		cartItemSelect+" WHERE ci.cart_id = ? ORDER BY ci.id"+lockClause(ctx), cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	items := []models.CartItem{}
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *cartRepository) GetItem(ctx context.Context, cartID, itemID int64) (*models.CartItem, error) {
	item, err := scanCartItem(conn(ctx, r.db).QueryRowContext(ctx,
		cartItemSelect+" WHERE ci.cart_id = ? AND ci.id = ?", cartID, itemID))
	if err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r *cartRepository) FindItemByProduct(ctx context.Context, cartID, productID int64) (*models.CartItem, error) {
	item, err := scanCartItem(conn(ctx, r.db).QueryRowContext(ctx,
		cartItemSelect+" WHERE ci.cart_id = ? AND ci.product_id = ?", cartID, productID))
	if err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r *cartRepository) AddItem(ctx context.Context, item *models.CartItem) error {
	item.AddedAt = now()
	res, err := conn(ctx, r.db).ExecContext(ctx,
		"INSERT INTO cart_items (cart_id, product_id, quantity, added_at) VALUES (?, ?, ?, ?)",
		item.CartID, item.ProductID, item.Quantity, item.AddedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert cart item: %w", translate(err))
	}
	item.ID, err = res.LastInsertId()
	return err
}

func (r *cartRepository) SetItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	return mustAffect(conn(ctx, r.db).ExecContext(ctx,
		"UPDATE cart_items SET quantity = ? WHERE id = ?", quantity, itemID))
}

func (r *cartRepository) DeleteItem(ctx context.Context, itemID int64) error {
	return mustAffect(conn(ctx, r.db).ExecContext(ctx, "DELETE FROM cart_items WHERE id = ?", itemID))
}

func (r *cartRepository) Delete(ctx context.Context, cartID int64) error {
	return mustAffect(conn(ctx, r.db).ExecContext(ctx, "DELETE FROM carts WHERE id = ?", cartID))
}
