package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"marketplace-service/models"
	"marketplace-service/repository"
)

type cartRepository struct {
	db *DB
}

func (st *state) cartBySession(sessionKey string) (models.Cart, bool) {
	for _, c := range st.carts {
		if c.SessionKey == sessionKey {
			return c, true
		}
	}
	return models.Cart{}, false
}

func (st *state) cartItem(item models.CartItem) models.CartItem {
	item.Product, _ = st.product(item.ProductID)
	return item
}

func (r *cartRepository) GetOrCreate(ctx context.Context, sessionKey string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.view(ctx, func(st *state) error {
		if c, ok := st.cartBySession(sessionKey); ok {
			cart = c
			return nil
		}
		ts := now()
		cart = models.Cart{ID: st.next("carts"), SessionKey: sessionKey, CreatedAt: ts, UpdatedAt: ts}
		st.carts[cart.ID] = cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) GetBySessionKey(ctx context.Context, sessionKey string) (*models.Cart, error) {
	var found *models.Cart
	err := r.db.view(ctx, func(st *state) error {
		c, ok := st.cartBySession(sessionKey)
		if !ok {
			return repository.ErrNotFound
		}
		found = &c
		return nil
	})
	return found, err
}

func (r *cartRepository) Items(ctx context.Context, cartID int64) ([]models.CartItem, error) {
	items := []models.CartItem{}
	err := r.db.view(ctx, func(st *state) error {
		for _, item := range st.cartItems {
			if item.CartID == cartID {
				items = append(items, st.cartItem(item))
			}
		}
		return nil
	})
	slices.SortFunc(items, func(a, b models.CartItem) int { return cmp.Compare(a.ID, b.ID) })
	return items, err
}

func (r *cartRepository) find(ctx context.Context, match func(models.CartItem) bool) (*models.CartItem, error) {
	var found *models.CartItem
	err := r.db.view(ctx, func(st *state) error {
		for _, item := range st.cartItems {
			if match(item) {
				joined := st.cartItem(item)
				found = &joined
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return found, err
}

func (r *cartRepository) GetItem(ctx context.Context, cartID, itemID int64) (*models.CartItem, error) {
	return r.find(ctx, func(i models.CartItem) bool { return i.CartID == cartID && i.ID == itemID })
}

func (r *cartRepository) FindItemByProduct(ctx context.Context, cartID, productID int64) (*models.CartItem, error) {
	return r.find(ctx, func(i models.CartItem) bool { return i.CartID == cartID && i.ProductID == productID })
}

func (r *cartRepository) AddItem(ctx context.Context, item *models.CartItem) error {
	return r.db.view(ctx, func(st *state) error {
		if _, ok := st.carts[item.CartID]; !ok {
			return fmt.Errorf("cart %d: %w", item.CartID, repository.ErrNotFound)
		}
		if _, ok := st.products[item.ProductID]; !ok {
			return fmt.Errorf("product %d: %w", item.ProductID, repository.ErrNotFound)
		}
		for _, existing := range st.cartItems {
			if existing.CartID == item.CartID && existing.ProductID == item.ProductID {
				return fmt.Errorf("%w: cart item", repository.ErrDuplicate)
			}
		}
		item.ID = st.next("cart_items")
		item.AddedAt = now()
		stored := *item
		stored.Product = models.Product{}
		st.cartItems[item.ID] = stored
		return nil
	})
}

func (r *cartRepository) SetItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	return r.db.view(ctx, func(st *state) error {
		item, ok := st.cartItems[itemID]
		if !ok {
			return repository.ErrNotFound
		}
		item.Quantity = quantity
		st.cartItems[itemID] = item
		return nil
	})
}

func (r *cartRepository) DeleteItem(ctx context.Context, itemID int64) error {
	return r.db.view(ctx, func(st *state) error {
		if _, ok := st.cartItems[itemID]; !ok {
			return repository.ErrNotFound
		}
		delete(st.cartItems, itemID)
		return nil
	})
}

func (r *cartRepository) Delete(ctx context.Context, cartID int64) error {
	return r.db.view(ctx, func(st *state) error {
		if _, ok := st.carts[cartID]; !ok {
			return repository.ErrNotFound
		}
		for id, item := range st.cartItems {
			if item.CartID == cartID {
				delete(st.cartItems, id)
			}
		}
		delete(st.carts, cartID)
		return nil
	})
}
