package services

import (
	"context"
	"errors"
	"strings"

	"marketplace-service/models"
	"marketplace-service/repository"
)

// CartService manages the session-scoped cart. Every call re-reads stock and
// prices from storage.
type CartService struct {
	tx       repository.Transactor
	carts    repository.CartRepository
	products repository.ProductRepository
}

func NewCartService(tx repository.Transactor, carts repository.CartRepository, products repository.ProductRepository) *CartService {
	return &CartService{tx: tx, carts: carts, products: products}
}

// GetCart returns the session's cart, or an empty one when none exists yet.
func (s *CartService) GetCart(ctx context.Context, sessionKey string) (*models.Cart, error) {
	empty := &models.Cart{SessionKey: sessionKey, Items: []models.CartItem{}}
	if strings.TrimSpace(sessionKey) == "" {
		return empty, nil
	}
	cart, err := s.carts.GetBySessionKey(ctx, sessionKey)
	if errors.Is(err, repository.ErrNotFound) {
		return empty, nil
	}
	if err != nil {
		return nil, err
	}
	if cart.Items, err = s.carts.Items(ctx, cart.ID); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) Count(ctx context.Context, sessionKey string) (int, error) {
	cart, err := s.GetCart(ctx, sessionKey)
	if err != nil {
		return 0, err
	}
	return cart.TotalItems(), nil
}

// AddItem puts quantity units of the product in the cart, merging with an
// existing line and never exceeding current stock.
func (s *CartService) AddItem(ctx context.Context, sessionKey string, productID int64, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, models.Invalid("quantity", "must be at least 1")
	}
	if strings.TrimSpace(sessionKey) == "" {
		return nil, models.Invalid("session", "cart session is required")
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		product, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return notFound(err, "product")
		}
		if !product.IsActive {
			return models.NotFound("product")
		}
		if !product.InStock() || product.QuantityInStock < quantity {
			return &models.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   quantity,
				Available:   product.QuantityInStock,
			}
		}

		cart, err := s.carts.GetOrCreate(ctx, sessionKey)
		if err != nil {
			return err
		}

		item, err := s.carts.FindItemByProduct(ctx, cart.ID, productID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return s.carts.AddItem(ctx, &models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: quantity})
		case err != nil:
			return err
		}
		merged := min(item.Quantity+quantity, product.QuantityInStock)
		if merged == item.Quantity {
			return nil
		}
		return s.carts.SetItemQuantity(ctx, item.ID, merged)
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, sessionKey)
}

// UpdateItem sets a line's quantity, clamped to stock. A quantity of zero or
// less removes the line.
func (s *CartService) UpdateItem(ctx context.Context, sessionKey string, itemID int64, quantity int) (*models.Cart, error) {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		item, err := s.item(ctx, sessionKey, itemID)
		if err != nil {
			return err
		}
		quantity = min(quantity, item.Product.QuantityInStock)
		switch {
		case quantity <= 0:
			return s.carts.DeleteItem(ctx, item.ID)
		case quantity == item.Quantity:
			return nil
		}
		return s.carts.SetItemQuantity(ctx, item.ID, quantity)
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, sessionKey)
}

func (s *CartService) RemoveItem(ctx context.Context, sessionKey string, itemID int64) (*models.CartItem, error) {
	item, err := s.item(ctx, sessionKey, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.carts.DeleteItem(ctx, item.ID); err != nil {
		return nil, notFound(err, "cart item")
	}
	return item, nil
}

// item loads a line only if it belongs to the session's cart.
func (s *CartService) item(ctx context.Context, sessionKey string, itemID int64) (*models.CartItem, error) {
	cart, err := s.carts.GetBySessionKey(ctx, sessionKey)
	if err != nil {
		return nil, notFound(err, "cart item")
	}
	item, err := s.carts.GetItem(ctx, cart.ID, itemID)
	if err != nil {
		return nil, notFound(err, "cart item")
	}
	return item, nil
}
