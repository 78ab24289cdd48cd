// Package repository defines the persistence contracts shared by the MySQL and
// in-memory stores.
package repository

import (
	"context"
	"errors"

	"marketplace-service/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Transactor runs fn inside one transaction. Repositories called with the
// context passed to fn take part in it; nested calls reuse the outer one.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, u *models.User) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

type ResetTokenRepository interface {
	Create(ctx context.Context, t *models.PasswordResetToken) error
	// GetByToken locks the row when called inside a transaction.
	GetByToken(ctx context.Context, token string) (*models.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id int64) error
}

type StoreRepository interface {
	Create(ctx context.Context, s *models.Store) error
	GetByID(ctx context.Context, id int64) (*models.Store, error)
	ListByVendor(ctx context.Context, vendorID int64) ([]models.Store, error)
	// EmailTaken ignores the store with excludeID so an update can keep its own email.
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	Update(ctx context.Context, s *models.Store) error
	Delete(ctx context.Context, id int64) error
}

type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id int64) (*models.Category, error)
}

type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	Count(ctx context.Context, f models.ProductFilter) (int, error)
	List(ctx context.Context, f models.ProductFilter, limit, offset int) ([]models.Product, error)
	ListByStore(ctx context.Context, storeID int64) ([]models.Product, error)
	ListByVendor(ctx context.Context, vendorID int64) ([]models.Product, error)
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id int64) error
	// DecrementStock subtracts qty only while stock >= qty and reports whether it did.
	DecrementStock(ctx context.Context, id int64, qty int) (bool, error)
	// IncrementStock returns qty units to stock. A missing product is ErrNotFound.
	IncrementStock(ctx context.Context, id int64, qty int) error
}

type ReviewRepository interface {
	Create(ctx context.Context, r *models.Review) error
	GetByProductAndBuyer(ctx context.Context, productID, buyerID int64) (*models.Review, error)
	ListByProduct(ctx context.Context, productID int64) ([]models.Review, error)
}

type CartRepository interface {
	GetOrCreate(ctx context.Context, sessionKey string) (*models.Cart, error)
	GetBySessionKey(ctx context.Context, sessionKey string) (*models.Cart, error)
	// Items returns the lines in insertion order joined with current product
	// state, locking the product rows when called inside a transaction.
	Items(ctx context.Context, cartID int64) ([]models.CartItem, error)
	GetItem(ctx context.Context, cartID, itemID int64) (*models.CartItem, error)
	FindItemByProduct(ctx context.Context, cartID, productID int64) (*models.CartItem, error)
	AddItem(ctx context.Context, item *models.CartItem) error
	SetItemQuantity(ctx context.Context, itemID int64, quantity int) error
	DeleteItem(ctx context.Context, itemID int64) error
	Delete(ctx context.Context, cartID int64) error
}

type OrderRepository interface {
	// Create inserts the order and its items, filling in generated ids.
	Create(ctx context.Context, o *models.Order) error
	GetByOrderID(ctx context.Context, orderID string) (*models.Order, error)
	ListByBuyer(ctx context.Context, buyerID int64, limit, offset int) ([]models.Order, error)
	CountByBuyer(ctx context.Context, buyerID int64) (int, error)
	UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) error
	HasPurchased(ctx context.Context, buyerID, productID int64) (bool, error)
	VendorHasItems(ctx context.Context, orderID, vendorID int64) (bool, error)
	// VendorSales totals the vendor's order lines, ignoring cancelled orders.
	VendorSales(ctx context.Context, vendorID int64) (models.VendorSales, error)
}

// Repositories bundles one backend's implementations for wiring.
type Repositories struct {
	Tx          Transactor
	Users       UserRepository
	ResetTokens ResetTokenRepository
	Stores      StoreRepository
	Categories  CategoryRepository
	Products    ProductRepository
	Reviews     ReviewRepository
	Carts       CartRepository
	Orders      OrderRepository
}
