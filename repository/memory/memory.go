// Package memory is an in-process implementation of the repository contracts,
// used when STORAGE=memory and by the service tests.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"marketplace-service/database"
	"marketplace-service/models"
	"marketplace-service/repository"
)

type state struct {
	seq        map[string]int64
	users      map[int64]models.User
	tokens     map[int64]models.PasswordResetToken
	stores     map[int64]models.Store
	categories map[int64]models.Category
	products   map[int64]models.Product
	reviews    map[int64]models.Review
	carts      map[int64]models.Cart
	cartItems  map[int64]models.CartItem
	orders     map[int64]models.Order
	orderItems map[int64]models.OrderItem
}

func (s *state) clone() *state {
	return &state{
		seq:        maps.Clone(s.seq),
		users:      maps.Clone(s.users),
		tokens:     maps.Clone(s.tokens),
		stores:     maps.Clone(s.stores),
		categories: maps.Clone(s.categories),
		products:   maps.Clone(s.products),
		reviews:    maps.Clone(s.reviews),
		carts:      maps.Clone(s.carts),
		cartItems:  maps.Clone(s.cartItems),
		orders:     maps.Clone(s.orders),
		orderItems: maps.Clone(s.orderItems),
	}
}

func (s *state) next(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

// DB holds all tables behind one mutex. A transaction keeps the mutex for
// its whole callback and restores a snapshot when the callback fails.
type DB struct {
	mu sync.Mutex
	st *state
}

type txKey struct{}

func New() *DB {
	db := &DB{st: &state{
		seq:        map[string]int64{},
		users:      map[int64]models.User{},
		tokens:     map[int64]models.PasswordResetToken{},
		stores:     map[int64]models.Store{},
		categories: map[int64]models.Category{},
		products:   map[int64]models.Product{},
		reviews:    map[int64]models.Review{},
		carts:      map[int64]models.Cart{},
		cartItems:  map[int64]models.CartItem{},
		orders:     map[int64]models.Order{},
		orderItems: map[int64]models.OrderItem{},
	}}
	ts := now()
	for _, c := range database.DefaultCategories {
		id := db.st.next("categories")
		db.st.categories[id] = models.Category{ID: id, Name: c.Name, Description: c.Description, CreatedAt: ts}
	}
	return db
}

// Repositories exposes every table of db through the repository contracts.
func (db *DB) Repositories() repository.Repositories {
	return repository.Repositories{
		Tx:          db,
		Users:       &userRepository{db},
		ResetTokens: &resetTokenRepository{db},
		Stores:      &storeRepository{db},
		Categories:  &categoryRepository{db},
		Products:    &productRepository{db},
		Reviews:     &reviewRepository{db},
		Carts:       &cartRepository{db},
		Orders:      &orderRepository{db},
	}
}

func (db *DB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if db.inTx(ctx) {
		return fn(ctx)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	snapshot := db.st.clone()
	if err := fn(context.WithValue(ctx, txKey{}, db)); err != nil {
		db.st = snapshot
		return err
	}
	return nil
}

func (db *DB) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*DB)
	return ok && owner == db
}

// view runs fn with the tables locked, unless ctx already holds the lock.
func (db *DB) view(ctx context.Context, fn func(st *state) error) error {
	if db.inTx(ctx) {
		return fn(db.st)
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	return fn(db.st)
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
