package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"marketplace-service/models"
	"marketplace-service/repository"
	"marketplace-service/repository/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.OrderEvent
	err    error
}

func (p *recordingPublisher) PublishOrderEvent(_ context.Context, event models.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

type sentMail struct {
	To, Subject, Body string
}

type recordingMailer struct {
	sent []sentMail
}

func (m *recordingMailer) Send(_ context.Context, to, subject, body string) error {
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

type fixture struct {
	t      *testing.T
	ctx    context.Context
	repos  repository.Repositories
	events *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	return &fixture{
		t:      t,
		ctx:    context.Background(),
		repos:  memory.New().Repositories(),
		events: &recordingPublisher{},
	}
}

func (f *fixture) user(name string, role models.Role) models.Actor {
	f.t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com", Role: role, PasswordHash: "x"}
	require.NoError(f.t, f.repos.Users.Create(f.ctx, u))
	return models.Actor{UserID: u.ID, Role: u.Role}
}

func (f *fixture) store(vendor models.Actor, name string) *models.Store {
	f.t.Helper()
	s := &models.Store{VendorID: vendor.UserID, Name: name, Email: name + "@shops.example.com", IsActive: true}
	require.NoError(f.t, f.repos.Stores.Create(f.ctx, s))
	return s
}

func (f *fixture) product(store *models.Store, name, price string, stock int) *models.Product {
	f.t.Helper()
	p := &models.Product{
		StoreID:         store.ID,
		Name:            name,
		Price:           decimal.RequireFromString(price),
		QuantityInStock: stock,
		IsActive:        true,
	}
	require.NoError(f.t, f.repos.Products.Create(f.ctx, p))
	return p
}

// putInCart writes a cart line directly, bypassing the stock clamp.
func (f *fixture) putInCart(session string, product *models.Product, quantity int) {
	f.t.Helper()
	cart, err := f.repos.Carts.GetOrCreate(f.ctx, session)
	require.NoError(f.t, err)
	require.NoError(f.t, f.repos.Carts.AddItem(f.ctx, &models.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: quantity}))
}

func (f *fixture) stock(id int64) int {
	f.t.Helper()
	p, err := f.repos.Products.GetByID(f.ctx, id)
	require.NoError(f.t, err)
	return p.QuantityInStock
}

func (f *fixture) checkout() *CheckoutService {
	return NewCheckoutService(f.repos, f.events)
}

func (f *fixture) orderCount(buyer models.Actor) int {
	f.t.Helper()
	n, err := f.repos.Orders.CountByBuyer(f.ctx, buyer.UserID)
	require.NoError(f.t, err)
	return n
}

// failingProducts makes DecrementStock refuse one product to force a late rollback.
type failingProducts struct {
	repository.ProductRepository
	failID int64
}

func (p failingProducts) DecrementStock(ctx context.Context, id int64, qty int) (bool, error) {
	if id == p.failID {
		return false, nil
	}
	return p.ProductRepository.DecrementStock(ctx, id, qty)
}

var errBroker = errors.New("broker down")
