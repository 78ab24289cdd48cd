package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"marketplace-service/models"
	"marketplace-service/repository"
)

const (
	recentStores   = 4
	recentProducts = 5
)

var minPrice = decimal.RequireFromString("0.01")

type StoreInput struct {
	Name        string
	Description string
	Address     string
	PhoneNumber string
	Email       string
	IsActive    *bool
}

type ProductInput struct {
	CategoryID      *int64
	Name            string
	Description     string
	Price           decimal.Decimal
	QuantityInStock int
	ImageURL        string
	IsActive        *bool
}

// VendorService lets vendors manage the stores and products they own.
type VendorService struct {
	stores     repository.StoreRepository
	products   repository.ProductRepository
	categories repository.CategoryRepository
	orders     repository.OrderRepository
}

func NewVendorService(repos repository.Repositories) *VendorService {
	return &VendorService{
		stores:     repos.Stores,
		products:   repos.Products,
		categories: repos.Categories,
		orders:     repos.Orders,
	}
}

func (s *VendorService) Dashboard(ctx context.Context, actor models.Actor) (*models.VendorDashboard, error) {
	if err := requireVendor(actor); err != nil {
		return nil, err
	}
	stores, err := s.stores.ListByVendor(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	products, err := s.products.ListByVendor(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	sales, err := s.orders.VendorSales(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return &models.VendorDashboard{
		TotalStores:    len(stores),
		TotalProducts:  len(products),
		TotalOrders:    sales.OrderLines,
		TotalRevenue:   sales.Revenue,
		RecentStores:   stores[:min(recentStores, len(stores))],
		RecentProducts: products[:min(recentProducts, len(products))],
	}, nil
}

func (s *VendorService) ListStores(ctx context.Context, actor models.Actor) ([]models.Store, error) {
	if err := requireVendor(actor); err != nil {
		return nil, err
	}
	return s.stores.ListByVendor(ctx, actor.UserID)
}

func (s *VendorService) checkStore(ctx context.Context, in *StoreInput, storeID int64) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	if err := checkVar("name", in.Name, "required,max=100", "is required and at most 100 characters"); err != nil {
		return err
	}
	if err := checkVar("email", in.Email, "required,email,max=254", "enter a valid email address"); err != nil {
		return err
	}
	if err := checkVar("phone_number", in.PhoneNumber, "max=15", "must be at most 15 characters"); err != nil {
		return err
	}
	taken, err := s.stores.EmailTaken(ctx, in.Email, storeID)
	if err != nil {
		return err
	}
	if taken {
		return models.Invalid("email", "a store with this email already exists")
	}
	return nil
}

func storeWriteError(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return models.Invalid("email", "a store with this email already exists")
	}
	return notFound(err, "store")
}

func (s *VendorService) CreateStore(ctx context.Context, actor models.Actor, in StoreInput) (*models.Store, error) {
	if err := requireVendor(actor); err != nil {
		return nil, err
	}
	if err := s.checkStore(ctx, &in, 0); err != nil {
		return nil, err
	}
	store := &models.Store{
		VendorID:    actor.UserID,
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		Address:     strings.TrimSpace(in.Address),
		PhoneNumber: in.PhoneNumber,
		Email:       in.Email,
		IsActive:    in.IsActive == nil || *in.IsActive,
	}
	if err := s.stores.Create(ctx, store); err != nil {
		return nil, storeWriteError(err)
	}
	return store, nil
}

// ownedStore loads a store and checks the actor owns it.
func (s *VendorService) ownedStore(ctx context.Context, actor models.Actor, storeID int64) (*models.Store, error) {
	if err := requireVendor(actor); err != nil {
		return nil, err
	}
	store, err := s.stores.GetByID(ctx, storeID)
	if err != nil {
		return nil, notFound(err, "store")
	}
	if store.VendorID != actor.UserID {
		return nil, models.Forbidden("store belongs to another vendor")
	}
	return store, nil
}

func (s *VendorService) UpdateStore(ctx context.Context, actor models.Actor, storeID int64, in StoreInput) (*models.Store, error) {
	store, err := s.ownedStore(ctx, actor, storeID)
	if err != nil {
		return nil, err
	}
	if err := s.checkStore(ctx, &in, store.ID); err != nil {
		return nil, err
	}
	store.Name = in.Name
	store.Description = strings.TrimSpace(in.Description)
	store.Address = strings.TrimSpace(in.Address)
	store.PhoneNumber = in.PhoneNumber
	store.Email = in.Email
	if in.IsActive != nil {
		store.IsActive = *in.IsActive
	}
	if err := s.stores.Update(ctx, store); err != nil {
		return nil, storeWriteError(err)
	}
	return store, nil
}

// DeleteStore removes the store together with its products.
func (s *VendorService) DeleteStore(ctx context.Context, actor models.Actor, storeID int64) (*models.Store, error) {
	store, err := s.ownedStore(ctx, actor, storeID)
	if err != nil {
		return nil, err
	}
	if err := s.stores.Delete(ctx, store.ID); err != nil {
		return nil, notFound(err, "store")
	}
	return store, nil
}

func (s *VendorService) StoreProducts(ctx context.Context, actor models.Actor, storeID int64) (*models.Store, []models.Product, error) {
	store, err := s.ownedStore(ctx, actor, storeID)
	if err != nil {
		return nil, nil, err
	}
	products, err := s.products.ListByStore(ctx, store.ID)
	if err != nil {
		return nil, nil, err
	}
	return store, products, nil
}

func (s *VendorService) checkProduct(ctx context.Context, in *ProductInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if err := checkVar("name", in.Name, "required,max=200", "is required and at most 200 characters"); err != nil {
		return err
	}
	if in.Price.LessThan(minPrice) {
		return models.Invalid("price", "must be at least 0.01")
	}
	if in.QuantityInStock < 0 {
		return models.Invalid("quantity_in_stock", "cannot be negative")
	}
	if err := checkVar("image_url", in.ImageURL, "omitempty,url,max=500", "enter a valid URL"); err != nil {
		return err
	}
	if in.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *in.CategoryID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return models.Invalid("category_id", "unknown category")
			}
			return err
		}
	}
	return nil
}

func (s *VendorService) CreateProduct(ctx context.Context, actor models.Actor, storeID int64, in ProductInput) (*models.Product, error) {
	store, err := s.ownedStore(ctx, actor, storeID)
	if err != nil {
		return nil, err
	}
	if err := s.checkProduct(ctx, &in); err != nil {
		return nil, err
	}
	product := &models.Product{
		StoreID:         store.ID,
		CategoryID:      in.CategoryID,
		Name:            in.Name,
		Description:     strings.TrimSpace(in.Description),
		Price:           in.Price.Round(2),
		QuantityInStock: in.QuantityInStock,
		ImageURL:        in.ImageURL,
		IsActive:        in.IsActive == nil || *in.IsActive,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return s.product(ctx, product.ID)
}

func (s *VendorService) product(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}
	return product, nil
}

func (s *VendorService) ownedProduct(ctx context.Context, actor models.Actor, productID int64) (*models.Product, error) {
	if err := requireVendor(actor); err != nil {
		return nil, err
	}
	product, err := s.product(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.VendorID != actor.UserID {
		return nil, models.Forbidden("product belongs to another vendor")
	}
	return product, nil
}

func (s *VendorService) UpdateProduct(ctx context.Context, actor models.Actor, productID int64, in ProductInput) (*models.Product, error) {
	product, err := s.ownedProduct(ctx, actor, productID)
	if err != nil {
		return nil, err
	}
	if err := s.checkProduct(ctx, &in); err != nil {
		return nil, err
	}
	product.CategoryID = in.CategoryID
	product.Name = in.Name
	product.Description = strings.TrimSpace(in.Description)
	product.Price = in.Price.Round(2)
	product.QuantityInStock = in.QuantityInStock
	product.ImageURL = in.ImageURL
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	if err := s.products.Update(ctx, product); err != nil {
		return nil, notFound(err, "product")
	}
	return s.product(ctx, product.ID)
}

// DeleteProduct removes the product; past order lines keep their snapshot.
func (s *VendorService) DeleteProduct(ctx context.Context, actor models.Actor, productID int64) (*models.Product, error) {
	product, err := s.ownedProduct(ctx, actor, productID)
	if err != nil {
		return nil, err
	}
	if err := s.products.Delete(ctx, product.ID); err != nil {
		return nil, notFound(err, "product")
	}
	return product, nil
}
