package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"marketplace-service/models"
	"marketplace-service/repository"
)

type storeRepository struct {
	db *DB
}

func (r *storeRepository) Create(ctx context.Context, s *models.Store) error {
	return r.db.view(ctx, func(st *state) error {
		if st.emailTaken(s.Email, 0) {
			return fmt.Errorf("%w: store email %s", repository.ErrDuplicate, s.Email)
		}
		s.ID = st.next("stores")
		s.CreatedAt = now()
		s.UpdatedAt = s.CreatedAt
		st.stores[s.ID] = *s
		return nil
	})
}

func (r *storeRepository) GetByID(ctx context.Context, id int64) (*models.Store, error) {
	var found *models.Store
	err := r.db.view(ctx, func(st *state) error {
		s, ok := st.stores[id]
		if !ok {
			return repository.ErrNotFound
		}
		found = &s
		return nil
	})
	return found, err
}

func (r *storeRepository) ListByVendor(ctx context.Context, vendorID int64) ([]models.Store, error) {
	stores := []models.Store{}
	err := r.db.view(ctx, func(st *state) error {
		for _, s := range st.stores {
			if s.VendorID == vendorID {
				stores = append(stores, s)
			}
		}
		return nil
	})
	slices.SortFunc(stores, func(a, b models.Store) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return stores, err
}

func (st *state) emailTaken(email string, excludeID int64) bool {
	for _, s := range st.stores {
		if s.ID != excludeID && strings.EqualFold(s.Email, email) {
			return true
		}
	}
	return false
}

func (r *storeRepository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var taken bool
	err := r.db.view(ctx, func(st *state) error {
		taken = st.emailTaken(email, excludeID)
		return nil
	})
	return taken, err
}

func (r *storeRepository) Update(ctx context.Context, s *models.Store) error {
	return r.db.view(ctx, func(st *state) error {
		current, ok := st.stores[s.ID]
		if !ok {
			return repository.ErrNotFound
		}
		if st.emailTaken(s.Email, s.ID) {
			return fmt.Errorf("%w: store email %s", repository.ErrDuplicate, s.Email)
		}
		current.Name = s.Name
		current.Description = s.Description
		current.Address = s.Address
		current.PhoneNumber = s.PhoneNumber
		current.Email = s.Email
		current.IsActive = s.IsActive
		current.UpdatedAt = now()
		s.UpdatedAt = current.UpdatedAt
		st.stores[s.ID] = current
		return nil
	})
}

func (r *storeRepository) Delete(ctx context.Context, id int64) error {
	return r.db.view(ctx, func(st *state) error {
		if _, ok := st.stores[id]; !ok {
			return repository.ErrNotFound
		}
		for pid, p := range st.products {
			if p.StoreID == id {
				st.deleteProduct(pid)
			}
		}
		delete(st.stores, id)
		return nil
	})
}

type categoryRepository struct {
	db *DB
}

func (r *categoryRepository) List(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	err := r.db.view(ctx, func(st *state) error {
		for _, c := range st.categories {
			categories = append(categories, c)
		}
		return nil
	})
	slices.SortFunc(categories, func(a, b models.Category) int { return cmp.Compare(a.Name, b.Name) })
	return categories, err
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	var found *models.Category
	err := r.db.view(ctx, func(st *state) error {
		c, ok := st.categories[id]
		if !ok {
			return repository.ErrNotFound
		}
		found = &c
		return nil
	})
	return found, err
}

type productRepository struct {
	db *DB
}

// product returns the stored row with its store and category joined in.
func (st *state) product(id int64) (models.Product, bool) {
	p, ok := st.products[id]
	if !ok {
		return p, false
	}
	s := st.stores[p.StoreID]
	p.StoreName = s.Name
	p.VendorID = s.VendorID
	p.CategoryName = ""
	if p.CategoryID != nil {
		if c, ok := st.categories[*p.CategoryID]; ok {
			p.CategoryName = c.Name
		} else {
			p.CategoryID = nil
		}
	}
	return p, true
}

func (st *state) deleteProduct(id int64) {
	for cid, item := range st.cartItems {
		if item.ProductID == id {
			delete(st.cartItems, cid)
		}
	}
	for rid, rv := range st.reviews {
		if rv.ProductID == id {
			delete(st.reviews, rid)
		}
	}
	for oid, item := range st.orderItems {
		if item.ProductID != nil && *item.ProductID == id {
			item.ProductID = nil
			st.orderItems[oid] = item
		}
	}
	delete(st.products, id)
}

func (st *state) selectProducts(match func(models.Product) bool) []models.Product {
	products := []models.Product{}
	for id := range st.products {
		p, _ := st.product(id)
		if match(p) {
			products = append(products, p)
		}
	}
	return products
}

func matchesFilter(p models.Product, f models.ProductFilter) bool {
	if !p.IsActive {
		return false
	}
	if f.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *f.CategoryID) {
		return false
	}
	text := strings.ToLower(strings.TrimSpace(f.Text))
	if text == "" {
		return true
	}
	for _, field := range []string{p.Name, p.Description, p.StoreName} {
		if strings.Contains(strings.ToLower(field), text) {
			return true
		}
	}
	return false
}

func newestFirst(a, b models.Product) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

func productOrder(sort models.ProductSort) func(a, b models.Product) int {
	switch sort {
	case models.SortNameAsc:
		return func(a, b models.Product) int {
			return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
		}
	case models.SortNameDesc:
		return func(a, b models.Product) int {
			return cmp.Or(cmp.Compare(b.Name, a.Name), cmp.Compare(b.ID, a.ID))
		}
	case models.SortPriceAsc:
		return func(a, b models.Product) int {
			return cmp.Or(a.Price.Cmp(b.Price), cmp.Compare(a.ID, b.ID))
		}
	case models.SortPriceDesc:
		return func(a, b models.Product) int {
			return cmp.Or(b.Price.Cmp(a.Price), cmp.Compare(b.ID, a.ID))
		}
	default:
		return newestFirst
	}
}

func (r *productRepository) Create(ctx context.Context, p *models.Product) error {
	return r.db.view(ctx, func(st *state) error {
		if _, ok := st.stores[p.StoreID]; !ok {
			return fmt.Errorf("store %d: %w", p.StoreID, repository.ErrNotFound)
		}
		p.ID = st.next("products")
		p.CreatedAt = now()
		p.UpdatedAt = p.CreatedAt
		st.products[p.ID] = *p
		return nil
	})
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	var found *models.Product
	err := r.db.view(ctx, func(st *state) error {
		p, ok := st.product(id)
		if !ok {
			return repository.ErrNotFound
		}
		found = &p
		return nil
	})
	return found, err
}

func (r *productRepository) Count(ctx context.Context, f models.ProductFilter) (int, error) {
	var n int
	err := r.db.view(ctx, func(st *state) error {
		n = len(st.selectProducts(func(p models.Product) bool { return matchesFilter(p, f) }))
		return nil
	})
	return n, err
}

func (r *productRepository) List(ctx context.Context, f models.ProductFilter, limit, offset int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.view(ctx, func(st *state) error {
		products = st.selectProducts(func(p models.Product) bool { return matchesFilter(p, f) })
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(products, productOrder(f.Sort))
	return window(products, limit, offset), nil
}

func window[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := min(offset+limit, len(items))
	return items[offset:end]
}

func (r *productRepository) ListByStore(ctx context.Context, storeID int64) ([]models.Product, error) {
	var products []models.Product
	err := r.db.view(ctx, func(st *state) error {
		products = st.selectProducts(func(p models.Product) bool { return p.StoreID == storeID })
		return nil
	})
	slices.SortFunc(products, newestFirst)
	return products, err
}

func (r *productRepository) ListByVendor(ctx context.Context, vendorID int64) ([]models.Product, error) {
	var products []models.Product
	err := r.db.view(ctx, func(st *state) error {
		products = st.selectProducts(func(p models.Product) bool { return p.VendorID == vendorID })
		return nil
	})
	slices.SortFunc(products, newestFirst)
	return products, err
}

func (r *productRepository) Update(ctx context.Context, p *models.Product) error {
	return r.db.view(ctx, func(st *state) error {
		current, ok := st.products[p.ID]
		if !ok {
			return repository.ErrNotFound
		}
		current.CategoryID = p.CategoryID
		current.Name = p.Name
		current.Description = p.Description
		current.Price = p.Price
		current.QuantityInStock = p.QuantityInStock
		current.ImageURL = p.ImageURL
		current.IsActive = p.IsActive
		current.UpdatedAt = now()
		p.UpdatedAt = current.UpdatedAt
		st.products[p.ID] = current
		return nil
	})
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	return r.db.view(ctx, func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return repository.ErrNotFound
		}
		st.deleteProduct(id)
		return nil
	})
}

func (r *productRepository) DecrementStock(ctx context.Context, id int64, qty int) (bool, error) {
	var ok bool
	err := r.db.view(ctx, func(st *state) error {
		p, found := st.products[id]
		if !found || p.QuantityInStock < qty {
			return nil
		}
		p.QuantityInStock -= qty
		p.UpdatedAt = now()
		st.products[id] = p
		ok = true
		return nil
	})
	return ok, err
}

func (r *productRepository) IncrementStock(ctx context.Context, id int64, qty int) error {
	return r.db.view(ctx, func(st *state) error {
		p, found := st.products[id]
		if !found {
			return repository.ErrNotFound
		}
		p.QuantityInStock += qty
		p.UpdatedAt = now()
		st.products[id] = p
		return nil
	})
}

type reviewRepository struct {
	db *DB
}

func (r *reviewRepository) Create(ctx context.Context, rv *models.Review) error {
	return r.db.view(ctx, func(st *state) error {
		for _, existing := range st.reviews {
			if existing.ProductID == rv.ProductID && existing.BuyerID == rv.BuyerID {
				return fmt.Errorf("%w: review", repository.ErrDuplicate)
			}
		}
		if _, ok := st.products[rv.ProductID]; !ok {
			return fmt.Errorf("product %d: %w", rv.ProductID, repository.ErrNotFound)
		}
		rv.ID = st.next("reviews")
		rv.CreatedAt = now()
		rv.UpdatedAt = rv.CreatedAt
		st.reviews[rv.ID] = *rv
		return nil
	})
}

func (st *state) review(rv models.Review) models.Review {
	rv.BuyerUsername = st.users[rv.BuyerID].Username
	return rv
}

func (r *reviewRepository) GetByProductAndBuyer(ctx context.Context, productID, buyerID int64) (*models.Review, error) {
	var found *models.Review
	err := r.db.view(ctx, func(st *state) error {
		for _, rv := range st.reviews {
			if rv.ProductID == productID && rv.BuyerID == buyerID {
				joined := st.review(rv)
				found = &joined
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return found, err
}

func (r *reviewRepository) ListByProduct(ctx context.Context, productID int64) ([]models.Review, error) {
	reviews := []models.Review{}
	err := r.db.view(ctx, func(st *state) error {
		for _, rv := range st.reviews {
			if rv.ProductID == productID {
				reviews = append(reviews, st.review(rv))
			}
		}
		return nil
	})
	slices.SortFunc(reviews, func(a, b models.Review) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
	})
	return reviews, err
}
