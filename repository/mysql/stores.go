package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"marketplace-service/models"
	"marketplace-service/repository"
)

type storeRepository struct {
	db *sql.DB
}

func NewStoreRepository(db *sql.DB) repository.StoreRepository {
	return &storeRepository{db: db}
}

const storeColumns = "id, vendor_id, name, description, address, phone_number, email, is_active, created_at, updated_at"

func scanStore(row interface{ Scan(...any) error }) (models.Store, error) {
	var s models.Store
	err := row.Scan(&s.ID, &s.VendorID, &s.Name, &s.Description, &s.Address,
		&s.PhoneNumber, &s.Email, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *storeRepository) Create(ctx context.Context, s *models.Store) error {
	s.CreatedAt = now()
	s.UpdatedAt = s.CreatedAt
	res, err := conn(ctx, r.db).ExecContext(ctx,
		"INSERT INTO stores (vendor_id, name, description, address, phone_number, email, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		s.VendorID, s.Name, s.Description, s.Address, s.PhoneNumber, s.Email, s.IsActive, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert store: %w", translate(err))
	}
	s.ID, err = res.LastInsertId()
	return err
}

func (r *storeRepository) GetByID(ctx context.Context, id int64) (*models.Store, error) {
	s, err := scanStore(conn(ctx, r.db).QueryRowContext(ctx, "SELECT "+storeColumns+" FROM stores WHERE id = ?", id))
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *storeRepository) ListByVendor(ctx context.Context, vendorID int64) ([]models.Store, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT "+storeColumns+" FROM stores WHERE vendor_id = ? ORDER BY created_at DESC, id DESC", vendorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stores: %w", err)
	}
	defer rows.Close()

	stores := []models.Store{}
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

func (r *storeRepository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var taken bool
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM stores WHERE email = ? AND id <> ?)", email, excludeID,
	).Scan(&taken)
	return taken, err
}

func (r *storeRepository) Update(ctx context.Context, s *models.Store) error {
	s.UpdatedAt = now()
	return mustAffect(conn(ctx, r.db).ExecContext(ctx,
		"UPDATE stores SET name = ?, description = ?, address = ?, phone_number = ?, email = ?, is_active = ?, updated_at = ? WHERE id = ?",
		s.Name, s.Description, s.Address, s.PhoneNumber, s.Email, s.IsActive, s.UpdatedAt, s.ID,
	))
}

func (r *storeRepository) Delete(ctx context.Context, id int64) error {
	return mustAffect(conn(ctx, r.db).ExecContext(ctx, "DELETE FROM stores WHERE id = ?", id))
}

type categoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) repository.CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) List(ctx context.Context) ([]models.Category, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, "SELECT id, name, description, created_at FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	var c models.Category
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT id, name, description, created_at FROM categories WHERE id = ?", id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}
