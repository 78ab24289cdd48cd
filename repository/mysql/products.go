package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"marketplace-service/models"
	"marketplace-service/repository"
)

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

const (
	productColumns = "p.id, p.store_id, s.name, s.vendor_id, p.category_id, COALESCE(c.name, ''), p.name, p.description, p.price, p.quantity_in_stock, p.image_url, p.is_active, p.created_at, p.updated_at"
	productJoins   = " FROM products p JOIN stores s ON s.id = p.store_id LEFT JOIN categories c ON c.id = p.category_id"
)

// productScanner scans productColumns, optionally preceded by extra columns.
type productScanner struct {
	category sql.NullInt64
}

func (ps *productScanner) dest(p *models.Product, leading ...any) []any {
	return append(leading,
		&p.ID, &p.StoreID, &p.StoreName, &p.VendorID, &ps.category, &p.CategoryName,
		&p.Name, &p.Description, &p.Price, &p.QuantityInStock, &p.ImageURL, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt,
	)
}

func (ps *productScanner) finish(p *models.Product) {
	p.CategoryID = nil
	if ps.category.Valid {
		id := ps.category.Int64
		p.CategoryID = &id
	}
}

func scanProducts(rows *sql.Rows) ([]models.Product, error) {
	defer rows.Close()
	products := []models.Product{}
	for rows.Next() {
		var (
			p  models.Product
			ps productScanner
		)
		if err := rows.Scan(ps.dest(&p)...); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		ps.finish(&p)
		products = append(products, p)
	}
	return products, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildProductFilter returns the WHERE clause and arguments for catalog queries.
func buildProductFilter(f models.ProductFilter) (string, []any) {
	clauses := []string{"p.is_active = TRUE"}
	var args []any
	if text := strings.TrimSpace(f.Text); text != "" {
		like := "%" + likeEscaper.Replace(text) + "%"
		clauses = append(clauses, "(p.name LIKE ? OR p.description LIKE ? OR s.name LIKE ?)")
		args = append(args, like, like, like)
	}
	if f.CategoryID != nil {
		clauses = append(clauses, "p.category_id = ?")
		args = append(args, *f.CategoryID)
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func orderByClause(sort models.ProductSort) string {
	switch sort {
	case models.SortNameAsc:
		return " ORDER BY p.name ASC, p.id ASC"
	case models.SortNameDesc:
		return " ORDER BY p.name DESC, p.id DESC"
	case models.SortPriceAsc:
		return " ORDER BY p.price ASC, p.id ASC"
	case models.SortPriceDesc:
		return " ORDER BY p.price DESC, p.id DESC"
	default:
		return " ORDER BY p.created_at DESC, p.id DESC"
	}
}

func (r *productRepository) Create(ctx context.Context, p *models.Product) error {
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt
	res, err := conn(ctx, r.db).ExecContext(ctx,
		"INSERT INTO products (store_id, category_id, name, description, price, quantity_in_stock, image_url, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		p.StoreID, p.CategoryID, p.Name, p.Description, p.Price, p.QuantityInStock, p.ImageURL, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", translate(err))
	}
	p.ID, err = res.LastInsertId()
	return err
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	var (
		p  models.Product
		ps productScanner
	)
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+productColumns+productJoins+" WHERE p.id = ?", id,
	).Scan(ps.dest(&p)...)
	if err != nil {
		return nil, translate(err)
	}
	ps.finish(&p)
	return &p, nil
}

func (r *productRepository) Count(ctx context.Context, f models.ProductFilter) (int, error) {
	where, args := buildProductFilter(f)
	var n int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM products p JOIN stores s ON s.id = p.store_id"+where, args...,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

func (r *productRepository) List(ctx context.Context, f models.ProductFilter, limit, offset int) ([]models.Product, error) {
	where, args := buildProductFilter(f)
	args = append(args, limit, offset)
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT "+productColumns+productJoins+where+orderByClause(f.Sort)+" LIMIT ? OFFSET ?", args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	return scanProducts(rows)
}

func (r *productRepository) ListByStore(ctx context.Context, storeID int64) ([]models.Product, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT "+productColumns+productJoins+" WHERE p.store_id = ? ORDER BY p.created_at DESC, p.id DESC", storeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query store products: %w", err)
	}
	return scanProducts(rows)
}

func (r *productRepository) ListByVendor(ctx context.Context, vendorID int64) ([]models.Product, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT "+productColumns+productJoins+" WHERE s.vendor_id = ? ORDER BY p.created_at DESC, p.id DESC", vendorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query vendor products: %w", err)
	}
	return scanProducts(rows)
}

func (r *productRepository) Update(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = now()
	return mustAffect(conn(ctx, r.db).ExecContext(ctx,
		"UPDATE products SET category_id = ?, name = ?, description = ?, price = ?, quantity_in_stock = ?, image_url = ?, is_active = ?, updated_at = ? WHERE id = ?",
		p.CategoryID, p.Name, p.Description, p.Price, p.QuantityInStock, p.ImageURL, p.IsActive, p.UpdatedAt, p.ID,
	))
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	return mustAffect(conn(ctx, r.db).ExecContext(ctx, "DELETE FROM products WHERE id = ?", id))
}

func (r *productRepository) DecrementStock(ctx context.Context, id int64, qty int) (bool, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE products SET quantity_in_stock = quantity_in_stock - ?, updated_at = ? WHERE id = ? AND quantity_in_stock >= ?",
		qty, now(), id, qty,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update product stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *productRepository) IncrementStock(ctx context.Context, id int64, qty int) error {
	return mustAffect(conn(ctx, r.db).ExecContext(ctx,
		"UPDATE products SET quantity_in_stock = quantity_in_stock + ?, updated_at = ? WHERE id = ?",
		qty, now(), id,
	))
}
