package store

import (
	"context"
	"strings"

	"jewelry-backoffice/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const productColumns = `id, sku, name, category, cost_price, selling_price, stock_quantity, created_at, updated_at`

func getProduct(ctx context.Context, q sqlx.QueryerContext, id int64) (*models.Product, error) {
	var product models.Product
	err := sqlx.GetContext(ctx, q, &product,
		"SELECT "+productColumns+" FROM products WHERE id = $1", id)
	if err != nil {
		return nil, notFound(err, "product", id)
	}
	return &product, nil
}

// GetProduct retrieves a product by ID
func (s *Store) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return getProduct(ctx, s.db, id)
}

// GetProductBySKU retrieves a product by SKU
func (s *Store) GetProductBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product,
		"SELECT "+productColumns+" FROM products WHERE sku = $1", sku)
	if err != nil {
		return nil, notFound(err, "product", sku)
	}
	return &product, nil
}

// ListProducts retrieves products ordered by name
func (s *Store) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, "category = ?")
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
		where = append(where, "(name ILIKE ? OR sku ILIKE ?)")
	}

	query := "SELECT " + productColumns + " FROM products"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query = s.db.Rebind(query + " ORDER BY name, id")

	products := []models.Product{}
	err := s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// CountLowStock counts products with stock below threshold
func (s *Store) CountLowStock(ctx context.Context, threshold int) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM products WHERE stock_quantity < $1", threshold)
	return count, err
}

func (t *pgTx) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return getProduct(ctx, t.tx, id)
}

// LockProducts locks the product rows in id order (FOR UPDATE). Missing ids
// are absent from the result.
func (t *pgTx) LockProducts(ctx context.Context, ids []int64) (map[int64]*models.Product, error) {
	products := make(map[int64]*models.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}

	var rows []models.Product
	err := t.tx.SelectContext(ctx, &rows,
		"SELECT "+productColumns+" FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE",
		pq.Array(ids))
	if err != nil {
		return nil, err
	}

	for i := range rows {
		products[rows[i].ID] = &rows[i]
	}
	return products, nil
}

func (t *pgTx) InsertProduct(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (sku, name, category, cost_price, selling_price, stock_quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	row := t.tx.QueryRowxContext(ctx, query,
		product.SKU, product.Name, product.Category,
		product.CostPrice, product.SellingPrice, product.StockQuantity)
	return mapError(row.Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt))
}

func (t *pgTx) UpdateProduct(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET sku = $1, name = $2, category = $3, cost_price = $4, selling_price = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at`

	err := t.tx.QueryRowxContext(ctx, query,
		product.SKU, product.Name, product.Category,
		product.CostPrice, product.SellingPrice, product.ID).Scan(&product.UpdatedAt)
	return mapError(notFound(err, "product", product.ID))
}

func (t *pgTx) UpdateProductStock(ctx context.Context, id int64, quantity int) error {
	res, err := t.tx.ExecContext(ctx,
		"UPDATE products SET stock_quantity = $1, updated_at = NOW() WHERE id = $2",
		quantity, id)
	if err != nil {
		return mapError(err)
	}
	return expectOne(res, "product", id)
}

func (t *pgTx) DeleteProduct(ctx context.Context, id int64) error {
	res, err := t.tx.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return mapError(err)
	}
	return expectOne(res, "product", id)
}
