package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"jewelry-backoffice/internal/models"

	"github.com/jmoiron/sqlx"
)

const orderColumns = `id, order_number, customer_id, order_date, created_by, total_amount, status,
	COALESCE(idempotency_key, '') AS idempotency_key, created_at, updated_at`

const itemColumns = `id, order_id, product_id, quantity, unit_price, total_price`

func getOrder(ctx context.Context, q sqlx.QueryerContext, id int64, lock bool) (*models.SalesOrder, error) {
	query := "SELECT " + orderColumns + " FROM sales_orders WHERE id = $1"
	if lock {
		query += " FOR UPDATE"
	}

	var order models.SalesOrder
	if err := sqlx.GetContext(ctx, q, &order, query, id); err != nil {
		return nil, notFound(err, "order", id)
	}
	return &order, nil
}

func orderItems(ctx context.Context, q sqlx.QueryerContext, orderID int64) ([]models.SalesOrderItem, error) {
	items := []models.SalesOrderItem{}
	err := sqlx.SelectContext(ctx, q, &items,
		"SELECT "+itemColumns+" FROM sales_order_items WHERE order_id = $1 ORDER BY id", orderID)
	return items, err
}

// GetOrder retrieves an order by ID without items
func (s *Store) GetOrder(ctx context.Context, id int64) (*models.SalesOrder, error) {
	return getOrder(ctx, s.db, id, false)
}

// GetOrderByIdempotencyKey retrieves an order by idempotency key
func (s *Store) GetOrderByIdempotencyKey(ctx context.Context, key string) (*models.SalesOrder, error) {
	if key == "" {
		return nil, nil
	}

	var order models.SalesOrder
	err := s.db.GetContext(ctx, &order,
		"SELECT "+orderColumns+" FROM sales_orders WHERE idempotency_key = $1", key)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders retrieves orders, newest first
func (s *Store) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.SalesOrder, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, "status = ?")
	}
	if filter.CustomerID != 0 {
		args = append(args, filter.CustomerID)
		where = append(where, "customer_id = ?")
	}

	query := "SELECT " + orderColumns + " FROM sales_orders"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query = s.db.Rebind(query + " ORDER BY order_date DESC, id DESC")

	orders := []models.SalesOrder{}
	err := s.db.SelectContext(ctx, &orders, query, args...)
	return orders, err
}

// GetOrderItems retrieves all items for an order
func (s *Store) GetOrderItems(ctx context.Context, orderID int64) ([]models.SalesOrderItem, error) {
	return orderItems(ctx, s.db, orderID)
}

// CountOrdersOn counts orders dated on the calendar day of day
func (s *Store) CountOrdersOn(ctx context.Context, day time.Time) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM sales_orders WHERE order_date = $1::date", day.Format("2006-01-02"))
	return count, err
}

func (t *pgTx) LockOrder(ctx context.Context, id int64) (*models.SalesOrder, error) {
	return getOrder(ctx, t.tx, id, true)
}

// LockOrderNumbering serializes number generation per prefix until commit
func (t *pgTx) LockOrderNumbering(ctx context.Context, prefix string) error {
	_, err := t.tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", prefix)
	return err
}

func (t *pgTx) OrderNumbersWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	numbers := []string{}
	err := t.tx.SelectContext(ctx, &numbers,
		"SELECT order_number FROM sales_orders WHERE order_number LIKE $1 || '%'", prefix)
	return numbers, err
}

func (t *pgTx) InsertOrder(ctx context.Context, order *models.SalesOrder) error {
	query := `
		INSERT INTO sales_orders (order_number, customer_id, order_date, created_by, total_amount, status, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
		RETURNING id, created_at, updated_at`

	row := t.tx.QueryRowxContext(ctx, query,
		order.OrderNumber, order.CustomerID, order.OrderDate, order.CreatedBy,
		order.TotalAmount, order.Status, order.IdempotencyKey)
	return mapError(row.Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt))
}

func (t *pgTx) UpdateOrder(ctx context.Context, order *models.SalesOrder) error {
	query := `
		UPDATE sales_orders
		SET customer_id = $1, total_amount = $2, status = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at`

	err := t.tx.QueryRowxContext(ctx, query,
		order.CustomerID, order.TotalAmount, order.Status, order.ID).Scan(&order.UpdatedAt)
	return mapError(notFound(err, "order", order.ID))
}

func (t *pgTx) DeleteOrder(ctx context.Context, id int64) error {
	res, err := t.tx.ExecContext(ctx, "DELETE FROM sales_orders WHERE id = $1", id)
	if err != nil {
		return mapError(err)
	}
	return expectOne(res, "order", id)
}

func (t *pgTx) OrderItems(ctx context.Context, orderID int64) ([]models.SalesOrderItem, error) {
	return orderItems(ctx, t.tx, orderID)
}

func (t *pgTx) InsertOrderItem(ctx context.Context, item *models.SalesOrderItem) error {
	query := `
		INSERT INTO sales_order_items (order_id, product_id, quantity, unit_price, total_price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	item.ComputeTotal()
	row := t.tx.QueryRowxContext(ctx, query,
		item.OrderID, item.ProductID, item.Quantity, item.UnitPrice, item.TotalPrice)
	return mapError(row.Scan(&item.ID))
}

func (t *pgTx) DeleteOrderItem(ctx context.Context, orderID, itemID int64) error {
	res, err := t.tx.ExecContext(ctx,
		"DELETE FROM sales_order_items WHERE id = $1 AND order_id = $2", itemID, orderID)
	if err != nil {
		return mapError(err)
	}
	return expectOne(res, "order item", itemID)
}
