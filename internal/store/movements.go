package store

import (
	"context"
	"strings"

	"jewelry-backoffice/internal/models"
)

const movementColumns = `id, product_id, quantity, reason, order_id, created_by, created_at`

// ListMovements retrieves stock movements, newest first
func (s *Store) ListMovements(ctx context.Context, filter models.MovementFilter) ([]models.StockMovement, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.ProductID != 0 {
		args = append(args, filter.ProductID)
		where = append(where, "product_id = ?")
	}
	if filter.OrderID != 0 {
		args = append(args, filter.OrderID)
		where = append(where, "order_id = ?")
	}

	query := "SELECT " + movementColumns + " FROM stock_movements"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query = s.db.Rebind(query + " ORDER BY id DESC")

	movements := []models.StockMovement{}
	err := s.db.SelectContext(ctx, &movements, query, args...)
	return movements, err
}

func (t *pgTx) InsertMovement(ctx context.Context, movement *models.StockMovement) error {
	query := `
		INSERT INTO stock_movements (product_id, quantity, reason, order_id, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	row := t.tx.QueryRowxContext(ctx, query,
		movement.ProductID, movement.Quantity, movement.Reason, movement.OrderID, movement.CreatedBy)
	return mapError(row.Scan(&movement.ID, &movement.Timestamp))
}
