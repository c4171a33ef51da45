package service

import (
	"context"
	"math"
	"time"

	"jewelry-backoffice/internal/models"
	"jewelry-backoffice/internal/util"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// StockLedger appends stock movements and applies manual adjustments
type StockLedger struct {
	repo   Repository
	events EventPublisher
	logger *zap.Logger
}

// NewStockLedger creates a new stock ledger
func NewStockLedger(repo Repository, events EventPublisher) *StockLedger {
	return &StockLedger{
		repo:   repo,
		events: events,
		logger: util.GetLogger(),
	}
}

// maxQuantity bounds quantities and stock levels to the INTEGER columns
const maxQuantity = math.MaxInt32

// AdjustStockRequest is a manual stock correction
type AdjustStockRequest struct {
	Delta int `json:"delta"`
}

// record applies delta to the locked product and appends the matching movement.
// The caller owns the transaction and must have validated the result.
func (l *StockLedger) record(
	ctx context.Context,
	tx Tx,
	product *models.Product,
	delta int,
	reason models.MovementReason,
	orderID *int64,
	actor models.Actor,
) (*movementRecord, error) {
	product.StockQuantity += delta
	if err := tx.UpdateProductStock(ctx, product.ID, product.StockQuantity); err != nil {
		return nil, err
	}

	movement := &models.StockMovement{
		ProductID: product.ID,
		Quantity:  delta,
		Reason:    reason,
		OrderID:   orderID,
		CreatedBy: actor.Ref(),
	}
	if err := tx.InsertMovement(ctx, movement); err != nil {
		return nil, err
	}

	return &movementRecord{movement: *movement, sku: product.SKU, stockAfter: product.StockQuantity}, nil
}

// movementRecord carries what the post-commit event needs
type movementRecord struct {
	movement   models.StockMovement
	sku        string
	stockAfter int
}

// publish emits StockMoved events for committed movements
func (l *StockLedger) publish(ctx context.Context, actor models.Actor, records []*movementRecord) {
	for _, rec := range records {
		util.StockMovementsTotal.WithLabelValues(string(rec.movement.Reason)).Inc()

		event := &models.StockMovedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeStockMoved,
				Timestamp: time.Now(),
			},
			MovementID: rec.movement.ID,
			ProductID:  rec.movement.ProductID,
			SKU:        rec.sku,
			Quantity:   rec.movement.Quantity,
			StockAfter: rec.stockAfter,
			Reason:     rec.movement.Reason,
			OrderID:    rec.movement.OrderID,
			ActorID:    actor.ID,
		}
		if err := l.events.PublishStockMoved(ctx, event); err != nil {
			l.logger.Error("Failed to publish StockMoved event",
				zap.Int64("movement_id", rec.movement.ID),
				zap.Error(err))
		}
	}
}

// Adjust corrects a product's stock by delta and records an adjustment movement
func (l *StockLedger) Adjust(ctx context.Context, actor models.Actor, productID int64, req AdjustStockRequest) (*models.StockMovement, error) {
	ctx, span := util.StartSpan(ctx, "StockLedger.Adjust", attribute.Int64("product_id", productID))
	defer span.End()

	if req.Delta == 0 {
		return nil, models.NewValidationError("delta", "must not be zero")
	}
	if req.Delta > maxQuantity || req.Delta < -maxQuantity {
		return nil, models.NewValidationError("delta", "is out of range")
	}

	var rec *movementRecord
	err := l.repo.InTx(ctx, func(tx Tx) error {
		products, err := tx.LockProducts(ctx, []int64{productID})
		if err != nil {
			return err
		}
		product, ok := products[productID]
		if !ok {
			return models.NewNotFound("product", productID)
		}

		if product.StockQuantity+req.Delta < 0 {
			return &models.InsufficientStockError{
				ProductID: product.ID,
				SKU:       product.SKU,
				Name:      product.Name,
				Available: product.StockQuantity,
				Required:  -req.Delta,
			}
		}

		if product.StockQuantity+req.Delta > maxQuantity {
			return models.NewValidationError("delta", "would exceed the maximum stock level")
		}

		rec, err = l.record(ctx, tx, product, req.Delta, models.MovementAdjustment, nil, actor)
		return err
	})
	if err != nil {
		util.RecordError(span, err)
		return nil, err
	}

	l.logger.Info("Stock adjusted",
		zap.Int64("product_id", productID),
		zap.Int("delta", req.Delta),
		zap.Int("stock_after", rec.stockAfter),
		zap.Int64("actor_id", actor.ID))

	l.publish(ctx, actor, []*movementRecord{rec})
	return &rec.movement, nil
}

// Movements lists ledger entries, newest first
func (l *StockLedger) Movements(ctx context.Context, filter models.MovementFilter) ([]models.StockMovement, error) {
	ctx, span := util.StartSpan(ctx, "StockLedger.Movements")
	defer span.End()

	return l.repo.ListMovements(ctx, filter)
}
