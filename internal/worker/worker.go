package worker

import (
	"context"

	"jewelry-backoffice/internal/broker"
	"jewelry-backoffice/internal/models"
	"jewelry-backoffice/internal/service"
	"jewelry-backoffice/internal/util"

	"go.uber.org/zap"
)

// Consumer is the part of broker.Consumer the worker drives
type Consumer interface {
	StartConsuming(ctx context.Context, handler broker.MessageHandler) error
	Close() error
}

// AlertTracker keeps the set of products currently below the threshold
type AlertTracker interface {
	MarkLowStock(ctx context.Context, sku string) (bool, error)
	ClearLowStock(ctx context.Context, sku string) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}

// StockAlertWorker flags products whose stock drops below the low-stock
// threshold and clears them once they are replenished
type StockAlertWorker struct {
	consumer     Consumer
	tracker      AlertTracker
	eventHandler *broker.EventHandler
	threshold    int
	logger       *zap.Logger
}

// NewStockAlertWorker creates a new stock alert worker
func NewStockAlertWorker(consumer Consumer, tracker AlertTracker, threshold int) *StockAlertWorker {
	w := &StockAlertWorker{
		consumer:     consumer,
		tracker:      tracker,
		eventHandler: broker.NewEventHandler(),
		threshold:    threshold,
		logger:       util.GetLogger(),
	}
	w.eventHandler.OnStockMoved(w.HandleStockMoved)
	return w
}

// HandleStockMoved updates the alert set for the moved product
func (w *StockAlertWorker) HandleStockMoved(ctx context.Context, event *models.StockMovedEvent) error {
	var (
		changed bool
		err     error
	)

	if event.StockAfter < w.threshold {
		changed, err = w.tracker.MarkLowStock(ctx, event.SKU)
		if err != nil {
			return err
		}
		if changed {
			util.LowStockAlertsTotal.Inc()
			w.logger.Warn("Product below low stock threshold",
				zap.String("sku", event.SKU),
				zap.Int64("product_id", event.ProductID),
				zap.Int("stock", event.StockAfter),
				zap.Int("threshold", w.threshold))
		}
	} else {
		changed, err = w.tracker.ClearLowStock(ctx, event.SKU)
		if err != nil {
			return err
		}
		if changed {
			w.logger.Info("Low stock alert cleared",
				zap.String("sku", event.SKU),
				zap.Int("stock", event.StockAfter))
		}
	}

	if changed {
		if err := w.tracker.Delete(ctx, service.DashboardCacheKey); err != nil {
			w.logger.Warn("Failed to invalidate dashboard cache", zap.Error(err))
		}
	}
	return nil
}

// Start starts the worker
func (w *StockAlertWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting stock alert worker", zap.Int("threshold", w.threshold))
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *StockAlertWorker) Stop() error {
	w.logger.Info("Stopping stock alert worker")
	return w.consumer.Close()
}
