package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"jewelry-backoffice/internal/models"
	"jewelry-backoffice/internal/util"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// OrderService owns the sales order lifecycle and the stock it commits
type OrderService struct {
	repo   Repository
	ledger *StockLedger
	events EventPublisher
	now    func() time.Time
	logger *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(repo Repository, ledger *StockLedger, events EventPublisher) *OrderService {
	return &OrderService{
		repo:   repo,
		ledger: ledger,
		events: events,
		now:    time.Now,
		logger: util.GetLogger(),
	}
}

// WithClock replaces the time source used for order dates and numbering
func (s *OrderService) WithClock(now func() time.Time) *OrderService {
	s.now = now
	return s
}

// CreateOrderRequest represents a request to open an order
type CreateOrderRequest struct {
	CustomerID     int64  `json:"customer_id"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// AddItemRequest represents a line added to a pending order
type AddItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// UpdateOrderRequest changes the customer of an order
type UpdateOrderRequest struct {
	CustomerID int64 `json:"customer_id"`
}

// CreateOrder opens a pending order with a freshly generated order number
func (s *OrderService) CreateOrder(ctx context.Context, actor models.Actor, req *CreateOrderRequest) (*models.SalesOrder, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	if req.CustomerID <= 0 {
		return nil, models.NewValidationError("customer_id", "is required")
	}

	if req.IdempotencyKey != "" {
		existing, err := s.repo.GetOrderByIdempotencyKey(ctx, req.IdempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("failed to check idempotency: %w", err)
		}
		if existing != nil {
			s.logger.Info("Duplicate order request detected",
				zap.String("idempotency_key", req.IdempotencyKey),
				zap.Int64("order_id", existing.ID))
			return s.GetOrder(ctx, existing.ID)
		}
	}

	now := s.now()
	order := &models.SalesOrder{
		CustomerID:     req.CustomerID,
		OrderDate:      time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
		CreatedBy:      actor.Ref(),
		Status:         models.OrderStatusPending,
		IdempotencyKey: req.IdempotencyKey,
	}

	err := s.repo.InTx(ctx, func(tx Tx) error {
		if _, err := tx.GetCustomer(ctx, req.CustomerID); err != nil {
			return err
		}

		prefix := OrderNumberPrefix(now)
		if err := tx.LockOrderNumbering(ctx, prefix); err != nil {
			return fmt.Errorf("failed to lock order numbering: %w", err)
		}
		existing, err := tx.OrderNumbersWithPrefix(ctx, prefix)
		if err != nil {
			return fmt.Errorf("failed to scan order numbers: %w", err)
		}
		order.OrderNumber = NextOrderNumber(prefix, existing)

		return tx.InsertOrder(ctx, order)
	})
	if err != nil {
		if req.IdempotencyKey != "" && errors.Is(err, models.ErrConflict) {
			if existing, lookupErr := s.repo.GetOrderByIdempotencyKey(ctx, req.IdempotencyKey); lookupErr == nil && existing != nil {
				return s.GetOrder(ctx, existing.ID)
			}
		}
		util.RecordError(span, err)
		util.OrderTransitionFailures.WithLabelValues("create", failureReason(err)).Inc()
		return nil, err
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Int64("actor_id", actor.ID))

	event := &models.OrderCreatedEvent{
		BaseEvent:   newBaseEvent(models.EventTypeOrderCreated),
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		CustomerID:  order.CustomerID,
		ActorID:     actor.ID,
	}
	if err := s.events.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}

	order.Items = []models.SalesOrderItem{}
	return order, nil
}

// GetOrder retrieves an order with its items
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*models.SalesOrder, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.GetOrder", attribute.Int64("order_id", orderID))
	defer span.End()

	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.GetOrderItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// ListOrders lists orders, newest first
func (s *OrderService) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.SalesOrder, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListOrders")
	defer span.End()

	if filter.Status != "" && !filter.Status.Valid() {
		return nil, models.NewValidationError("status", fmt.Sprintf("unknown status %q", filter.Status))
	}
	return s.repo.ListOrders(ctx, filter)
}

// UpdateOrderCustomer reassigns the order to another customer
func (s *OrderService) UpdateOrderCustomer(ctx context.Context, actor models.Actor, orderID int64, req *UpdateOrderRequest) (*models.SalesOrder, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateOrderCustomer", attribute.Int64("order_id", orderID))
	defer span.End()

	if req.CustomerID <= 0 {
		return nil, models.NewValidationError("customer_id", "is required")
	}

	var updated *models.SalesOrder
	err := s.repo.InTx(ctx, func(tx Tx) error {
		order, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if _, err := tx.GetCustomer(ctx, req.CustomerID); err != nil {
			return err
		}

		order.CustomerID = req.CustomerID
		if err := tx.UpdateOrder(ctx, order); err != nil {
			return err
		}

		items, err := tx.OrderItems(ctx, orderID)
		if err != nil {
			return err
		}
		order.Items = items
		updated = order
		return nil
	})
	if err != nil {
		util.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Order customer updated",
		zap.Int64("order_id", orderID),
		zap.Int64("customer_id", req.CustomerID),
		zap.Int64("actor_id", actor.ID))
	return updated, nil
}

// DeleteOrder removes a pending or cancelled order together with its items.
// Confirmed orders hold committed stock and must be cancelled first. An order
// that ever moved stock is part of the ledger and fails with a conflict.
func (s *OrderService) DeleteOrder(ctx context.Context, actor models.Actor, orderID int64) error {
	ctx, span := util.StartSpan(ctx, "OrderService.DeleteOrder", attribute.Int64("order_id", orderID))
	defer span.End()

	err := s.repo.InTx(ctx, func(tx Tx) error {
		order, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status == models.OrderStatusConfirmed {
			return stateError(order, "delete")
		}
		return tx.DeleteOrder(ctx, orderID)
	})
	if err != nil {
		util.RecordError(span, err)
		util.OrderTransitionFailures.WithLabelValues("delete", failureReason(err)).Inc()
		return err
	}

	s.logger.Info("Order deleted", zap.Int64("order_id", orderID), zap.Int64("actor_id", actor.ID))
	return nil
}

// AddItem appends a line to a pending order at the product's current selling
// price. The stock check is advisory; stock is only committed on confirm.
func (s *OrderService) AddItem(ctx context.Context, actor models.Actor, orderID int64, req *AddItemRequest) (*models.SalesOrder, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.AddItem",
		attribute.Int64("order_id", orderID),
		attribute.Int64("product_id", req.ProductID))
	defer span.End()

	var updated *models.SalesOrder
	err := s.repo.InTx(ctx, func(tx Tx) error {
		order, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !order.IsPending() {
			return stateError(order, "add items to")
		}
		if req.Quantity <= 0 {
			return models.NewValidationError("quantity", "must be greater than zero")
		}
		if req.Quantity > maxQuantity {
			return models.NewValidationError("quantity", "is too large")
		}
		if req.ProductID <= 0 {
			return models.NewValidationError("product_id", "is required")
		}

		product, err := tx.GetProduct(ctx, req.ProductID)
		if err != nil {
			return err
		}
		if product.StockQuantity < req.Quantity {
			return insufficientStock(product, req.Quantity)
		}

		item := &models.SalesOrderItem{
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  req.Quantity,
			UnitPrice: product.SellingPrice,
		}
		item.ComputeTotal()
		if err := tx.InsertOrderItem(ctx, item); err != nil {
			return err
		}

		updated, err = s.retotal(ctx, tx, order)
		return err
	})
	if err != nil {
		util.RecordError(span, err)
		util.OrderTransitionFailures.WithLabelValues("add_item", failureReason(err)).Inc()
		return nil, err
	}

	s.logger.Info("Order item added",
		zap.Int64("order_id", orderID),
		zap.Int64("product_id", req.ProductID),
		zap.Int("quantity", req.Quantity),
		zap.String("total_amount", updated.TotalAmount.StringFixed(2)),
		zap.Int64("actor_id", actor.ID))
	return updated, nil
}

// RemoveItem deletes a line from a pending order
func (s *OrderService) RemoveItem(ctx context.Context, actor models.Actor, orderID, itemID int64) (*models.SalesOrder, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.RemoveItem",
		attribute.Int64("order_id", orderID),
		attribute.Int64("item_id", itemID))
	defer span.End()

	var updated *models.SalesOrder
	err := s.repo.InTx(ctx, func(tx Tx) error {
		order, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !order.IsPending() {
			return stateError(order, "remove items from")
		}

		if err := tx.DeleteOrderItem(ctx, orderID, itemID); err != nil {
			return err
		}

		updated, err = s.retotal(ctx, tx, order)
		return err
	})
	if err != nil {
		util.RecordError(span, err)
		util.OrderTransitionFailures.WithLabelValues("remove_item", failureReason(err)).Inc()
		return nil, err
	}

	s.logger.Info("Order item removed",
		zap.Int64("order_id", orderID),
		zap.Int64("item_id", itemID),
		zap.Int64("actor_id", actor.ID))
	return updated, nil
}

// retotal re-reads the items and persists the recomputed total
func (s *OrderService) retotal(ctx context.Context, tx Tx, order *models.SalesOrder) (*models.SalesOrder, error) {
	items, err := tx.OrderItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	order.RecomputeTotal(items)
	if err := tx.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}

	order.Items = items
	return order, nil
}

// ConfirmOrder commits stock for every item of a pending order. Stock is
// validated for all items before any product is written, so a shortfall
// leaves stock and status untouched.
func (s *OrderService) ConfirmOrder(ctx context.Context, actor models.Actor, orderID int64) (*models.SalesOrder, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ConfirmOrder", attribute.Int64("order_id", orderID))
	defer span.End()

	start := time.Now()
	defer func() {
		util.OrderConfirmLatency.Observe(time.Since(start).Seconds())
	}()

	var (
		confirmed *models.SalesOrder
		records   []*movementRecord
	)
	err := s.repo.InTx(ctx, func(tx Tx) error {
		records = nil

		order, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !order.IsPending() {
			return stateError(order, "confirm")
		}

		items, err := tx.OrderItems(ctx, orderID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return fmt.Errorf("cannot confirm order %s: %w", order.OrderNumber, models.ErrEmptyOrder)
		}

		products, err := tx.LockProducts(ctx, productIDs(items))
		if err != nil {
			return err
		}

		// Validation pass. Quantities are summed per product so two lines of
		// the same product cannot jointly overdraw it.
		required := make(map[int64]int, len(products))
		for _, item := range items {
			required[item.ProductID] += item.Quantity
		}
		for _, item := range items {
			product, ok := products[item.ProductID]
			if !ok {
				return models.NewNotFound("product", item.ProductID)
			}
			if product.StockQuantity < required[item.ProductID] {
				return insufficientStock(product, required[item.ProductID])
			}
		}

		// Commit pass
		orderRef := order.ID
		for _, item := range items {
			rec, err := s.ledger.record(ctx, tx, products[item.ProductID], -item.Quantity,
				models.MovementOrderConfirmed, &orderRef, actor)
			if err != nil {
				return fmt.Errorf("failed to commit stock for product %d: %w", item.ProductID, err)
			}
			records = append(records, rec)
		}

		order.Status = models.OrderStatusConfirmed
		if err := tx.UpdateOrder(ctx, order); err != nil {
			return err
		}

		order.Items = items
		confirmed = order
		return nil
	})
	if err != nil {
		util.RecordError(span, err)
		util.OrderTransitionFailures.WithLabelValues("confirm", failureReason(err)).Inc()
		s.logger.Warn("Order confirmation rejected",
			zap.Int64("order_id", orderID),
			zap.Int64("actor_id", actor.ID),
			zap.Error(err))
		return nil, err
	}

	util.OrdersConfirmedTotal.Inc()
	s.logger.Info("Order confirmed",
		zap.Int64("order_id", confirmed.ID),
		zap.String("order_number", confirmed.OrderNumber),
		zap.Int("items", len(confirmed.Items)),
		zap.Int64("actor_id", actor.ID))

	event := &models.OrderConfirmedEvent{
		BaseEvent:   newBaseEvent(models.EventTypeOrderConfirmed),
		OrderID:     confirmed.ID,
		OrderNumber: confirmed.OrderNumber,
		CustomerID:  confirmed.CustomerID,
		TotalAmount: confirmed.TotalAmount,
		Items:       itemData(confirmed.Items),
		ActorID:     actor.ID,
	}
	if err := s.events.PublishOrderConfirmed(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderConfirmed event", zap.Error(err))
	}
	s.ledger.publish(ctx, actor, records)

	return confirmed, nil
}

// CancelOrder cancels a pending or confirmed order. Stock committed by a
// previous confirmation is returned to the catalog.
func (s *OrderService) CancelOrder(ctx context.Context, actor models.Actor, orderID int64) (*models.SalesOrder, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CancelOrder", attribute.Int64("order_id", orderID))
	defer span.End()

	var (
		cancelled *models.SalesOrder
		previous  models.OrderStatus
		records   []*movementRecord
	)
	err := s.repo.InTx(ctx, func(tx Tx) error {
		records = nil

		order, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		previous = order.Status
		if order.Status == models.OrderStatusCancelled {
			return fmt.Errorf("order %s: %w", order.OrderNumber, models.ErrAlreadyCancelled)
		}

		items, err := tx.OrderItems(ctx, orderID)
		if err != nil {
			return err
		}

		if previous == models.OrderStatusConfirmed && len(items) > 0 {
			products, err := tx.LockProducts(ctx, productIDs(items))
			if err != nil {
				return err
			}

			orderRef := order.ID
			for _, item := range items {
				product, ok := products[item.ProductID]
				if !ok {
					return models.NewNotFound("product", item.ProductID)
				}
				rec, err := s.ledger.record(ctx, tx, product, item.Quantity,
					models.MovementOrderCancelled, &orderRef, actor)
				if err != nil {
					return fmt.Errorf("failed to restore stock for product %d: %w", item.ProductID, err)
				}
				records = append(records, rec)
			}
		}

		order.Status = models.OrderStatusCancelled
		if err := tx.UpdateOrder(ctx, order); err != nil {
			return err
		}

		order.Items = items
		cancelled = order
		return nil
	})
	if err != nil {
		util.RecordError(span, err)
		util.OrderTransitionFailures.WithLabelValues("cancel", failureReason(err)).Inc()
		return nil, err
	}

	util.OrdersCancelledTotal.WithLabelValues(string(previous)).Inc()
	s.logger.Info("Order cancelled",
		zap.Int64("order_id", cancelled.ID),
		zap.String("order_number", cancelled.OrderNumber),
		zap.String("previous_status", string(previous)),
		zap.Int("movements", len(records)),
		zap.Int64("actor_id", actor.ID))

	event := &models.OrderCancelledEvent{
		BaseEvent:      newBaseEvent(models.EventTypeOrderCancelled),
		OrderID:        cancelled.ID,
		OrderNumber:    cancelled.OrderNumber,
		PreviousStatus: previous,
		StockRestored:  len(records) > 0,
		ActorID:        actor.ID,
	}
	if err := s.events.PublishOrderCancelled(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCancelled event", zap.Error(err))
	}
	s.ledger.publish(ctx, actor, records)

	return cancelled, nil
}

// productIDs returns the distinct product ids of items in ascending order so
// row locks are always taken in the same sequence
func productIDs(items []models.SalesOrderItem) []int64 {
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func itemData(items []models.SalesOrderItem) []models.OrderItemData {
	data := make([]models.OrderItemData, 0, len(items))
	for _, item := range items {
		data = append(data, models.OrderItemData{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return data
}

func stateError(order *models.SalesOrder, operation string) error {
	return &models.StateError{
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		Operation:   operation,
	}
}

func insufficientStock(product *models.Product, required int) error {
	return &models.InsufficientStockError{
		ProductID: product.ID,
		SKU:       product.SKU,
		Name:      product.Name,
		Available: product.StockQuantity,
		Required:  required,
	}
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

// failureReason maps an error to a low-cardinality metric label
func failureReason(err error) string {
	switch {
	case errors.Is(err, models.ErrValidation):
		return "validation"
	case errors.Is(err, models.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, models.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, models.ErrEmptyOrder):
		return "empty_order"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrAlreadyCancelled):
		return "already_cancelled"
	case errors.Is(err, models.ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}
