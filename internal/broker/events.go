package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"jewelry-backoffice/internal/models"
	"jewelry-backoffice/internal/service"
	"jewelry-backoffice/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var (
	_ service.EventPublisher = (*EventPublisher)(nil)
	_ service.EventPublisher = NopPublisher{}
)

// Writer is the part of Producer used by EventPublisher
type Writer interface {
	PublishEvent(ctx context.Context, key string, event interface{}) error
}

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer Writer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer Writer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

func orderKey(orderID int64) string {
	return fmt.Sprintf("order-%d", orderID)
}

// PublishOrderCreated publishes OrderCreated event
func (ep *EventPublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishOrderConfirmed publishes OrderConfirmed event
func (ep *EventPublisher) PublishOrderConfirmed(ctx context.Context, event *models.OrderConfirmedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishOrderCancelled publishes OrderCancelled event
func (ep *EventPublisher) PublishOrderCancelled(ctx context.Context, event *models.OrderCancelledEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishStockMoved publishes StockMoved event keyed by product
func (ep *EventPublisher) PublishStockMoved(ctx context.Context, event *models.StockMovedEvent) error {
	key := fmt.Sprintf("product-%d", event.ProductID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// NopPublisher drops every event. Used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishOrderCreated(context.Context, *models.OrderCreatedEvent) error {
	return nil
}

func (NopPublisher) PublishOrderConfirmed(context.Context, *models.OrderConfirmedEvent) error {
	return nil
}

func (NopPublisher) PublishOrderCancelled(context.Context, *models.OrderCancelledEvent) error {
	return nil
}

func (NopPublisher) PublishStockMoved(context.Context, *models.StockMovedEvent) error {
	return nil
}

// EventHandler handles incoming events
type EventHandler struct {
	onStockMoved func(context.Context, *models.StockMovedEvent) error
	logger       *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.GetLogger()}
}

// OnStockMoved registers a handler for StockMoved events
func (eh *EventHandler) OnStockMoved(handler func(context.Context, *models.StockMovedEvent) error) {
	eh.onStockMoved = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	eh.logger.Debug("Handling event",
		zap.String("type", baseEvent.EventType),
		zap.String("event_id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypeStockMoved:
		if eh.onStockMoved != nil {
			var event models.StockMovedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal StockMoved event: %w", err)
			}
			return eh.onStockMoved(ctx, &event)
		}

	case models.EventTypeOrderCreated, models.EventTypeOrderConfirmed, models.EventTypeOrderCancelled:
		// published for downstream consumers only

	default:
		eh.logger.Warn("Unhandled event type", zap.String("type", baseEvent.EventType))
	}

	return nil
}
