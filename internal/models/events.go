package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeOrderCreated   = "ORDER_CREATED"
	EventTypeOrderConfirmed = "ORDER_CONFIRMED"
	EventTypeOrderCancelled = "ORDER_CANCELLED"
	EventTypeStockMoved     = "STOCK_MOVED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published when a pending order is opened
type OrderCreatedEvent struct {
	BaseEvent
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	CustomerID  int64  `json:"customer_id"`
	ActorID     int64  `json:"actor_id"`
}

// OrderConfirmedEvent published when stock has been committed for an order
type OrderConfirmedEvent struct {
	BaseEvent
	OrderID     int64           `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	CustomerID  int64           `json:"customer_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []OrderItemData `json:"items"`
	ActorID     int64           `json:"actor_id"`
}

// OrderCancelledEvent published when an order is cancelled
type OrderCancelledEvent struct {
	BaseEvent
	OrderID        int64       `json:"order_id"`
	OrderNumber    string      `json:"order_number"`
	PreviousStatus OrderStatus `json:"previous_status"`
	StockRestored  bool        `json:"stock_restored"`
	ActorID        int64       `json:"actor_id"`
}

// StockMovedEvent published for every stock ledger entry
type StockMovedEvent struct {
	BaseEvent
	MovementID int64          `json:"movement_id"`
	ProductID  int64          `json:"product_id"`
	SKU        string         `json:"sku"`
	Quantity   int            `json:"quantity"`
	StockAfter int            `json:"stock_after"`
	Reason     MovementReason `json:"reason"`
	OrderID    *int64         `json:"order_id,omitempty"`
	ActorID    int64          `json:"actor_id"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}
