package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog item
type Product struct {
	ID            int64           `db:"id" json:"id"`
	SKU           string          `db:"sku" json:"sku"`
	Name          string          `db:"name" json:"name"`
	Category      string          `db:"category" json:"category"`
	CostPrice     decimal.Decimal `db:"cost_price" json:"cost_price"`
	SellingPrice  decimal.Decimal `db:"selling_price" json:"selling_price"`
	StockQuantity int             `db:"stock_quantity" json:"stock_quantity"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// Customer represents a store customer. CustomerCode is the business identifier
// printed on receipts (e.g. JC001).
type Customer struct {
	ID             int64           `db:"id" json:"id"`
	CustomerCode   string          `db:"customer_code" json:"customer_id"`
	Name           string          `db:"name" json:"name"`
	Phone          string          `db:"phone" json:"phone"`
	Address        string          `db:"address" json:"address"`
	Email          string          `db:"email" json:"email"`
	OpeningBalance decimal.Decimal `db:"opening_balance" json:"opening_balance"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// OrderStatus is the lifecycle state of a sales order
type OrderStatus string

// Order statuses
const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusCancelled:
		return true
	}
	return false
}

// SalesOrder represents a customer order
type SalesOrder struct {
	ID             int64            `db:"id" json:"id"`
	OrderNumber    string           `db:"order_number" json:"order_number"`
	CustomerID     int64            `db:"customer_id" json:"customer_id"`
	OrderDate      time.Time        `db:"order_date" json:"order_date"`
	CreatedBy      *int64           `db:"created_by" json:"created_by"`
	TotalAmount    decimal.Decimal  `db:"total_amount" json:"total_amount"`
	Status         OrderStatus      `db:"status" json:"status"`
	IdempotencyKey string           `db:"idempotency_key" json:"idempotency_key,omitempty"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
	Items          []SalesOrderItem `db:"-" json:"items"`
}

// IsPending reports whether items may still be edited
func (o *SalesOrder) IsPending() bool {
	return o.Status == OrderStatusPending
}

// RecomputeTotal sets TotalAmount to the sum of item totals
func (o *SalesOrder) RecomputeTotal(items []SalesOrderItem) {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.TotalPrice)
	}
	o.TotalAmount = total
}

// SalesOrderItem represents a line of a sales order. UnitPrice is captured from
// the product when the line is added and never follows later price changes.
type SalesOrderItem struct {
	ID         int64           `db:"id" json:"id"`
	OrderID    int64           `db:"order_id" json:"order_id"`
	ProductID  int64           `db:"product_id" json:"product_id"`
	Quantity   int             `db:"quantity" json:"quantity"`
	UnitPrice  decimal.Decimal `db:"unit_price" json:"unit_price"`
	TotalPrice decimal.Decimal `db:"total_price" json:"total_price"`
}

// ComputeTotal derives TotalPrice from Quantity and UnitPrice
func (i *SalesOrderItem) ComputeTotal() {
	i.TotalPrice = i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// MovementReason explains why stock changed
type MovementReason string

// Movement reasons
const (
	MovementOrderConfirmed MovementReason = "order_confirmed"
	MovementOrderCancelled MovementReason = "order_cancelled"
	MovementAdjustment     MovementReason = "adjustment"
)

// StockMovement is an append-only stock ledger entry. Negative quantities
// decrement stock, positive ones increment it.
type StockMovement struct {
	ID        int64          `db:"id" json:"id"`
	ProductID int64          `db:"product_id" json:"product_id"`
	Quantity  int            `db:"quantity" json:"quantity"`
	Reason    MovementReason `db:"reason" json:"reason"`
	OrderID   *int64         `db:"order_id" json:"order_id,omitempty"`
	CreatedBy *int64         `db:"created_by" json:"created_by"`
	Timestamp time.Time      `db:"created_at" json:"timestamp"`
}

// Role is the access level of an actor
type Role string

// Roles
const (
	RoleAdmin Role = "ADMIN"
	RoleSales Role = "SALES"
)

// Actor is the authenticated identity performing an operation
type Actor struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

// IsAdmin reports whether the actor holds the administrator role
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Ref returns the actor id as a nullable reference
func (a Actor) Ref() *int64 {
	if a.ID == 0 {
		return nil
	}
	id := a.ID
	return &id
}

// ProductFilter narrows product listings
type ProductFilter struct {
	Category string
	Search   string
}

// OrderFilter narrows order listings
type OrderFilter struct {
	Status     OrderStatus
	CustomerID int64
}

// MovementFilter narrows stock movement listings
type MovementFilter struct {
	ProductID int64
	OrderID   int64
}
