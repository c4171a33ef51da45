package service

import (
	"context"
	"time"

	"jewelry-backoffice/internal/models"
)

// Reader covers the read-only queries used outside of transactions
type Reader interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*models.Product, error)
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)

	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)
	GetCustomerByCode(ctx context.Context, code string) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)

	GetOrder(ctx context.Context, id int64) (*models.SalesOrder, error)
	// GetOrderByIdempotencyKey returns nil, nil when no order carries the key.
	GetOrderByIdempotencyKey(ctx context.Context, key string) (*models.SalesOrder, error)
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.SalesOrder, error)
	GetOrderItems(ctx context.Context, orderID int64) ([]models.SalesOrderItem, error)

	ListMovements(ctx context.Context, filter models.MovementFilter) ([]models.StockMovement, error)

	CountCustomers(ctx context.Context) (int, error)
	CountOrdersOn(ctx context.Context, day time.Time) (int, error)
	CountLowStock(ctx context.Context, threshold int) (int, error)
}

// Tx is a unit of work. Lock* methods hold their rows until the transaction
// ends so concurrent transitions on the same order or product serialize.
type Tx interface {
	LockOrder(ctx context.Context, id int64) (*models.SalesOrder, error)
	LockOrderNumbering(ctx context.Context, prefix string) error
	OrderNumbersWithPrefix(ctx context.Context, prefix string) ([]string, error)
	InsertOrder(ctx context.Context, order *models.SalesOrder) error
	UpdateOrder(ctx context.Context, order *models.SalesOrder) error
	DeleteOrder(ctx context.Context, id int64) error

	OrderItems(ctx context.Context, orderID int64) ([]models.SalesOrderItem, error)
	InsertOrderItem(ctx context.Context, item *models.SalesOrderItem) error
	DeleteOrderItem(ctx context.Context, orderID, itemID int64) error

	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	LockProducts(ctx context.Context, ids []int64) (map[int64]*models.Product, error)
	InsertProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	UpdateProductStock(ctx context.Context, id int64, quantity int) error
	DeleteProduct(ctx context.Context, id int64) error

	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)
	InsertCustomer(ctx context.Context, customer *models.Customer) error
	UpdateCustomer(ctx context.Context, customer *models.Customer) error
	DeleteCustomer(ctx context.Context, id int64) error

	InsertMovement(ctx context.Context, movement *models.StockMovement) error
}

// Repository is the persistence boundary of the services. InTx commits when fn
// returns nil and rolls back every write otherwise.
type Repository interface {
	Reader
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// EventPublisher receives domain events after their transaction committed
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderConfirmed(ctx context.Context, event *models.OrderConfirmedEvent) error
	PublishOrderCancelled(ctx context.Context, event *models.OrderCancelledEvent) error
	PublishStockMoved(ctx context.Context, event *models.StockMovedEvent) error
}

// Cache backs the dashboard summary and exposes the worker's low-stock set
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	LowStockSKUs(ctx context.Context) ([]string, error)
}
