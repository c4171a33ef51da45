package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"jewelry-backoffice/internal/models"
	"jewelry-backoffice/internal/service"
	"jewelry-backoffice/internal/store/memstore"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	admin = models.Actor{ID: 1, Role: models.RoleAdmin}
	sales = models.Actor{ID: 2, Role: models.RoleSales}
)

// recordingPublisher keeps every published event in order
type recordingPublisher struct {
	mu        sync.Mutex
	created   []*models.OrderCreatedEvent
	confirmed []*models.OrderConfirmedEvent
	cancelled []*models.OrderCancelledEvent
	moved     []*models.StockMovedEvent
}

func (p *recordingPublisher) PublishOrderCreated(_ context.Context, e *models.OrderCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, e)
	return nil
}

func (p *recordingPublisher) PublishOrderConfirmed(_ context.Context, e *models.OrderConfirmedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.confirmed = append(p.confirmed, e)
	return nil
}

func (p *recordingPublisher) PublishOrderCancelled(_ context.Context, e *models.OrderCancelledEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelled = append(p.cancelled, e)
	return nil
}

func (p *recordingPublisher) PublishStockMoved(_ context.Context, e *models.StockMovedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.moved = append(p.moved, e)
	return nil
}

type fixture struct {
	repo    *memstore.Store
	events  *recordingPublisher
	ledger  *service.StockLedger
	orders  *service.OrderService
	catalog *service.CatalogService
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := memstore.New()
	events := &recordingPublisher{}
	ledger := service.NewStockLedger(repo, events)
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	return &fixture{
		repo:    repo,
		events:  events,
		ledger:  ledger,
		orders:  service.NewOrderService(repo, ledger, events).WithClock(func() time.Time { return now }),
		catalog: service.NewCatalogService(repo),
		now:     now,
	}
}

func (f *fixture) product(t *testing.T, sku string, price string, stock int) *models.Product {
	t.Helper()
	p, err := f.catalog.CreateProduct(context.Background(), admin, &service.ProductInput{
		SKU:           sku,
		Name:          "Product " + sku,
		Category:      "Rings",
		CostPrice:     decimal.RequireFromString(price).Div(decimal.NewFromInt(2)),
		SellingPrice:  decimal.RequireFromString(price),
		StockQuantity: stock,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) customer(t *testing.T, code string) *models.Customer {
	t.Helper()
	c, err := f.catalog.CreateCustomer(context.Background(), admin, &service.CustomerInput{
		CustomerCode: code,
		Name:         "Customer " + code,
		Email:        code + "@example.com",
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) order(t *testing.T, customer *models.Customer) *models.SalesOrder {
	t.Helper()
	o, err := f.orders.CreateOrder(context.Background(), sales, &service.CreateOrderRequest{CustomerID: customer.ID})
	require.NoError(t, err)
	return o
}

func (f *fixture) addItem(t *testing.T, order *models.SalesOrder, product *models.Product, qty int) *models.SalesOrder {
	t.Helper()
	o, err := f.orders.AddItem(context.Background(), sales, order.ID, &service.AddItemRequest{
		ProductID: product.ID,
		Quantity:  qty,
	})
	require.NoError(t, err)
	return o
}

func (f *fixture) stock(t *testing.T, productID int64) int {
	t.Helper()
	p, err := f.repo.GetProduct(context.Background(), productID)
	require.NoError(t, err)
	return p.StockQuantity
}

func (f *fixture) movements(t *testing.T, filter models.MovementFilter) []models.StockMovement {
	t.Helper()
	m, err := f.ledger.Movements(context.Background(), filter)
	require.NoError(t, err)
	return m
}
