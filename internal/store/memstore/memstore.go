// Package memstore is an in-memory implementation of the service repository.
// Transactions are serialized by a single mutex and applied to a private copy
// of the state, which replaces the live state only when the transaction
// function succeeds.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"jewelry-backoffice/internal/models"
	"jewelry-backoffice/internal/service"
)

var (
	_ service.Repository = (*Store)(nil)
	_ service.Tx         = (*tx)(nil)
)

// Store holds all records in memory
type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

type state struct {
	products  map[int64]models.Product
	customers map[int64]models.Customer
	orders    map[int64]models.SalesOrder
	items     map[int64]models.SalesOrderItem
	movements []models.StockMovement

	nextProductID  int64
	nextCustomerID int64
	nextOrderID    int64
	nextItemID     int64
	nextMovementID int64
}

// New creates an empty store
func New() *Store {
	return &Store{
		state: &state{
			products:  make(map[int64]models.Product),
			customers: make(map[int64]models.Customer),
			orders:    make(map[int64]models.SalesOrder),
			items:     make(map[int64]models.SalesOrderItem),
		},
		now: time.Now,
	}
}

// Close is a no-op kept for parity with the Postgres store
func (s *Store) Close() error { return nil }

func (st *state) clone() *state {
	c := *st
	c.products = make(map[int64]models.Product, len(st.products))
	for k, v := range st.products {
		c.products[k] = v
	}
	c.customers = make(map[int64]models.Customer, len(st.customers))
	for k, v := range st.customers {
		c.customers[k] = v
	}
	c.orders = make(map[int64]models.SalesOrder, len(st.orders))
	for k, v := range st.orders {
		c.orders[k] = v
	}
	c.items = make(map[int64]models.SalesOrderItem, len(st.items))
	for k, v := range st.items {
		c.items[k] = v
	}
	c.movements = append([]models.StockMovement(nil), st.movements...)
	return &c
}

// InTx runs fn against a copy of the state and publishes the copy on success
func (s *Store) InTx(ctx context.Context, fn func(tx service.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.state.clone()
	if err := fn(&tx{st: work, now: s.now}); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *Store) read() *state {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// GetProduct retrieves a product by ID
func (s *Store) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.read().product(id)
}

// GetProductBySKU retrieves a product by SKU
func (s *Store) GetProductBySKU(ctx context.Context, sku string) (*models.Product, error) {
	for _, p := range s.read().products {
		if p.SKU == sku {
			product := p
			return &product, nil
		}
	}
	return nil, models.NewNotFound("product", sku)
}

// ListProducts lists products ordered by name
func (s *Store) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	search := strings.ToLower(filter.Search)
	products := []models.Product{}
	for _, p := range s.read().products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.SKU), search) {
			continue
		}
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].Name == products[j].Name {
			return products[i].ID < products[j].ID
		}
		return products[i].Name < products[j].Name
	})
	return products, nil
}

// GetCustomer retrieves a customer by ID
func (s *Store) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	return s.read().customer(id)
}

// GetCustomerByCode retrieves a customer by business code
func (s *Store) GetCustomerByCode(ctx context.Context, code string) (*models.Customer, error) {
	for _, c := range s.read().customers {
		if c.CustomerCode == code {
			customer := c
			return &customer, nil
		}
	}
	return nil, models.NewNotFound("customer", code)
}

// ListCustomers lists customers ordered by name
func (s *Store) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	customers := []models.Customer{}
	for _, c := range s.read().customers {
		customers = append(customers, c)
	}
	sort.Slice(customers, func(i, j int) bool {
		if customers[i].Name == customers[j].Name {
			return customers[i].ID < customers[j].ID
		}
		return customers[i].Name < customers[j].Name
	})
	return customers, nil
}

// GetOrder retrieves an order by ID without items
func (s *Store) GetOrder(ctx context.Context, id int64) (*models.SalesOrder, error) {
	return s.read().order(id)
}

// GetOrderByIdempotencyKey returns nil, nil when the key is unused
func (s *Store) GetOrderByIdempotencyKey(ctx context.Context, key string) (*models.SalesOrder, error) {
	if key == "" {
		return nil, nil
	}
	for _, o := range s.read().orders {
		if o.IdempotencyKey == key {
			order := o
			return &order, nil
		}
	}
	return nil, nil
}

// ListOrders lists orders by date then id, newest first
func (s *Store) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.SalesOrder, error) {
	orders := []models.SalesOrder{}
	for _, o := range s.read().orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.CustomerID != 0 && o.CustomerID != filter.CustomerID {
			continue
		}
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].OrderDate.Equal(orders[j].OrderDate) {
			return orders[i].OrderDate.After(orders[j].OrderDate)
		}
		return orders[i].ID > orders[j].ID
	})
	return orders, nil
}

// GetOrderItems lists the items of an order
func (s *Store) GetOrderItems(ctx context.Context, orderID int64) ([]models.SalesOrderItem, error) {
	return s.read().orderItems(orderID), nil
}

// ListMovements lists stock movements, newest first
func (s *Store) ListMovements(ctx context.Context, filter models.MovementFilter) ([]models.StockMovement, error) {
	movements := []models.StockMovement{}
	for _, m := range s.read().movements {
		if filter.ProductID != 0 && m.ProductID != filter.ProductID {
			continue
		}
		if filter.OrderID != 0 && (m.OrderID == nil || *m.OrderID != filter.OrderID) {
			continue
		}
		movements = append(movements, m)
	}
	sort.Slice(movements, func(i, j int) bool { return movements[i].ID > movements[j].ID })
	return movements, nil
}

// CountCustomers counts all customers
func (s *Store) CountCustomers(ctx context.Context) (int, error) {
	return len(s.read().customers), nil
}

// CountOrdersOn counts orders dated on the same calendar day as day
func (s *Store) CountOrdersOn(ctx context.Context, day time.Time) (int, error) {
	y, m, d := day.Date()
	count := 0
	for _, o := range s.read().orders {
		oy, om, od := o.OrderDate.Date()
		if oy == y && om == m && od == d {
			count++
		}
	}
	return count, nil
}

// CountLowStock counts products whose stock is below threshold
func (s *Store) CountLowStock(ctx context.Context, threshold int) (int, error) {
	count := 0
	for _, p := range s.read().products {
		if p.StockQuantity < threshold {
			count++
		}
	}
	return count, nil
}

func (st *state) product(id int64) (*models.Product, error) {
	p, ok := st.products[id]
	if !ok {
		return nil, models.NewNotFound("product", id)
	}
	return &p, nil
}

func (st *state) customer(id int64) (*models.Customer, error) {
	c, ok := st.customers[id]
	if !ok {
		return nil, models.NewNotFound("customer", id)
	}
	return &c, nil
}

func (st *state) order(id int64) (*models.SalesOrder, error) {
	o, ok := st.orders[id]
	if !ok {
		return nil, models.NewNotFound("order", id)
	}
	return &o, nil
}

func (st *state) orderItems(orderID int64) []models.SalesOrderItem {
	items := []models.SalesOrderItem{}
	for _, item := range st.items {
		if item.OrderID == orderID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}
