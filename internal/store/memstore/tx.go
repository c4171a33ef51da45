package memstore

import (
	"context"
	"strings"
	"time"

	"jewelry-backoffice/internal/models"
)

// tx mutates a private copy of the state while the store mutex is held
type tx struct {
	st  *state
	now func() time.Time
}

func (t *tx) LockOrder(ctx context.Context, id int64) (*models.SalesOrder, error) {
	return t.st.order(id)
}

// LockOrderNumbering is satisfied by the store mutex
func (t *tx) LockOrderNumbering(ctx context.Context, prefix string) error {
	return nil
}

func (t *tx) OrderNumbersWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	numbers := []string{}
	for _, o := range t.st.orders {
		if strings.HasPrefix(o.OrderNumber, prefix) {
			numbers = append(numbers, o.OrderNumber)
		}
	}
	return numbers, nil
}

func (t *tx) InsertOrder(ctx context.Context, order *models.SalesOrder) error {
	if _, ok := t.st.customers[order.CustomerID]; !ok {
		return models.NewNotFound("customer", order.CustomerID)
	}
	for _, o := range t.st.orders {
		if o.OrderNumber == order.OrderNumber {
			return models.NewConflict("order number " + order.OrderNumber + " already exists")
		}
		if order.IdempotencyKey != "" && o.IdempotencyKey == order.IdempotencyKey {
			return models.NewConflict("idempotency key already used")
		}
	}

	t.st.nextOrderID++
	now := t.now()
	order.ID = t.st.nextOrderID
	order.CreatedAt = now
	order.UpdatedAt = now

	stored := *order
	stored.Items = nil
	t.st.orders[order.ID] = stored
	return nil
}

func (t *tx) UpdateOrder(ctx context.Context, order *models.SalesOrder) error {
	existing, ok := t.st.orders[order.ID]
	if !ok {
		return models.NewNotFound("order", order.ID)
	}
	if _, ok := t.st.customers[order.CustomerID]; !ok {
		return models.NewNotFound("customer", order.CustomerID)
	}

	existing.CustomerID = order.CustomerID
	existing.TotalAmount = order.TotalAmount
	existing.Status = order.Status
	existing.UpdatedAt = t.now()
	t.st.orders[order.ID] = existing

	order.UpdatedAt = existing.UpdatedAt
	return nil
}

func (t *tx) DeleteOrder(ctx context.Context, id int64) error {
	if _, ok := t.st.orders[id]; !ok {
		return models.NewNotFound("order", id)
	}
	for _, m := range t.st.movements {
		if m.OrderID != nil && *m.OrderID == id {
			return models.NewConflict("order is referenced by stock movements")
		}
	}
	for itemID, item := range t.st.items {
		if item.OrderID == id {
			delete(t.st.items, itemID)
		}
	}
	delete(t.st.orders, id)
	return nil
}

func (t *tx) OrderItems(ctx context.Context, orderID int64) ([]models.SalesOrderItem, error) {
	return t.st.orderItems(orderID), nil
}

func (t *tx) InsertOrderItem(ctx context.Context, item *models.SalesOrderItem) error {
	if _, ok := t.st.orders[item.OrderID]; !ok {
		return models.NewNotFound("order", item.OrderID)
	}
	if _, ok := t.st.products[item.ProductID]; !ok {
		return models.NewNotFound("product", item.ProductID)
	}

	t.st.nextItemID++
	item.ID = t.st.nextItemID
	item.ComputeTotal()
	t.st.items[item.ID] = *item
	return nil
}

func (t *tx) DeleteOrderItem(ctx context.Context, orderID, itemID int64) error {
	item, ok := t.st.items[itemID]
	if !ok || item.OrderID != orderID {
		return models.NewNotFound("order item", itemID)
	}
	delete(t.st.items, itemID)
	return nil
}

func (t *tx) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return t.st.product(id)
}

func (t *tx) LockProducts(ctx context.Context, ids []int64) (map[int64]*models.Product, error) {
	products := make(map[int64]*models.Product, len(ids))
	for _, id := range ids {
		if p, ok := t.st.products[id]; ok {
			product := p
			products[id] = &product
		}
	}
	return products, nil
}

func (t *tx) InsertProduct(ctx context.Context, product *models.Product) error {
	if err := t.uniqueSKU(product.SKU, 0); err != nil {
		return err
	}
	if product.StockQuantity < 0 {
		return models.NewValidationError("stock_quantity", "must not be negative")
	}

	t.st.nextProductID++
	now := t.now()
	product.ID = t.st.nextProductID
	product.CreatedAt = now
	product.UpdatedAt = now
	t.st.products[product.ID] = *product
	return nil
}

func (t *tx) UpdateProduct(ctx context.Context, product *models.Product) error {
	existing, ok := t.st.products[product.ID]
	if !ok {
		return models.NewNotFound("product", product.ID)
	}
	if err := t.uniqueSKU(product.SKU, product.ID); err != nil {
		return err
	}

	existing.SKU = product.SKU
	existing.Name = product.Name
	existing.Category = product.Category
	existing.CostPrice = product.CostPrice
	existing.SellingPrice = product.SellingPrice
	existing.UpdatedAt = t.now()
	t.st.products[product.ID] = existing

	product.UpdatedAt = existing.UpdatedAt
	return nil
}

func (t *tx) UpdateProductStock(ctx context.Context, id int64, quantity int) error {
	existing, ok := t.st.products[id]
	if !ok {
		return models.NewNotFound("product", id)
	}
	if quantity < 0 {
		return models.NewValidationError("stock_quantity", "must not be negative")
	}

	existing.StockQuantity = quantity
	existing.UpdatedAt = t.now()
	t.st.products[id] = existing
	return nil
}

func (t *tx) DeleteProduct(ctx context.Context, id int64) error {
	if _, ok := t.st.products[id]; !ok {
		return models.NewNotFound("product", id)
	}
	for _, item := range t.st.items {
		if item.ProductID == id {
			return models.NewConflict("product is referenced by order items")
		}
	}
	for _, m := range t.st.movements {
		if m.ProductID == id {
			return models.NewConflict("product is referenced by stock movements")
		}
	}
	delete(t.st.products, id)
	return nil
}

func (t *tx) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	return t.st.customer(id)
}

func (t *tx) InsertCustomer(ctx context.Context, customer *models.Customer) error {
	if err := t.uniqueCustomer(customer, 0); err != nil {
		return err
	}

	t.st.nextCustomerID++
	now := t.now()
	customer.ID = t.st.nextCustomerID
	customer.CreatedAt = now
	customer.UpdatedAt = now
	t.st.customers[customer.ID] = *customer
	return nil
}

func (t *tx) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	existing, ok := t.st.customers[customer.ID]
	if !ok {
		return models.NewNotFound("customer", customer.ID)
	}
	if err := t.uniqueCustomer(customer, customer.ID); err != nil {
		return err
	}

	customer.CreatedAt = existing.CreatedAt
	customer.UpdatedAt = t.now()
	t.st.customers[customer.ID] = *customer
	return nil
}

func (t *tx) DeleteCustomer(ctx context.Context, id int64) error {
	if _, ok := t.st.customers[id]; !ok {
		return models.NewNotFound("customer", id)
	}
	for _, o := range t.st.orders {
		if o.CustomerID == id {
			return models.NewConflict("customer has orders")
		}
	}
	delete(t.st.customers, id)
	return nil
}

func (t *tx) InsertMovement(ctx context.Context, movement *models.StockMovement) error {
	if _, ok := t.st.products[movement.ProductID]; !ok {
		return models.NewNotFound("product", movement.ProductID)
	}
	if movement.Quantity == 0 {
		return models.NewValidationError("quantity", "must not be zero")
	}

	t.st.nextMovementID++
	movement.ID = t.st.nextMovementID
	movement.Timestamp = t.now()
	t.st.movements = append(t.st.movements, *movement)
	return nil
}

func (t *tx) uniqueSKU(sku string, selfID int64) error {
	for _, p := range t.st.products {
		if p.ID != selfID && p.SKU == sku {
			return models.NewConflict("sku " + sku + " already exists")
		}
	}
	return nil
}

func (t *tx) uniqueCustomer(customer *models.Customer, selfID int64) error {
	for _, c := range t.st.customers {
		if c.ID == selfID {
			continue
		}
		if c.CustomerCode == customer.CustomerCode {
			return models.NewConflict("customer id " + customer.CustomerCode + " already exists")
		}
		if c.Email == customer.Email {
			return models.NewConflict("email " + customer.Email + " already exists")
		}
	}
	return nil
}
