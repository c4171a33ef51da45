package store

import (
	"context"

	"jewelry-backoffice/internal/models"

	"github.com/jmoiron/sqlx"
)

const customerColumns = `id, customer_code, name, phone, address, email, opening_balance, created_at, updated_at`

func getCustomer(ctx context.Context, q sqlx.QueryerContext, id int64) (*models.Customer, error) {
	var customer models.Customer
	err := sqlx.GetContext(ctx, q, &customer,
		"SELECT "+customerColumns+" FROM customers WHERE id = $1", id)
	if err != nil {
		return nil, notFound(err, "customer", id)
	}
	return &customer, nil
}

// GetCustomer retrieves a customer by ID
func (s *Store) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	return getCustomer(ctx, s.db, id)
}

// GetCustomerByCode retrieves a customer by business code
func (s *Store) GetCustomerByCode(ctx context.Context, code string) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.GetContext(ctx, &customer,
		"SELECT "+customerColumns+" FROM customers WHERE customer_code = $1", code)
	if err != nil {
		return nil, notFound(err, "customer", code)
	}
	return &customer, nil
}

// ListCustomers retrieves all customers ordered by name
func (s *Store) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	customers := []models.Customer{}
	err := s.db.SelectContext(ctx, &customers,
		"SELECT "+customerColumns+" FROM customers ORDER BY name, id")
	return customers, err
}

// CountCustomers counts all customers
func (s *Store) CountCustomers(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM customers")
	return count, err
}

func (t *pgTx) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	return getCustomer(ctx, t.tx, id)
}

func (t *pgTx) InsertCustomer(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (customer_code, name, phone, address, email, opening_balance)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	row := t.tx.QueryRowxContext(ctx, query,
		customer.CustomerCode, customer.Name, customer.Phone,
		customer.Address, customer.Email, customer.OpeningBalance)
	return mapError(row.Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt))
}

func (t *pgTx) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	query := `
		UPDATE customers
		SET customer_code = $1, name = $2, phone = $3, address = $4, email = $5,
		    opening_balance = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING created_at, updated_at`

	err := t.tx.QueryRowxContext(ctx, query,
		customer.CustomerCode, customer.Name, customer.Phone, customer.Address,
		customer.Email, customer.OpeningBalance, customer.ID).
		Scan(&customer.CreatedAt, &customer.UpdatedAt)
	return mapError(notFound(err, "customer", customer.ID))
}

func (t *pgTx) DeleteCustomer(ctx context.Context, id int64) error {
	res, err := t.tx.ExecContext(ctx, "DELETE FROM customers WHERE id = $1", id)
	if err != nil {
		return mapError(err)
	}
	return expectOne(res, "customer", id)
}
