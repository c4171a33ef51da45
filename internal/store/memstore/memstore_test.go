package memstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"jewelry-backoffice/internal/models"
	"jewelry-backoffice/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *Store) (*models.Product, *models.Customer) {
	t.Helper()
	product := &models.Product{SKU: "GR001", Name: "Gold Ring", SellingPrice: decimal.NewFromInt(650), StockQuantity: 5}
	customer := &models.Customer{CustomerCode: "JC001", Name: "Ahmed", Email: "ahmed@example.com"}

	err := s.InTx(context.Background(), func(tx service.Tx) error {
		if err := tx.InsertProduct(context.Background(), product); err != nil {
			return err
		}
		return tx.InsertCustomer(context.Background(), customer)
	})
	require.NoError(t, err)
	return product, customer
}

func TestInTxRollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	product, _ := seed(t, s)

	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx service.Tx) error {
		if err := tx.UpdateProductStock(ctx, product.ID, 1); err != nil {
			return err
		}
		if err := tx.InsertMovement(ctx, &models.StockMovement{ProductID: product.ID, Quantity: -4, Reason: models.MovementAdjustment}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	reloaded, err := s.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, reloaded.StockQuantity)

	moves, err := s.ListMovements(ctx, models.MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, moves)
}

func TestInTxHonoursCancelledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.InTx(ctx, func(service.Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestConstraints(t *testing.T) {
	s := New()
	ctx := context.Background()
	product, customer := seed(t, s)

	run := func(fn func(tx service.Tx) error) error { return s.InTx(ctx, fn) }

	assert.ErrorIs(t, run(func(tx service.Tx) error {
		return tx.InsertProduct(ctx, &models.Product{SKU: "GR001", Name: "dup"})
	}), models.ErrConflict)

	assert.ErrorIs(t, run(func(tx service.Tx) error {
		return tx.InsertCustomer(ctx, &models.Customer{CustomerCode: "JC002", Email: "ahmed@example.com"})
	}), models.ErrConflict)

	assert.ErrorIs(t, run(func(tx service.Tx) error {
		return tx.UpdateProductStock(ctx, product.ID, -1)
	}), models.ErrValidation)

	assert.ErrorIs(t, run(func(tx service.Tx) error {
		return tx.InsertMovement(ctx, &models.StockMovement{ProductID: product.ID, Quantity: 0})
	}), models.ErrValidation)

	assert.ErrorIs(t, run(func(tx service.Tx) error {
		return tx.InsertOrder(ctx, &models.SalesOrder{OrderNumber: "SO-1", CustomerID: 99})
	}), models.ErrNotFound)

	order := &models.SalesOrder{OrderNumber: "SO-1", CustomerID: customer.ID, Status: models.OrderStatusPending, IdempotencyKey: "k"}
	require.NoError(t, run(func(tx service.Tx) error { return tx.InsertOrder(ctx, order) }))

	assert.ErrorIs(t, run(func(tx service.Tx) error {
		return tx.InsertOrder(ctx, &models.SalesOrder{OrderNumber: "SO-1", CustomerID: customer.ID})
	}), models.ErrConflict)
	assert.ErrorIs(t, run(func(tx service.Tx) error {
		return tx.InsertOrder(ctx, &models.SalesOrder{OrderNumber: "SO-2", CustomerID: customer.ID, IdempotencyKey: "k"})
	}), models.ErrConflict)

	byKey, err := s.GetOrderByIdempotencyKey(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, byKey)
	assert.Equal(t, order.ID, byKey.ID)

	missing, err := s.GetOrderByIdempotencyKey(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.ErrorIs(t, run(func(tx service.Tx) error { return tx.DeleteCustomer(ctx, customer.ID) }), models.ErrConflict)
}

func TestDeleteOrder(t *testing.T) {
	s := New()
	ctx := context.Background()
	product, customer := seed(t, s)

	order := &models.SalesOrder{OrderNumber: "SO-1", CustomerID: customer.ID, Status: models.OrderStatusPending}
	err := s.InTx(ctx, func(tx service.Tx) error {
		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}
		item := &models.SalesOrderItem{OrderID: order.ID, ProductID: product.ID, Quantity: 2, UnitPrice: product.SellingPrice}
		if err := tx.InsertOrderItem(ctx, item); err != nil {
			return err
		}
		orderRef := order.ID
		return tx.InsertMovement(ctx, &models.StockMovement{ProductID: product.ID, Quantity: -2, Reason: models.MovementOrderConfirmed, OrderID: &orderRef})
	})
	require.NoError(t, err)

	items, err := s.GetOrderItems(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, decimal.NewFromInt(1300).Equal(items[0].TotalPrice))

	// Movements pin the order
	err = s.InTx(ctx, func(tx service.Tx) error { return tx.DeleteOrder(ctx, order.ID) })
	require.ErrorIs(t, err, models.ErrConflict)

	moves, err := s.ListMovements(ctx, models.MovementFilter{OrderID: order.ID})
	require.NoError(t, err)
	require.Len(t, moves, 1)
	require.NotNil(t, moves[0].OrderID)
	assert.Equal(t, order.ID, *moves[0].OrderID)

	draft := &models.SalesOrder{OrderNumber: "SO-2", CustomerID: customer.ID, Status: models.OrderStatusPending}
	err = s.InTx(ctx, func(tx service.Tx) error {
		if err := tx.InsertOrder(ctx, draft); err != nil {
			return err
		}
		return tx.InsertOrderItem(ctx, &models.SalesOrderItem{OrderID: draft.ID, ProductID: product.ID, Quantity: 1, UnitPrice: product.SellingPrice})
	})
	require.NoError(t, err)

	require.NoError(t, s.InTx(ctx, func(tx service.Tx) error { return tx.DeleteOrder(ctx, draft.ID) }))

	items, err = s.GetOrderItems(ctx, draft.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = s.GetOrderItems(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	assert.ErrorIs(t, s.InTx(ctx, func(tx service.Tx) error { return tx.DeleteProduct(ctx, product.ID) }), models.ErrConflict)
}

func TestCountOrdersOn(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, customer := seed(t, s)

	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	err := s.InTx(ctx, func(tx service.Tx) error {
		for i, date := range []time.Time{day, day, day.AddDate(0, 0, -1)} {
			o := &models.SalesOrder{
				OrderNumber: fmt.Sprintf("SO-TEST-%04d", i+1),
				CustomerID:  customer.ID,
				OrderDate:   date,
				Status:      models.OrderStatusPending,
			}
			if err := tx.InsertOrder(ctx, o); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	count, err := s.CountOrdersOn(ctx, day.Add(15*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
