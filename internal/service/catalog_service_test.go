package service_test

import (
	"context"
	"testing"

	"jewelry-backoffice/internal/models"
	"jewelry-backoffice/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProductValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input service.ProductInput
		field string
	}{
		{"missing sku", service.ProductInput{Name: "Ring"}, "sku"},
		{"missing name", service.ProductInput{SKU: "R1"}, "name"},
		{"negative stock", service.ProductInput{SKU: "R1", Name: "Ring", StockQuantity: -1}, "stock_quantity"},
		{"negative price", service.ProductInput{SKU: "R1", Name: "Ring", SellingPrice: decimal.NewFromInt(-5)}, "selling_price"},
		{"sub-cent price", service.ProductInput{SKU: "R1", Name: "Ring", SellingPrice: decimal.RequireFromString("1.005")}, "selling_price"},
		{"sub-cent cost", service.ProductInput{SKU: "R1", Name: "Ring", CostPrice: decimal.RequireFromString("0.001")}, "cost_price"},
		{"price too large", service.ProductInput{SKU: "R1", Name: "Ring", SellingPrice: decimal.RequireFromString("10000000000")}, "selling_price"},
		{"stock too large", service.ProductInput{SKU: "R1", Name: "Ring", StockQuantity: 1 << 31}, "stock_quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.catalog.CreateProduct(ctx, admin, &tt.input)
			var vErr *models.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestCreateProductKeepsTwoDecimalPrices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.catalog.CreateProduct(ctx, admin, &service.ProductInput{
		SKU: "GE001", Name: "Gold Earrings", SellingPrice: decimal.RequireFromString("1.50"),
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1.5").Equal(p.SellingPrice))
}

func TestProductSKUUnique(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "GR001", "650", 1)

	_, err := f.catalog.CreateProduct(ctx, admin, &service.ProductInput{SKU: "GR001", Name: "Copy"})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestUpdateProductKeepsStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "GN002", "2200", 8)

	updated, err := f.catalog.UpdateProduct(ctx, admin, p.ID, &service.ProductInput{
		SKU:           "GN002",
		Name:          "Gold Chain 21K",
		Category:      "Gold Necklaces",
		SellingPrice:  decimal.NewFromInt(2300),
		StockQuantity: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, "Gold Chain 21K", updated.Name)
	assert.Equal(t, 8, updated.StockQuantity)
	assert.Equal(t, 8, f.stock(t, p.ID))

	_, err = f.catalog.UpdateProduct(ctx, admin, 999, &service.ProductInput{SKU: "X", Name: "X"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteReferencedProductConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	used := f.product(t, "DR002", "7500", 3)
	unused := f.product(t, "DR009", "100", 1)
	order := f.order(t, f.customer(t, "JC001"))
	f.addItem(t, order, used, 1)

	assert.ErrorIs(t, f.catalog.DeleteProduct(ctx, admin, used.ID), models.ErrConflict)
	require.NoError(t, f.catalog.DeleteProduct(ctx, admin, unused.ID))
	assert.ErrorIs(t, f.catalog.DeleteProduct(ctx, admin, unused.ID), models.ErrNotFound)
}

func TestListProductsFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "GR001", "650", 25)
	f.product(t, "GR002", "800", 15)

	all, err := f.catalog.ListProducts(ctx, models.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := f.catalog.ListProducts(ctx, models.ProductFilter{Search: "gr002"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "GR002", found[0].SKU)

	none, err := f.catalog.ListProducts(ctx, models.ProductFilter{Category: "Watches"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCustomerLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.catalog.CreateCustomer(ctx, sales, &service.CustomerInput{
		CustomerCode:   "JC002",
		Name:           "Fatima Khalil",
		Phone:          "011-2345-6789",
		Email:          "Fatima.Khalil@Gmail.com",
		OpeningBalance: decimal.NewFromInt(1500),
	})
	require.NoError(t, err)
	assert.Equal(t, "fatima.khalil@gmail.com", c.Email)

	_, err = f.catalog.CreateCustomer(ctx, sales, &service.CustomerInput{
		CustomerCode: "JC003", Name: "Dup", Email: "fatima.khalil@gmail.com",
	})
	assert.ErrorIs(t, err, models.ErrConflict)

	_, err = f.catalog.CreateCustomer(ctx, sales, &service.CustomerInput{
		CustomerCode: "JC004", Name: "Bad", Email: "nope",
	})
	var vErr *models.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "email", vErr.Field)

	_, err = f.catalog.CreateCustomer(ctx, sales, &service.CustomerInput{
		CustomerCode: "JC005", Name: "Cents", Email: "cents@example.com", OpeningBalance: decimal.RequireFromString("12.345"),
	})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "opening_balance", vErr.Field)

	updated, err := f.catalog.UpdateCustomer(ctx, admin, c.ID, &service.CustomerInput{
		CustomerCode: "JC002", Name: "Fatima K.", Email: "fatima.khalil@gmail.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Fatima K.", updated.Name)

	byCode, err := f.catalog.GetCustomerByCode(ctx, "JC002")
	require.NoError(t, err)
	assert.Equal(t, c.ID, byCode.ID)

	f.order(t, c)
	assert.ErrorIs(t, f.catalog.DeleteCustomer(ctx, admin, c.ID), models.ErrConflict)
}
