package service

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"jewelry-backoffice/internal/models"
	"jewelry-backoffice/internal/util"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CatalogService manages products and customers
type CatalogService struct {
	repo     Repository
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repo Repository) *CatalogService {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &CatalogService{
		repo:     repo,
		validate: validate,
		logger:   util.GetLogger(),
	}
}

// ProductInput holds the editable product fields
type ProductInput struct {
	SKU           string          `json:"sku" validate:"required,max=100"`
	Name          string          `json:"name" validate:"required,max=255"`
	Category      string          `json:"category" validate:"max=100"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	StockQuantity int             `json:"stock_quantity" validate:"gte=0"`
}

// CustomerInput holds the editable customer fields
type CustomerInput struct {
	CustomerCode   string          `json:"customer_id" validate:"required,max=100"`
	Name           string          `json:"name" validate:"required,max=255"`
	Phone          string          `json:"phone" validate:"max=20"`
	Address        string          `json:"address"`
	Email          string          `json:"email" validate:"required,email"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

func (s *CatalogService) check(input interface{}) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return models.NewValidationError(fe.Field(), "failed "+fe.Tag()+" check")
	}
	return models.NewValidationError("input", err.Error())
}

func (s *CatalogService) checkProduct(input *ProductInput) error {
	if err := s.check(input); err != nil {
		return err
	}
	if input.CostPrice.IsNegative() {
		return models.NewValidationError("cost_price", "must not be negative")
	}
	if input.SellingPrice.IsNegative() {
		return models.NewValidationError("selling_price", "must not be negative")
	}
	if err := checkMoney("cost_price", input.CostPrice); err != nil {
		return err
	}
	if err := checkMoney("selling_price", input.SellingPrice); err != nil {
		return err
	}
	if input.StockQuantity > maxQuantity {
		return models.NewValidationError("stock_quantity", "is too large")
	}
	return nil
}

func (s *CatalogService) checkCustomer(input *CustomerInput) error {
	if err := s.check(input); err != nil {
		return err
	}
	return checkMoney("opening_balance", input.OpeningBalance)
}

// money columns are NUMERIC(12, 2)
var maxMoney = decimal.New(1, 10)

func checkMoney(field string, amount decimal.Decimal) error {
	if !amount.Equal(amount.Round(2)) {
		return models.NewValidationError(field, "must have at most two decimal places")
	}
	if amount.Abs().GreaterThanOrEqual(maxMoney) {
		return models.NewValidationError(field, "is too large")
	}
	return nil
}

// CreateProduct adds a product to the catalog
func (s *CatalogService) CreateProduct(ctx context.Context, actor models.Actor, input *ProductInput) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateProduct")
	defer span.End()

	if err := s.checkProduct(input); err != nil {
		return nil, err
	}

	product := &models.Product{
		SKU:           strings.TrimSpace(input.SKU),
		Name:          strings.TrimSpace(input.Name),
		Category:      strings.TrimSpace(input.Category),
		CostPrice:     input.CostPrice,
		SellingPrice:  input.SellingPrice,
		StockQuantity: input.StockQuantity,
	}
	err := s.repo.InTx(ctx, func(tx Tx) error {
		return tx.InsertProduct(ctx, product)
	})
	if err != nil {
		util.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.String("sku", product.SKU),
		zap.Int64("actor_id", actor.ID))
	return product, nil
}

// UpdateProduct edits descriptive and price fields. Stock changes go through
// the stock ledger so that every change leaves a movement.
func (s *CatalogService) UpdateProduct(ctx context.Context, actor models.Actor, productID int64, input *ProductInput) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.UpdateProduct", attribute.Int64("product_id", productID))
	defer span.End()

	if err := s.checkProduct(input); err != nil {
		return nil, err
	}

	var product *models.Product
	err := s.repo.InTx(ctx, func(tx Tx) error {
		locked, err := tx.LockProducts(ctx, []int64{productID})
		if err != nil {
			return err
		}
		p, ok := locked[productID]
		if !ok {
			return models.NewNotFound("product", productID)
		}

		p.SKU = strings.TrimSpace(input.SKU)
		p.Name = strings.TrimSpace(input.Name)
		p.Category = strings.TrimSpace(input.Category)
		p.CostPrice = input.CostPrice
		p.SellingPrice = input.SellingPrice
		if err := tx.UpdateProduct(ctx, p); err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		util.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Product updated", zap.Int64("product_id", productID), zap.Int64("actor_id", actor.ID))
	return product, nil
}

// DeleteProduct removes a product that no order or movement references
func (s *CatalogService) DeleteProduct(ctx context.Context, actor models.Actor, productID int64) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.DeleteProduct", attribute.Int64("product_id", productID))
	defer span.End()

	err := s.repo.InTx(ctx, func(tx Tx) error {
		return tx.DeleteProduct(ctx, productID)
	})
	if err != nil {
		util.RecordError(span, err)
		return err
	}

	s.logger.Info("Product deleted", zap.Int64("product_id", productID), zap.Int64("actor_id", actor.ID))
	return nil
}

// GetProduct retrieves a product by ID
func (s *CatalogService) GetProduct(ctx context.Context, productID int64) (*models.Product, error) {
	return s.repo.GetProduct(ctx, productID)
}

// GetProductBySKU retrieves a product by SKU
func (s *CatalogService) GetProductBySKU(ctx context.Context, sku string) (*models.Product, error) {
	return s.repo.GetProductBySKU(ctx, sku)
}

// ListProducts lists products ordered by name
func (s *CatalogService) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListProducts")
	defer span.End()

	return s.repo.ListProducts(ctx, filter)
}

// CreateCustomer registers a customer
func (s *CatalogService) CreateCustomer(ctx context.Context, actor models.Actor, input *CustomerInput) (*models.Customer, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateCustomer")
	defer span.End()

	if err := s.checkCustomer(input); err != nil {
		return nil, err
	}

	customer := customerFromInput(input)
	err := s.repo.InTx(ctx, func(tx Tx) error {
		return tx.InsertCustomer(ctx, customer)
	})
	if err != nil {
		util.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Customer created",
		zap.Int64("customer_id", customer.ID),
		zap.String("customer_code", customer.CustomerCode),
		zap.Int64("actor_id", actor.ID))
	return customer, nil
}

// UpdateCustomer replaces the editable customer fields
func (s *CatalogService) UpdateCustomer(ctx context.Context, actor models.Actor, customerID int64, input *CustomerInput) (*models.Customer, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.UpdateCustomer", attribute.Int64("customer_id", customerID))
	defer span.End()

	if err := s.checkCustomer(input); err != nil {
		return nil, err
	}

	var customer *models.Customer
	err := s.repo.InTx(ctx, func(tx Tx) error {
		existing, err := tx.GetCustomer(ctx, customerID)
		if err != nil {
			return err
		}

		updated := customerFromInput(input)
		updated.ID = existing.ID
		updated.CreatedAt = existing.CreatedAt
		if err := tx.UpdateCustomer(ctx, updated); err != nil {
			return err
		}
		customer = updated
		return nil
	})
	if err != nil {
		util.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Customer updated", zap.Int64("customer_id", customerID), zap.Int64("actor_id", actor.ID))
	return customer, nil
}

// DeleteCustomer removes a customer without orders
func (s *CatalogService) DeleteCustomer(ctx context.Context, actor models.Actor, customerID int64) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.DeleteCustomer", attribute.Int64("customer_id", customerID))
	defer span.End()

	err := s.repo.InTx(ctx, func(tx Tx) error {
		return tx.DeleteCustomer(ctx, customerID)
	})
	if err != nil {
		util.RecordError(span, err)
		return err
	}

	s.logger.Info("Customer deleted", zap.Int64("customer_id", customerID), zap.Int64("actor_id", actor.ID))
	return nil
}

// GetCustomer retrieves a customer by ID
func (s *CatalogService) GetCustomer(ctx context.Context, customerID int64) (*models.Customer, error) {
	return s.repo.GetCustomer(ctx, customerID)
}

// GetCustomerByCode retrieves a customer by business code
func (s *CatalogService) GetCustomerByCode(ctx context.Context, code string) (*models.Customer, error) {
	return s.repo.GetCustomerByCode(ctx, code)
}

// ListCustomers lists customers ordered by name
func (s *CatalogService) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListCustomers")
	defer span.End()

	return s.repo.ListCustomers(ctx)
}

func customerFromInput(input *CustomerInput) *models.Customer {
	return &models.Customer{
		CustomerCode:   strings.TrimSpace(input.CustomerCode),
		Name:           strings.TrimSpace(input.Name),
		Phone:          strings.TrimSpace(input.Phone),
		Address:        strings.TrimSpace(input.Address),
		Email:          strings.ToLower(strings.TrimSpace(input.Email)),
		OpeningBalance: input.OpeningBalance,
	}
}
