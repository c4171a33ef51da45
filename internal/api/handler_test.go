package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"jewelry-backoffice/internal/broker"
	"jewelry-backoffice/internal/models"
	"jewelry-backoffice/internal/service"
	"jewelry-backoffice/internal/store/memstore"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	router   *gin.Engine
	catalog  *service.CatalogService
	product  *models.Product
	customer *models.Customer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := memstore.New()
	events := broker.NopPublisher{}
	ledger := service.NewStockLedger(repo, events)
	orders := service.NewOrderService(repo, ledger, events)
	catalog := service.NewCatalogService(repo)
	dashboard := service.NewDashboardService(repo, nil, 10, 0)

	router := gin.New()
	h := NewHandler(orders, catalog, ledger, dashboard, zap.NewNop()).
		WithReadinessCheck("store", pingerFunc(func(context.Context) error { return nil }))
	require.NoError(t, h.SetupRoutes(router))

	admin := models.Actor{ID: 1, Role: models.RoleAdmin}
	product, err := catalog.CreateProduct(context.Background(), admin, &service.ProductInput{
		SKU:           "RING-001",
		Name:          "Diamond Solitaire Ring",
		Category:      "Rings",
		CostPrice:     decimal.RequireFromString("800.00"),
		SellingPrice:  decimal.RequireFromString("1200.00"),
		StockQuantity: 2,
	})
	require.NoError(t, err)
	customer, err := catalog.CreateCustomer(context.Background(), admin, &service.CustomerInput{
		CustomerCode: "JC001",
		Name:         "Sarah Johnson",
		Email:        "sarah.johnson@email.com",
	})
	require.NoError(t, err)

	return &testServer{router: router, catalog: catalog, product: product, customer: customer}
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func (s *testServer) do(t *testing.T, method, path string, role models.Role, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set(actorIDHeader, "7")
		req.Header.Set(actorRoleHeader, string(role))
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest))
}

func (s *testServer) createOrder(t *testing.T, quantity int) models.SalesOrder {
	t.Helper()

	w := s.do(t, http.MethodPost, "/api/v1/orders", models.RoleSales,
		gin.H{"customer_id": s.customer.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var order models.SalesOrder
	decode(t, w, &order)

	w = s.do(t, http.MethodPost, "/api/v1/orders/"+strconv.FormatInt(order.ID, 10)+"/items",
		models.RoleSales, gin.H{"product_id": s.product.ID, "quantity": quantity})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &order)
	return order
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReadyReportsFailedDependency(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewHandler(nil, nil, nil, nil, zap.NewNop()).
		WithReadinessCheck("redis", pingerFunc(func(context.Context) error { return errors.New("down") }))
	require.NoError(t, h.SetupRoutes(router))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "down")
}

func TestActorRequired(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/orders", models.Role("GUEST"), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOrderLifecycle(t *testing.T) {
	s := newTestServer(t)
	order := s.createOrder(t, 2)
	path := "/api/v1/orders/" + strconv.FormatInt(order.ID, 10)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Len(t, order.Items, 1)
	assert.True(t, decimal.RequireFromString("2400").Equal(order.TotalAmount))

	// Sales staff cannot confirm
	w := s.do(t, http.MethodPost, path+"/confirm", models.RoleSales, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, path+"/confirm", models.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &order)
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)

	w = s.do(t, http.MethodGet, "/api/v1/products/"+strconv.FormatInt(s.product.ID, 10), models.RoleSales, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var product models.Product
	decode(t, w, &product)
	assert.Equal(t, 0, product.StockQuantity)

	// Items are frozen once confirmed
	w = s.do(t, http.MethodPost, path+"/items", models.RoleSales,
		gin.H{"product_id": s.product.ID, "quantity": 1})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, path+"/cancel", models.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, path+"/cancel", models.RoleAdmin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	var body map[string]interface{}
	decode(t, w, &body)
	assert.Equal(t, "already_cancelled", body["code"])

	w = s.do(t, http.MethodGet, "/api/v1/stock-movements?order_id="+strconv.FormatInt(order.ID, 10), models.RoleSales, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var movements struct {
		Movements []models.StockMovement `json:"movements"`
	}
	decode(t, w, &movements)
	assert.Len(t, movements.Movements, 2)
}

func TestConfirmInsufficientStockBody(t *testing.T) {
	s := newTestServer(t)
	first := s.createOrder(t, 2)
	second := s.createOrder(t, 1)

	w := s.do(t, http.MethodPost, "/api/v1/orders/"+strconv.FormatInt(first.ID, 10)+"/confirm", models.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/orders/"+strconv.FormatInt(second.ID, 10)+"/confirm", models.RoleAdmin, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	var body map[string]interface{}
	decode(t, w, &body)
	assert.Equal(t, "insufficient_stock", body["code"])
	assert.Equal(t, "RING-001", body["sku"])
	assert.Equal(t, float64(0), body["available"])
	assert.Equal(t, float64(1), body["required"])
}

func TestConfirmEmptyOrder(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/orders", models.RoleSales, gin.H{"customer_id": s.customer.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	var order models.SalesOrder
	decode(t, w, &order)

	w = s.do(t, http.MethodPost, "/api/v1/orders/"+strconv.FormatInt(order.ID, 10)+"/confirm", models.RoleAdmin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "empty_order")
}

func TestCreateOrderIdempotencyHeader(t *testing.T) {
	s := newTestServer(t)

	send := func() models.SalesOrder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders",
			bytes.NewBufferString(`{"customer_id":`+strconv.FormatInt(s.customer.ID, 10)+`}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", "abc-123")
		req.Header.Set(actorIDHeader, "3")
		req.Header.Set(actorRoleHeader, "sales")

		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var order models.SalesOrder
		decode(t, w, &order)
		return order
	}

	first := send()
	second := send()
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.OrderNumber, second.OrderNumber)
}

func TestValidationAndNotFound(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/orders/abc", models.RoleSales, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/orders/999", models.RoleSales, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/orders", models.RoleSales, gin.H{"customer_id": 999})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/orders?status=shipped", models.RoleSales, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	order := s.createOrder(t, 1)
	w = s.do(t, http.MethodPost, "/api/v1/orders/"+strconv.FormatInt(order.ID, 10)+"/items",
		models.RoleSales, gin.H{"product_id": s.product.ID, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	input := gin.H{
		"sku":            "NECK-001",
		"name":           "Pearl Necklace",
		"category":       "Necklaces",
		"cost_price":     "300.00",
		"selling_price":  "450.00",
		"stock_quantity": 5,
	}

	w := s.do(t, http.MethodPost, "/api/v1/products", models.RoleSales, input)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/products", models.RoleAdmin, input)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var product models.Product
	decode(t, w, &product)

	w = s.do(t, http.MethodPost, "/api/v1/products", models.RoleAdmin, input)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/products/"+strconv.FormatInt(product.ID, 10)+"/adjustments",
		models.RoleAdmin, gin.H{"delta": -6})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/products/"+strconv.FormatInt(product.ID, 10)+"/adjustments",
		models.RoleAdmin, gin.H{"delta": 3})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/products?category=Necklaces", models.RoleSales, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Products []models.Product `json:"products"`
	}
	decode(t, w, &list)
	require.Len(t, list.Products, 1)
	assert.Equal(t, 8, list.Products[0].StockQuantity)
}

func TestCustomerRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/customers", models.RoleSales, gin.H{
		"customer_id": "JC002",
		"name":        "Michael Chen",
		"email":       "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/customers", models.RoleSales, gin.H{
		"customer_id": "JC002",
		"name":        "Michael Chen",
		"email":       "michael.chen@email.com",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var customer models.Customer
	decode(t, w, &customer)

	path := "/api/v1/customers/" + strconv.FormatInt(customer.ID, 10)
	w = s.do(t, http.MethodDelete, path, models.RoleSales, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodDelete, path, models.RoleAdmin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, path, models.RoleSales, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t)
	s.createOrder(t, 1)

	w := s.do(t, http.MethodGet, "/api/v1/dashboard", models.RoleSales, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var summary service.DashboardSummary
	decode(t, w, &summary)
	assert.Equal(t, 1, summary.TotalCustomers)
	assert.Equal(t, 1, summary.OrdersToday)
	assert.Equal(t, 1, summary.LowStockProducts)
	assert.Equal(t, 10, summary.Threshold)
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := memstore.New()
	events := broker.NopPublisher{}
	ledger := service.NewStockLedger(repo, events)

	router := gin.New()
	h := NewHandler(
		service.NewOrderService(repo, ledger, events),
		service.NewCatalogService(repo),
		ledger,
		service.NewDashboardService(repo, nil, 10, 0),
		zap.NewNop(),
	).WithRateLimit("2-M")
	require.NoError(t, h.SetupRoutes(router))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil)
		req.Header.Set(actorIDHeader, "1")
		req.Header.Set(actorRoleHeader, "SALES")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestInvalidRateLimit(t *testing.T) {
	h := NewHandler(nil, nil, nil, nil, zap.NewNop()).WithRateLimit("lots")
	assert.Error(t, h.SetupRoutes(gin.New()))
}
