package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"jewelry-backoffice/internal/models"
	"jewelry-backoffice/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger reports whether a backing dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains HTTP handlers
type Handler struct {
	orderService     *service.OrderService
	catalogService   *service.CatalogService
	ledger           *service.StockLedger
	dashboardService *service.DashboardService
	checks           map[string]Pinger
	rateLimit        string
	logger           *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	orderService *service.OrderService,
	catalogService *service.CatalogService,
	ledger *service.StockLedger,
	dashboardService *service.DashboardService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		orderService:     orderService,
		catalogService:   catalogService,
		ledger:           ledger,
		dashboardService: dashboardService,
		checks:           make(map[string]Pinger),
		logger:           logger,
	}
}

// WithReadinessCheck adds a dependency probed by /ready
func (h *Handler) WithReadinessCheck(name string, p Pinger) *Handler {
	h.checks[name] = p
	return h
}

// WithRateLimit enables per-client rate limiting, e.g. "100-M"
func (h *Handler) WithRateLimit(rate string) *Handler {
	h.rateLimit = rate
	return h
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) error {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(requestLogger(h.logger))

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	if h.rateLimit != "" {
		limit, err := rateLimiter(h.rateLimit)
		if err != nil {
			return err
		}
		v1.Use(limit)
	}
	v1.Use(actorMiddleware())

	admin := requireRole(models.RoleAdmin)
	{
		v1.GET("/dashboard", h.getDashboard)

		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)
		v1.POST("/products", admin, h.createProduct)
		v1.PUT("/products/:id", admin, h.updateProduct)
		v1.DELETE("/products/:id", admin, h.deleteProduct)
		v1.POST("/products/:id/adjustments", admin, h.adjustStock)

		v1.GET("/customers", h.listCustomers)
		v1.GET("/customers/:id", h.getCustomer)
		v1.POST("/customers", h.createCustomer)
		v1.PUT("/customers/:id", admin, h.updateCustomer)
		v1.DELETE("/customers/:id", admin, h.deleteCustomer)

		v1.GET("/orders", h.listOrders)
		v1.GET("/orders/:id", h.getOrder)
		v1.POST("/orders", h.createOrder)
		v1.PUT("/orders/:id", admin, h.updateOrder)
		v1.DELETE("/orders/:id", admin, h.deleteOrder)
		v1.POST("/orders/:id/items", h.addItem)
		v1.DELETE("/orders/:id/items/:itemId", h.removeItem)
		v1.POST("/orders/:id/confirm", admin, h.confirmOrder)
		v1.POST("/orders/:id/cancel", admin, h.cancelOrder)

		v1.GET("/stock-movements", h.listMovements)
	}
	return nil
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck pings every registered dependency
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := gin.H{}
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unavailable",
			"details": failed,
			"time":    time.Now().Unix(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) getDashboard(c *gin.Context) {
	summary, err := h.dashboardService.Summary(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// pathID parses a positive int64 path parameter, writing a 400 on failure
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
			"code":  "validation",
		})
		return 0, false
	}
	return id, true
}

// queryID parses an optional positive int64 query parameter
func queryID(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
			"code":  "validation",
		})
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"code":    "validation",
			"details": err.Error(),
		})
		return false
	}
	return true
}
