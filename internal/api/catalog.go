package api

import (
	"net/http"

	"jewelry-backoffice/internal/models"
	"jewelry-backoffice/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.catalogService.ListProducts(c.Request.Context(), models.ProductFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) getProduct(c *gin.Context) {
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), productID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) createProduct(c *gin.Context) {
	var input service.ProductInput
	if !bindJSON(c, &input) {
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), actorFrom(c), &input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) updateProduct(c *gin.Context) {
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input service.ProductInput
	if !bindJSON(c, &input) {
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), actorFrom(c), productID, &input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteProduct(c.Request.Context(), actorFrom(c), productID); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// adjustStock applies a manual stock correction through the ledger
func (h *Handler) adjustStock(c *gin.Context) {
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.AdjustStockRequest
	if !bindJSON(c, &req) {
		return
	}

	movement, err := h.ledger.Adjust(c.Request.Context(), actorFrom(c), productID, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, movement)
}

func (h *Handler) listMovements(c *gin.Context) {
	productID, ok := queryID(c, "product_id")
	if !ok {
		return
	}
	orderID, ok := queryID(c, "order_id")
	if !ok {
		return
	}

	movements, err := h.ledger.Movements(c.Request.Context(), models.MovementFilter{
		ProductID: productID,
		OrderID:   orderID,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"movements": movements})
}

func (h *Handler) listCustomers(c *gin.Context) {
	customers, err := h.catalogService.ListCustomers(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

func (h *Handler) getCustomer(c *gin.Context) {
	customerID, ok := pathID(c, "id")
	if !ok {
		return
	}

	customer, err := h.catalogService.GetCustomer(c.Request.Context(), customerID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *Handler) createCustomer(c *gin.Context) {
	var input service.CustomerInput
	if !bindJSON(c, &input) {
		return
	}

	customer, err := h.catalogService.CreateCustomer(c.Request.Context(), actorFrom(c), &input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (h *Handler) updateCustomer(c *gin.Context) {
	customerID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input service.CustomerInput
	if !bindJSON(c, &input) {
		return
	}

	customer, err := h.catalogService.UpdateCustomer(c.Request.Context(), actorFrom(c), customerID, &input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *Handler) deleteCustomer(c *gin.Context) {
	customerID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteCustomer(c.Request.Context(), actorFrom(c), customerID); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
