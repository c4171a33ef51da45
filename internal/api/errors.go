package api

import (
	"errors"
	"net/http"

	"jewelry-backoffice/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeError maps a service error onto a status code and JSON body
func (h *Handler) writeError(c *gin.Context, err error) {
	var stockErr *models.InsufficientStockError
	if errors.As(err, &stockErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error":      "Insufficient stock",
			"code":       "insufficient_stock",
			"details":    err.Error(),
			"product_id": stockErr.ProductID,
			"sku":        stockErr.SKU,
			"available":  stockErr.Available,
			"required":   stockErr.Required,
		})
		return
	}

	status, code, message := classify(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(status, gin.H{
			"error": message,
			"code":  code,
		})
		return
	}

	c.JSON(status, gin.H{
		"error":   message,
		"code":    code,
		"details": err.Error(),
	})
}

func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest, "validation", "Invalid request"
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "not_found", "Not found"
	case errors.Is(err, models.ErrInvalidState):
		return http.StatusConflict, "invalid_state", "Operation not allowed in current order status"
	case errors.Is(err, models.ErrEmptyOrder):
		return http.StatusConflict, "empty_order", "Order has no items"
	case errors.Is(err, models.ErrAlreadyCancelled):
		return http.StatusConflict, "already_cancelled", "Order already cancelled"
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict, "conflict", "Conflict"
	default:
		return http.StatusInternalServerError, "internal", "Internal server error"
	}
}
