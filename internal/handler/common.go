package handler

import (
	"errors"
	apperrors "go-ticket-reservation/pkg/app_errors"
	"go-ticket-reservation/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func BindJson(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

func BindQuery(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindQuery(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

// handleError maps the service error taxonomy to HTTP responses. Inventory
// and reservation errors surface synchronously so the user gets immediate
// feedback; anything unexpected becomes an opaque 500.
func handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid input",
		})
	case errors.Is(err, apperrors.ErrInsufficientInventory):
		log.Warn("Insufficient inventory")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Insufficient inventory",
		})
	case errors.Is(err, apperrors.ErrInventoryNotFound):
		log.Warn("Inventory not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Inventory not found",
		})
	case errors.Is(err, apperrors.ErrReservationNotFound):
		log.Warn("Reservation not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Reservation not found",
		})
	case errors.Is(err, apperrors.ErrReservationExpired):
		log.Warn("Reservation expired")
		c.JSON(http.StatusGone, gin.H{
			"error": "Reservation expired, please reserve again",
		})
	case errors.Is(err, apperrors.ErrNotOwner):
		log.Warn("Not the reservation owner")
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Forbidden",
		})
	case errors.Is(err, apperrors.ErrInventoryConflict):
		// Counter drift between ledgers; loud log, opaque response.
		log.Error("Inventory counters conflict")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
