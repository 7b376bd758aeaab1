package handler

import (
	"go-ticket-reservation/internal/model"
	"go-ticket-reservation/internal/service"
	apperrors "go-ticket-reservation/pkg/app_errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	inventoryService service.InventoryService
}

func NewInventoryHandler(inventoryService service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

func (h *InventoryHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("events", h.PublishInventory)
		router.GET("events/:id/availability", h.GetAvailability)
	}
}

// PublishInventory creates the inventory row when an event goes live. It is
// called by the (external) event management side, not by ticket buyers.
func (h *InventoryHandler) PublishInventory(c *gin.Context) {
	var req model.PublishInventoryRequest

	if err := BindJson(c, &req); err != nil {
		return
	}

	inv, err := h.inventoryService.Publish(c, req)
	if err != nil {
		handleError(c, err, "PublishInventory")
		return
	}

	c.JSON(http.StatusCreated, inv)
}

type availabilityQuery struct {
	TicketType string `form:"ticket_type"`
}

func (h *InventoryHandler) GetAvailability(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		handleError(c, apperrors.ErrInvalidInput, "GetAvailability")
		return
	}

	var query availabilityQuery
	if err := BindQuery(c, &query); err != nil {
		return
	}

	availability, err := h.inventoryService.Availability(c, eventID, query.TicketType)
	if err != nil {
		handleError(c, err, "GetAvailability")
		return
	}

	c.JSON(http.StatusOK, availability)
}
