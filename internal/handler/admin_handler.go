package handler

import (
	"go-ticket-reservation/internal/service"
	apperrors "go-ticket-reservation/pkg/app_errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// AdminHandler exposes the operational surface: on-demand reconciliation and
// a manual sweep trigger. Routing is expected to sit behind the gateway's
// operator policy; there is no user identity on these endpoints.
type AdminHandler struct {
	reconciliationService service.ReconciliationService
	reservationService    service.ReservationService
}

func NewAdminHandler(
	reconciliationService service.ReconciliationService,
	reservationService service.ReservationService,
) *AdminHandler {
	return &AdminHandler{
		reconciliationService: reconciliationService,
		reservationService:    reservationService,
	}
}

func (h *AdminHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1/admin")
	{
		router.POST("reconcile/events/:id", h.ReconcileEvent)
		router.POST("reconcile/run", h.ReconcileDue)
		router.GET("events/:id/payments", h.ListEventPayments)
		router.POST("sweep", h.Sweep)
	}
}

func (h *AdminHandler) ReconcileEvent(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		handleError(c, apperrors.ErrInvalidInput, "ReconcileEvent")
		return
	}

	report, err := h.reconciliationService.ReconcileEvent(c, eventID)
	if err != nil {
		handleError(c, err, "ReconcileEvent")
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *AdminHandler) ReconcileDue(c *gin.Context) {
	hoursAgo := 24
	if raw := c.Query("hours_ago"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			handleError(c, apperrors.ErrInvalidInput, "ReconcileDue")
			return
		}
		hoursAgo = parsed
	}

	run, err := h.reconciliationService.ReconcileDue(c,
		time.Now().UTC().Add(-time.Duration(hoursAgo)*time.Hour))
	if err != nil {
		handleError(c, err, "ReconcileDue")
		return
	}

	c.JSON(http.StatusOK, run)
}

func (h *AdminHandler) ListEventPayments(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		handleError(c, apperrors.ErrInvalidInput, "ListEventPayments")
		return
	}

	payments, err := h.reconciliationService.EventPayments(c, eventID)
	if err != nil {
		handleError(c, err, "ListEventPayments")
		return
	}

	c.JSON(http.StatusOK, payments)
}

func (h *AdminHandler) Sweep(c *gin.Context) {
	released, err := h.reservationService.ExpireBatch(c, time.Now().UTC())
	if err != nil {
		handleError(c, err, "Sweep")
		return
	}

	c.JSON(http.StatusOK, gin.H{"released": released})
}
