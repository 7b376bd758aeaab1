package handler

import (
	"go-ticket-reservation/internal/middleware"
	"go-ticket-reservation/internal/model"
	"go-ticket-reservation/internal/service"
	apperrors "go-ticket-reservation/pkg/app_errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReservationHandler struct {
	reservationService service.ReservationService
	checkoutService    service.CheckoutService
}

func NewReservationHandler(
	reservationService service.ReservationService,
	checkoutService service.CheckoutService,
) *ReservationHandler {
	return &ReservationHandler{
		reservationService: reservationService,
		checkoutService:    checkoutService,
	}
}

func (h *ReservationHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1", middleware.Identity())
	{
		router.POST("reservations", h.CreateReservation)
		router.GET("reservations", h.ListReservations)
		router.GET("reservations/:id", h.GetReservation)
		router.POST("reservations/:id/checkout", h.CreateCheckout)
		router.POST("reservations/:id/release", h.ReleaseReservation)
		router.GET("tickets", h.ListTickets)
	}
}

func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	var req model.CreateReservationRequest

	if err := BindJson(c, &req); err != nil {
		return
	}

	reservation, err := h.reservationService.Reserve(c, service.ReserveParams{
		EventID:    req.EventID,
		TicketType: req.TicketType,
		UserID:     middleware.UserID(c),
		Quantity:   req.Quantity,
		TTL:        time.Duration(req.TTLMinutes) * time.Minute,
	})
	if err != nil {
		handleError(c, err, "CreateReservation")
		return
	}

	c.JSON(http.StatusCreated, model.NewReservationResponse(reservation))
}

func (h *ReservationHandler) GetReservation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handleError(c, apperrors.ErrReservationNotFound, "GetReservation")
		return
	}

	reservation, err := h.reservationService.GetReservation(c, id, middleware.UserID(c))
	if err != nil {
		handleError(c, err, "GetReservation")
		return
	}

	c.JSON(http.StatusOK, model.NewReservationResponse(reservation))
}

func (h *ReservationHandler) ListReservations(c *gin.Context) {
	reservations, err := h.reservationService.ListReservations(c, middleware.UserID(c))
	if err != nil {
		handleError(c, err, "ListReservations")
		return
	}

	responses := make([]model.ReservationResponse, 0, len(reservations))
	for _, reservation := range reservations {
		responses = append(responses, model.NewReservationResponse(reservation))
	}

	c.JSON(http.StatusOK, responses)
}

func (h *ReservationHandler) ListTickets(c *gin.Context) {
	tickets, err := h.reservationService.ListTickets(c, middleware.UserID(c))
	if err != nil {
		handleError(c, err, "ListTickets")
		return
	}

	responses := make([]model.TicketResponse, 0, len(tickets))
	for _, ticket := range tickets {
		responses = append(responses, model.NewTicketResponse(ticket))
	}

	c.JSON(http.StatusOK, responses)
}

type createCheckoutRequest struct {
	SuccessURL string `json:"success_url" binding:"required,url"`
	CancelURL  string `json:"cancel_url" binding:"required,url"`
}

func (h *ReservationHandler) CreateCheckout(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handleError(c, apperrors.ErrReservationNotFound, "CreateCheckout")
		return
	}

	var req createCheckoutRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	result, err := h.checkoutService.CreateCheckout(c, id, middleware.UserID(c), req.SuccessURL, req.CancelURL)
	if err != nil {
		handleError(c, err, "CreateCheckout")
		return
	}

	c.JSON(http.StatusOK, result)
}

// ReleaseReservation is the explicit user cancel. It is idempotent: a
// reservation that already reached a terminal state answers 200 as well.
func (h *ReservationHandler) ReleaseReservation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handleError(c, apperrors.ErrReservationNotFound, "ReleaseReservation")
		return
	}

	// Ownership check before the mutation; the service itself is shared
	// with system callers that bypass it.
	if _, err := h.reservationService.GetReservation(c, id, middleware.UserID(c)); err != nil {
		handleError(c, err, "ReleaseReservation")
		return
	}

	err = h.reservationService.Release(c, id, model.ReservationStatusCancelled)
	if err != nil {
		handleError(c, err, "ReleaseReservation")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "released"})
}
