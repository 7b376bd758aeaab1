package handler

import (
	"net/http"
	"testing"
	"time"

	"go-ticket-reservation/internal/model"
	"go-ticket-reservation/internal/service"
	apperrors "go-ticket-reservation/pkg/app_errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupReservationTestRouter(reservationMock *ReservationServiceMock, checkoutMock *CheckoutServiceMock) *gin.Engine {
	router := gin.New()
	NewReservationHandler(reservationMock, checkoutMock).RegisterRoutes(router)
	return router
}

func pendingTestReservation(userID int64) *model.Reservation {
	return &model.Reservation{
		ID:          uuid.New(),
		InventoryID: 1,
		EventID:     100,
		UserID:      userID,
		Quantity:    2,
		Status:      model.ReservationStatusPending,
		AmountCents: 5000,
		ExpiresAt:   time.Now().UTC().Add(10 * time.Minute),
	}
}

func TestCreateReservation(t *testing.T) {
	createRequest := model.CreateReservationRequest{EventID: 100, Quantity: 2}

	t.Run("Success", func(t *testing.T) {
		reservationMock := new(ReservationServiceMock)
		router := setupReservationTestRouter(reservationMock, new(CheckoutServiceMock))

		reservationMock.On("Reserve", mock.Anything, mock.Anything).
			Return(pendingTestReservation(1), nil).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/reservations", createRequest)
		w := performRequest(router, req, "1")

		assert.Equal(t, http.StatusCreated, w.Code)
		reservationMock.AssertExpectations(t)
	})

	t.Run("Failed - ErrInsufficientInventory", func(t *testing.T) {
		reservationMock := new(ReservationServiceMock)
		router := setupReservationTestRouter(reservationMock, new(CheckoutServiceMock))

		reservationMock.On("Reserve", mock.Anything, mock.Anything).
			Return(nil, apperrors.ErrInsufficientInventory).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/reservations", createRequest)
		w := performRequest(router, req, "1")

		assert.Equal(t, http.StatusConflict, w.Code)
		reservationMock.AssertExpectations(t)
	})

	t.Run("Failed - BindingError", func(t *testing.T) {
		reservationMock := new(ReservationServiceMock)
		router := setupReservationTestRouter(reservationMock, new(CheckoutServiceMock))

		req := createJSONHTTPRequest("POST", "/api/v1/reservations", InvalidJSON)
		w := performRequest(router, req, "1")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		reservationMock.AssertNotCalled(t, "Reserve")
	})

	t.Run("Failed - MissingIdentity", func(t *testing.T) {
		reservationMock := new(ReservationServiceMock)
		router := setupReservationTestRouter(reservationMock, new(CheckoutServiceMock))

		req := createJSONHTTPRequest("POST", "/api/v1/reservations", createRequest)
		w := performRequest(router, req, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		reservationMock.AssertNotCalled(t, "Reserve")
	})
}

func TestGetReservation(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		reservationMock := new(ReservationServiceMock)
		router := setupReservationTestRouter(reservationMock, new(CheckoutServiceMock))

		reservation := pendingTestReservation(1)
		reservationMock.On("GetReservation", mock.Anything, reservation.ID, int64(1)).
			Return(reservation, nil).Once()

		req, _ := http.NewRequest("GET", "/api/v1/reservations/"+reservation.ID.String(), nil)
		w := performRequest(router, req, "1")

		assert.Equal(t, http.StatusOK, w.Code)
		reservationMock.AssertExpectations(t)
	})

	t.Run("NotOwner", func(t *testing.T) {
		reservationMock := new(ReservationServiceMock)
		router := setupReservationTestRouter(reservationMock, new(CheckoutServiceMock))

		id := uuid.New()
		reservationMock.On("GetReservation", mock.Anything, id, int64(2)).
			Return(nil, apperrors.ErrNotOwner).Once()

		req, _ := http.NewRequest("GET", "/api/v1/reservations/"+id.String(), nil)
		w := performRequest(router, req, "2")

		assert.Equal(t, http.StatusForbidden, w.Code)
		reservationMock.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		reservationMock := new(ReservationServiceMock)
		router := setupReservationTestRouter(reservationMock, new(CheckoutServiceMock))

		id := uuid.New()
		reservationMock.On("GetReservation", mock.Anything, id, int64(1)).
			Return(nil, apperrors.ErrReservationNotFound).Once()

		req, _ := http.NewRequest("GET", "/api/v1/reservations/"+id.String(), nil)
		w := performRequest(router, req, "1")

		assert.Equal(t, http.StatusNotFound, w.Code)
		reservationMock.AssertExpectations(t)
	})

	t.Run("InvalidID", func(t *testing.T) {
		reservationMock := new(ReservationServiceMock)
		router := setupReservationTestRouter(reservationMock, new(CheckoutServiceMock))

		req, _ := http.NewRequest("GET", "/api/v1/reservations/not-a-uuid", nil)
		w := performRequest(router, req, "1")

		assert.Equal(t, http.StatusNotFound, w.Code)
		reservationMock.AssertNotCalled(t, "GetReservation")
	})
}

func TestCreateCheckoutRoute(t *testing.T) {
	checkoutRequest := map[string]string{
		"success_url": "https://app.example.com/success",
		"cancel_url":  "https://app.example.com/cancel",
	}

	t.Run("Success", func(t *testing.T) {
		checkoutMock := new(CheckoutServiceMock)
		router := setupReservationTestRouter(new(ReservationServiceMock), checkoutMock)

		id := uuid.New()
		checkoutMock.On("CreateCheckout", mock.Anything, id, int64(1),
			"https://app.example.com/success", "https://app.example.com/cancel").
			Return(&service.CheckoutResult{
				CheckoutURL: "https://pay.example.com/c/cs_1",
				SessionID:   "cs_1",
				ExpiresAt:   time.Now().UTC().Add(10 * time.Minute),
			}, nil).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/reservations/"+id.String()+"/checkout", checkoutRequest)
		w := performRequest(router, req, "1")

		assert.Equal(t, http.StatusOK, w.Code)
		checkoutMock.AssertExpectations(t)
	})

	t.Run("Failed - ReservationExpired", func(t *testing.T) {
		checkoutMock := new(CheckoutServiceMock)
		router := setupReservationTestRouter(new(ReservationServiceMock), checkoutMock)

		id := uuid.New()
		checkoutMock.On("CreateCheckout", mock.Anything, id, int64(1),
			mock.Anything, mock.Anything).
			Return(nil, apperrors.ErrReservationExpired).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/reservations/"+id.String()+"/checkout", checkoutRequest)
		w := performRequest(router, req, "1")

		assert.Equal(t, http.StatusGone, w.Code)
		checkoutMock.AssertExpectations(t)
	})

	t.Run("Failed - MissingURLs", func(t *testing.T) {
		checkoutMock := new(CheckoutServiceMock)
		router := setupReservationTestRouter(new(ReservationServiceMock), checkoutMock)

		req := createJSONHTTPRequest("POST", "/api/v1/reservations/"+uuid.NewString()+"/checkout",
			map[string]string{})
		w := performRequest(router, req, "1")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		checkoutMock.AssertNotCalled(t, "CreateCheckout")
	})
}

func TestReleaseReservationRoute(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		reservationMock := new(ReservationServiceMock)
		router := setupReservationTestRouter(reservationMock, new(CheckoutServiceMock))

		reservation := pendingTestReservation(1)
		reservationMock.On("GetReservation", mock.Anything, reservation.ID, int64(1)).
			Return(reservation, nil).Once()
		reservationMock.On("Release", mock.Anything, reservation.ID, model.ReservationStatusCancelled).
			Return(nil).Once()

		req, _ := http.NewRequest("POST", "/api/v1/reservations/"+reservation.ID.String()+"/release", nil)
		w := performRequest(router, req, "1")

		assert.Equal(t, http.StatusOK, w.Code)
		reservationMock.AssertExpectations(t)
	})

	t.Run("NotOwner", func(t *testing.T) {
		reservationMock := new(ReservationServiceMock)
		router := setupReservationTestRouter(reservationMock, new(CheckoutServiceMock))

		id := uuid.New()
		reservationMock.On("GetReservation", mock.Anything, id, int64(2)).
			Return(nil, apperrors.ErrNotOwner).Once()

		req, _ := http.NewRequest("POST", "/api/v1/reservations/"+id.String()+"/release", nil)
		w := performRequest(router, req, "2")

		assert.Equal(t, http.StatusForbidden, w.Code)
		reservationMock.AssertNotCalled(t, "Release")
	})
}

func TestListRoutes(t *testing.T) {
	t.Run("Reservations", func(t *testing.T) {
		reservationMock := new(ReservationServiceMock)
		router := setupReservationTestRouter(reservationMock, new(CheckoutServiceMock))

		reservationMock.On("ListReservations", mock.Anything, int64(1)).
			Return([]*model.Reservation{pendingTestReservation(1)}, nil).Once()

		req, _ := http.NewRequest("GET", "/api/v1/reservations", nil)
		w := performRequest(router, req, "1")

		assert.Equal(t, http.StatusOK, w.Code)
		reservationMock.AssertExpectations(t)
	})

	t.Run("Tickets", func(t *testing.T) {
		reservationMock := new(ReservationServiceMock)
		router := setupReservationTestRouter(reservationMock, new(CheckoutServiceMock))

		reservationMock.On("ListTickets", mock.Anything, int64(1)).
			Return([]*model.Ticket{}, nil).Once()

		req, _ := http.NewRequest("GET", "/api/v1/tickets", nil)
		w := performRequest(router, req, "1")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
		reservationMock.AssertExpectations(t)
	})
}
