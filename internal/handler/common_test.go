package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"go-ticket-reservation/internal/model"
	"go-ticket-reservation/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

var InvalidJSON = `{"invalid": json}`

func init() {
	gin.SetMode(gin.TestMode)
}

// create JSON request body
func createJSONRequest(data interface{}) *bytes.Buffer {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return bytes.NewBuffer([]byte(""))
	}
	return bytes.NewBuffer(jsonData)
}

// create HTTP request with JSON body
func createJSONHTTPRequest(method, url string, data interface{}) *http.Request {
	req, err := http.NewRequest(method, url, createJSONRequest(data))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")
	return req
}

// performRequest serves one request, attaching the caller identity header
// unless userID is empty.
func performRequest(router *gin.Engine, req *http.Request, userID string) *httptest.ResponseRecorder {
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type ReservationServiceMock struct {
	mock.Mock
}

var _ service.ReservationService = (*ReservationServiceMock)(nil)

func (m *ReservationServiceMock) Reserve(ctx context.Context, params service.ReserveParams) (*model.Reservation, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *ReservationServiceMock) GetReservation(ctx context.Context, id uuid.UUID, userID int64) (*model.Reservation, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *ReservationServiceMock) ListReservations(ctx context.Context, userID int64) ([]*model.Reservation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Reservation), args.Error(1)
}

func (m *ReservationServiceMock) ListTickets(ctx context.Context, userID int64) ([]*model.Ticket, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Ticket), args.Error(1)
}

func (m *ReservationServiceMock) Consume(ctx context.Context, id uuid.UUID) ([]*model.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Ticket), args.Error(1)
}

func (m *ReservationServiceMock) Release(ctx context.Context, id uuid.UUID, toStatus model.ReservationStatus) error {
	args := m.Called(ctx, id, toStatus)
	return args.Error(0)
}

func (m *ReservationServiceMock) ExpireBatch(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *ReservationServiceMock) ConsumeTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) ([]*model.Ticket, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Ticket), args.Error(1)
}

func (m *ReservationServiceMock) ReleaseTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, toStatus model.ReservationStatus) error {
	args := m.Called(ctx, tx, id, toStatus)
	return args.Error(0)
}

type CheckoutServiceMock struct {
	mock.Mock
}

var _ service.CheckoutService = (*CheckoutServiceMock)(nil)

func (m *CheckoutServiceMock) CreateCheckout(ctx context.Context, reservationID uuid.UUID, userID int64, successURL, cancelURL string) (*service.CheckoutResult, error) {
	args := m.Called(ctx, reservationID, userID, successURL, cancelURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CheckoutResult), args.Error(1)
}

type SettlementServiceMock struct {
	mock.Mock
}

var _ service.SettlementService = (*SettlementServiceMock)(nil)

func (m *SettlementServiceMock) HandleEvent(ctx context.Context, provider string, body []byte) (string, error) {
	args := m.Called(ctx, provider, body)
	return args.String(0), args.Error(1)
}

type InventoryServiceMock struct {
	mock.Mock
}

var _ service.InventoryService = (*InventoryServiceMock)(nil)

func (m *InventoryServiceMock) Publish(ctx context.Context, req model.PublishInventoryRequest) (*model.EventInventory, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EventInventory), args.Error(1)
}

func (m *InventoryServiceMock) Availability(ctx context.Context, eventID int64, ticketType string) (*model.AvailabilityResponse, error) {
	args := m.Called(ctx, eventID, ticketType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AvailabilityResponse), args.Error(1)
}

type ReconciliationServiceMock struct {
	mock.Mock
}

var _ service.ReconciliationService = (*ReconciliationServiceMock)(nil)

func (m *ReconciliationServiceMock) ReconcileEvent(ctx context.Context, eventID int64) (*model.ReconciliationReport, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReconciliationReport), args.Error(1)
}

func (m *ReconciliationServiceMock) ReconcileDue(ctx context.Context, since time.Time) (*model.ReconciliationRunReport, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReconciliationRunReport), args.Error(1)
}

func (m *ReconciliationServiceMock) EventPayments(ctx context.Context, eventID int64) ([]*model.PaymentRecord, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PaymentRecord), args.Error(1)
}
