package service

import (
	"context"
	"go-ticket-reservation/internal/model"
	"go-ticket-reservation/internal/payment"
	"go-ticket-reservation/internal/repository"
	apperrors "go-ticket-reservation/pkg/app_errors"
	"time"

	"github.com/google/uuid"
)

// CheckoutResult is what the client needs to hand the user to the provider's
// hosted payment page.
type CheckoutResult struct {
	CheckoutURL string    `json:"checkout_url"`
	SessionID   string    `json:"session_id"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// CheckoutService maps a pending reservation to an external payment session.
// It performs no inventory mutation; correctness lives in the reservation
// service, this is a thin mapping layer.
type CheckoutService interface {
	CreateCheckout(ctx context.Context, reservationID uuid.UUID, userID int64, successURL, cancelURL string) (*CheckoutResult, error)
}

type CheckoutServiceImpl struct {
	reservationRepository repository.ReservationRepository
	provider              payment.Provider
}

func NewCheckoutService(
	reservationRepository repository.ReservationRepository,
	provider payment.Provider,
) CheckoutService {
	return &CheckoutServiceImpl{
		reservationRepository: reservationRepository,
		provider:              provider,
	}
}

func (s *CheckoutServiceImpl) CreateCheckout(ctx context.Context, reservationID uuid.UUID, userID int64, successURL, cancelURL string) (*CheckoutResult, error) {
	reservation, err := s.reservationRepository.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	if reservation.UserID != userID {
		return nil, apperrors.ErrNotOwner
	}

	if reservation.Status != model.ReservationStatusPending ||
		reservation.IsExpiredAt(time.Now().UTC()) {
		return nil, apperrors.ErrReservationExpired
	}

	session, err := s.provider.CreateSession(ctx, payment.CreateSessionParams{
		ReferenceID: reservation.ID.String(),
		AmountCents: reservation.AmountCents,
		Quantity:    reservation.Quantity,
		SuccessURL:  successURL,
		CancelURL:   cancelURL,
		ExpiresAt:   reservation.ExpiresAt,
	})
	if err != nil {
		return nil, err
	}

	// A second checkout for the same reservation replaces the recorded
	// session. The settlement path resolves by session id, and a webhook
	// for the stale session lands on a reservation whose terminal-state
	// handling absorbs it, so there is never a second sold path.
	err = s.reservationRepository.SetCheckoutSession(ctx, reservation.ID, session.ID)
	if err != nil {
		return nil, err
	}

	return &CheckoutResult{
		CheckoutURL: session.CheckoutURL,
		SessionID:   session.ID,
		ExpiresAt:   session.ExpiresAt,
	}, nil
}
