package model

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus 預約狀態類型. pending is the only live state, the rest
// are terminal.
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConsumed  ReservationStatus = "consumed"
	ReservationStatusExpired   ReservationStatus = "expired"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// IsValid reports whether the status is a known value.
func (s ReservationStatus) IsValid() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusConsumed,
		ReservationStatusExpired, ReservationStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationStatusConsumed ||
		s == ReservationStatusExpired ||
		s == ReservationStatusCancelled
}

// CanTransitionTo checks a single-step transition. Terminal states absorb
// everything: duplicate and out-of-order signals land as no-ops, not errors.
func (s ReservationStatus) CanTransitionTo(target ReservationStatus) bool {
	if s != ReservationStatusPending {
		return false
	}
	return target.IsValid() && target != ReservationStatusPending
}

// Reservation is a time-boxed claim on event inventory, owned by one user.
// It transitions exactly once out of pending and is immutable afterwards.
type Reservation struct {
	ID                uuid.UUID         `json:"id" db:"id"`
	InventoryID       int64             `json:"inventory_id" db:"inventory_id"`
	EventID           int64             `json:"event_id" db:"event_id"`
	UserID            int64             `json:"user_id" db:"user_id"`
	Quantity          int               `json:"quantity" db:"quantity"`
	Status            ReservationStatus `json:"status" db:"status"`
	AmountCents       int64             `json:"amount_cents" db:"amount_cents"`
	CheckoutSessionID *string           `json:"checkout_session_id,omitempty" db:"checkout_session_id"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
	ExpiresAt         time.Time         `json:"expires_at" db:"expires_at"`
	ConsumedAt        *time.Time        `json:"consumed_at,omitempty" db:"consumed_at"`
}

// IsExpiredAt reports whether the deadline has passed. Expiry is enforced
// lazily at Consume time as well as by the sweeper.
func (r *Reservation) IsExpiredAt(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// CreateReservationRequest 建立預約請求
type CreateReservationRequest struct {
	EventID    int64  `json:"event_id" binding:"required"`
	TicketType string `json:"ticket_type"`
	Quantity   int    `json:"quantity" binding:"required,min=1"`
	TTLMinutes int    `json:"ttl_minutes" binding:"omitempty,min=1"`
}

// ReservationResponse is returned to the holder.
type ReservationResponse struct {
	ReservationID string `json:"reservation_id"`
	EventID       int64  `json:"event_id"`
	Quantity      int    `json:"quantity"`
	AmountCents   int64  `json:"amount_cents"`
	Status        string `json:"status"`
	ExpiresAt     string `json:"expires_at"`
}

// NewReservationResponse formats timestamps the way the API promises them.
func NewReservationResponse(r *Reservation) ReservationResponse {
	return ReservationResponse{
		ReservationID: r.ID.String(),
		EventID:       r.EventID,
		Quantity:      r.Quantity,
		AmountCents:   r.AmountCents,
		Status:        string(r.Status),
		ExpiresAt:     r.ExpiresAt.UTC().Format(time.RFC3339),
	}
}
