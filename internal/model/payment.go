package model

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// PaymentRecord is the settlement-side ledger entry, written in the same
// transaction as the ticket issuance it pays for. Amounts are integer cents.
type PaymentRecord struct {
	ID              int64         `json:"id" db:"id"`
	ExternalEventID string        `json:"external_event_id" db:"external_event_id"`
	SessionID       string        `json:"session_id" db:"session_id"`
	ReservationID   *uuid.UUID    `json:"reservation_id,omitempty" db:"reservation_id"`
	EventID         *int64        `json:"event_id,omitempty" db:"event_id"`
	AmountCents     int64         `json:"amount_cents" db:"amount_cents"`
	Status          PaymentStatus `json:"status" db:"status"`
	ReceivedAt      time.Time     `json:"received_at" db:"received_at"`
}
