package model

import (
	"time"

	"github.com/google/uuid"
)

type TicketStatus string

const (
	TicketStatusIssued  TicketStatus = "issued"
	TicketStatusRevoked TicketStatus = "revoked"
)

// Ticket 票券模型. Tickets are only ever created by consuming a reservation,
// so every ticket traces back to exactly one consumed reservation.
type Ticket struct {
	ID            uuid.UUID    `json:"id" db:"id"`
	ReservationID uuid.UUID    `json:"reservation_id" db:"reservation_id"`
	EventID       int64        `json:"event_id" db:"event_id"`
	UserID        int64        `json:"user_id" db:"user_id"`
	Token         string       `json:"token" db:"token"`
	Status        TicketStatus `json:"status" db:"status"`
	IssuedAt      time.Time    `json:"issued_at" db:"issued_at"`
}

// TicketResponse 票券響應
type TicketResponse struct {
	ID       string `json:"id"`
	EventID  int64  `json:"event_id"`
	Token    string `json:"token"`
	Status   string `json:"status"`
	IssuedAt string `json:"issued_at"`
}

func NewTicketResponse(t *Ticket) TicketResponse {
	return TicketResponse{
		ID:       t.ID.String(),
		EventID:  t.EventID,
		Token:    t.Token,
		Status:   string(t.Status),
		IssuedAt: t.IssuedAt.UTC().Format(time.RFC3339),
	}
}
