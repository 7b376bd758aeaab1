package model

import "time"

// EventInventory is the single source of truth for availability. One row per
// (event, ticket type); reserved_count + sold_count never exceeds
// total_capacity, enforced both here and by a CHECK constraint.
type EventInventory struct {
	ID            int64     `json:"id" db:"id"`
	EventID       int64     `json:"event_id" db:"event_id"`
	TicketType    string    `json:"ticket_type" db:"ticket_type"`
	PriceCents    int64     `json:"price_cents" db:"price_cents"`
	TotalCapacity int       `json:"total_capacity" db:"total_capacity"`
	ReservedCount int       `json:"reserved_count" db:"reserved_count"`
	SoldCount     int       `json:"sold_count" db:"sold_count"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Available is the quantity still open to new reservations.
func (i *EventInventory) Available() int {
	return i.TotalCapacity - i.ReservedCount - i.SoldCount
}

// PublishInventoryRequest creates an inventory row when an event goes live.
type PublishInventoryRequest struct {
	EventID       int64  `json:"event_id" binding:"required"`
	TicketType    string `json:"ticket_type"`
	PriceCents    int64  `json:"price_cents" binding:"min=0"`
	TotalCapacity int    `json:"total_capacity" binding:"required,min=0"`
}

// AvailabilityResponse is the public "only N left" view.
type AvailabilityResponse struct {
	EventID    int64  `json:"event_id"`
	TicketType string `json:"ticket_type"`
	Available  int    `json:"available"`
	PriceCents int64  `json:"price_cents"`
}
