package apperrors

import "errors"

var (
	ErrInventoryNotFound     = errors.New("inventory not found")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrInventoryConflict     = errors.New("inventory counters conflict")
	ErrReservationNotFound   = errors.New("reservation not found")
	ErrReservationExpired    = errors.New("reservation expired")
	ErrNotOwner              = errors.New("reservation belongs to another user")
	ErrInvalidInput          = errors.New("invalid input")
	ErrInternalServerError   = errors.New("internal server error")
)
