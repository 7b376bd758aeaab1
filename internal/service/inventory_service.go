package service

import (
	"context"
	"go-ticket-reservation/internal/cache"
	"go-ticket-reservation/internal/model"
	"go-ticket-reservation/internal/repository"
	apperrors "go-ticket-reservation/pkg/app_errors"
)

// InventoryService publishes inventory rows and serves the availability read
// path. All counter mutation goes through the reservation service.
type InventoryService interface {
	Publish(ctx context.Context, req model.PublishInventoryRequest) (*model.EventInventory, error)
	Availability(ctx context.Context, eventID int64, ticketType string) (*model.AvailabilityResponse, error)
}

type InventoryServiceImpl struct {
	inventoryRepository repository.InventoryRepository
	availabilityCache   cache.AvailabilityCache
}

func NewInventoryService(
	inventoryRepository repository.InventoryRepository,
	availabilityCache cache.AvailabilityCache,
) InventoryService {
	return &InventoryServiceImpl{
		inventoryRepository: inventoryRepository,
		availabilityCache:   availabilityCache,
	}
}

func (s *InventoryServiceImpl) Publish(ctx context.Context, req model.PublishInventoryRequest) (*model.EventInventory, error) {
	if req.TotalCapacity < 0 || req.PriceCents < 0 {
		return nil, apperrors.ErrInvalidInput
	}

	inv, err := s.inventoryRepository.Create(ctx, &model.EventInventory{
		EventID:       req.EventID,
		TicketType:    req.TicketType,
		PriceCents:    req.PriceCents,
		TotalCapacity: req.TotalCapacity,
	})
	if err != nil {
		return nil, err
	}

	if s.availabilityCache != nil {
		// Seed the read path; failures here only cost a cache miss.
		_ = s.availabilityCache.Refresh(ctx, inv.EventID, inv.TicketType,
			inv.Available(), inv.PriceCents)
	}

	return inv, nil
}

func (s *InventoryServiceImpl) Availability(ctx context.Context, eventID int64, ticketType string) (*model.AvailabilityResponse, error) {
	if s.availabilityCache != nil {
		snapshot, err := s.availabilityCache.Get(ctx, eventID, ticketType)
		if err == nil {
			return &model.AvailabilityResponse{
				EventID:    eventID,
				TicketType: ticketType,
				Available:  snapshot.Available,
				PriceCents: snapshot.PriceCents,
			}, nil
		}
		// A miss or redis trouble both fall through to the
		// authoritative row.
	}

	inv, err := s.inventoryRepository.FindByEventAndType(ctx, eventID, ticketType)
	if err != nil {
		return nil, err
	}

	if s.availabilityCache != nil {
		_ = s.availabilityCache.Refresh(ctx, inv.EventID, inv.TicketType,
			inv.Available(), inv.PriceCents)
	}

	return &model.AvailabilityResponse{
		EventID:    inv.EventID,
		TicketType: inv.TicketType,
		Available:  inv.Available(),
		PriceCents: inv.PriceCents,
	}, nil
}
