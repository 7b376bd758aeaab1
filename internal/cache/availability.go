package cache

import (
	"context"
	"fmt"
	apperrors "go-ticket-reservation/pkg/app_errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// AvailabilitySnapshot is the cached "only N left" view. The database row is
// authoritative; this cache is best effort and may lag by one refresh.
type AvailabilitySnapshot struct {
	Available  int
	PriceCents int64
}

type AvailabilityCache interface {
	// Refresh overwrites the snapshot for one inventory row.
	Refresh(ctx context.Context, eventID int64, ticketType string, available int, priceCents int64) error
	// Get returns the snapshot, or ErrInventoryNotFound on a miss.
	Get(ctx context.Context, eventID int64, ticketType string) (AvailabilitySnapshot, error)
	// Invalidate drops the snapshot so the next read falls through to the DB.
	Invalidate(ctx context.Context, eventID int64, ticketType string) error
}

type AvailabilityCacheImpl struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAvailabilityCache(client *redis.Client) AvailabilityCache {
	return &AvailabilityCacheImpl{
		client: client,
		ttl:    30 * time.Second,
	}
}

func (c *AvailabilityCacheImpl) key(eventID int64, ticketType string) string {
	return fmt.Sprintf("inventory:%d:%s:availability", eventID, ticketType)
}

func (c *AvailabilityCacheImpl) Refresh(ctx context.Context, eventID int64, ticketType string, available int, priceCents int64) error {
	key := c.key(eventID, ticketType)

	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"available":   available,
		"price_cents": priceCents,
	})
	pipe.Expire(ctx, key, c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *AvailabilityCacheImpl) Get(ctx context.Context, eventID int64, ticketType string) (AvailabilitySnapshot, error) {
	key := c.key(eventID, ticketType)

	result, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return AvailabilitySnapshot{}, err
	}

	if len(result) == 0 {
		return AvailabilitySnapshot{}, apperrors.ErrInventoryNotFound
	}

	available, err := strconv.Atoi(result["available"])
	if err != nil {
		return AvailabilitySnapshot{}, fmt.Errorf("invalid available: %v", err)
	}

	priceCents, err := strconv.ParseInt(result["price_cents"], 10, 64)
	if err != nil {
		return AvailabilitySnapshot{}, fmt.Errorf("invalid price_cents: %v", err)
	}

	return AvailabilitySnapshot{
		Available:  available,
		PriceCents: priceCents,
	}, nil
}

func (c *AvailabilityCacheImpl) Invalidate(ctx context.Context, eventID int64, ticketType string) error {
	return c.client.Del(ctx, c.key(eventID, ticketType)).Err()
}
