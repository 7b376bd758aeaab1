package worker

import (
	"context"
	"go-ticket-reservation/internal/service"
	"go-ticket-reservation/pkg/logger"
	"time"

	"go.uber.org/zap"
)

// ExpirationSweeper periodically reclaims inventory from reservations past
// their deadline. The underlying batch uses skip-locked selection, so a
// sweep never adds latency to live checkout traffic; running several
// replicas concurrently is safe for the same reason.
type ExpirationSweeper interface {
	Start(ctx context.Context)
}

type ExpirationSweeperImpl struct {
	reservationService service.ReservationService
	interval           time.Duration
	batchSize          int
}

func NewExpirationSweeper(reservationService service.ReservationService, interval time.Duration, batchSize int) ExpirationSweeper {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &ExpirationSweeperImpl{
		reservationService: reservationService,
		interval:           interval,
		batchSize:          batchSize,
	}
}

func (w *ExpirationSweeperImpl) Start(ctx context.Context) {
	log := logger.WithComponent("expiration_sweeper")

	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.sweep(ctx, log)
			}
		}
	}()
}

func (w *ExpirationSweeperImpl) sweep(ctx context.Context, log *zap.Logger) {
	total := 0
	for {
		released, err := w.reservationService.ExpireBatch(ctx, time.Now().UTC())
		if err != nil {
			log.Error("expiration sweep failed", zap.Error(err))
			return
		}
		total += released
		// A short batch means the backlog is drained.
		if released < w.batchSize {
			break
		}
	}

	if total > 0 {
		log.Info("released expired reservations", zap.Int("count", total))
	}
}
