package worker

import (
	"context"
	"go-ticket-reservation/internal/service"
	"go-ticket-reservation/pkg/logger"
	"time"

	"go.uber.org/zap"
)

// ReconciliationWorker runs the drift check on a schedule. Discrepancies are
// logged for operators; nothing is repaired automatically.
type ReconciliationWorker interface {
	Start(ctx context.Context)
}

type ReconciliationWorkerImpl struct {
	reconciliationService service.ReconciliationService
	interval              time.Duration
	lookback              time.Duration
}

func NewReconciliationWorker(reconciliationService service.ReconciliationService, interval, lookback time.Duration) ReconciliationWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	if lookback <= 0 {
		lookback = 24 * time.Hour
	}
	return &ReconciliationWorkerImpl{
		reconciliationService: reconciliationService,
		interval:              interval,
		lookback:              lookback,
	}
}

func (w *ReconciliationWorkerImpl) Start(ctx context.Context) {
	log := logger.WithComponent("reconciliation_worker")

	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				run, err := w.reconciliationService.ReconcileDue(ctx,
					time.Now().UTC().Add(-w.lookback))
				if err != nil {
					log.Error("reconciliation run failed", zap.Error(err))
					continue
				}

				log.Info("reconciliation run finished",
					zap.Int("reconciled", run.Reconciled),
					zap.Int("failed", run.Failed),
					zap.Int("with_discrepancies", len(run.Discrepancies)))
			}
		}
	}()
}
