package service

import (
	"context"
	"fmt"
	"go-ticket-reservation/internal/model"
	"go-ticket-reservation/internal/repository"
	"go-ticket-reservation/pkg/logger"
	"time"

	"go.uber.org/zap"
)

// ReconciliationService compares the issued-ticket, inventory counter and
// payment ledgers and reports drift between them. It is strictly read-only:
// repair is a separate, audited operation that this service does not provide.
type ReconciliationService interface {
	ReconcileEvent(ctx context.Context, eventID int64) (*model.ReconciliationReport, error)
	ReconcileDue(ctx context.Context, since time.Time) (*model.ReconciliationRunReport, error)
	EventPayments(ctx context.Context, eventID int64) ([]*model.PaymentRecord, error)
}

type ReconciliationServiceImpl struct {
	inventoryRepository   repository.InventoryRepository
	reservationRepository repository.ReservationRepository
	ticketRepository      repository.TicketRepository
	paymentRepository     repository.PaymentRepository
}

func NewReconciliationService(
	inventoryRepository repository.InventoryRepository,
	reservationRepository repository.ReservationRepository,
	ticketRepository repository.TicketRepository,
	paymentRepository repository.PaymentRepository,
) ReconciliationService {
	return &ReconciliationServiceImpl{
		inventoryRepository:   inventoryRepository,
		reservationRepository: reservationRepository,
		ticketRepository:      ticketRepository,
		paymentRepository:     paymentRepository,
	}
}

// EventPayments lists the raw payment rows for one event, succeeded and
// failed alike, for an operator chasing a reported discrepancy.
func (s *ReconciliationServiceImpl) EventPayments(ctx context.Context, eventID int64) ([]*model.PaymentRecord, error) {
	return s.paymentRepository.ListByEvent(ctx, eventID)
}

func (s *ReconciliationServiceImpl) ReconcileEvent(ctx context.Context, eventID int64) (*model.ReconciliationReport, error) {
	report := &model.ReconciliationReport{
		EventID:     eventID,
		GeneratedAt: time.Now().UTC(),
		Issues:      make([]model.ReconciliationIssue, 0),
	}

	inventories, err := s.inventoryRepository.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	soldTotal := 0
	for _, inv := range inventories {
		soldTotal += inv.SoldCount
	}

	ticketCount, err := s.ticketRepository.CountByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if ticketCount != soldTotal {
		report.Issues = append(report.Issues, model.ReconciliationIssue{
			CheckType: model.ReconCheckTicketCount,
			Expected:  int64(soldTotal),
			Actual:    int64(ticketCount),
			Details: fmt.Sprintf("inventory records %d sold but %d tickets are issued",
				soldTotal, ticketCount),
		})
	}

	consumedCount, consumedAmountCents, err := s.reservationRepository.ConsumedStatsByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	paymentCount, paidAmountCents, err := s.paymentRepository.SucceededStatsByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if paymentCount != consumedCount {
		report.Issues = append(report.Issues, model.ReconciliationIssue{
			CheckType: model.ReconCheckPaymentCount,
			Expected:  int64(consumedCount),
			Actual:    int64(paymentCount),
			Details: fmt.Sprintf("%d consumed reservations but %d successful payments",
				consumedCount, paymentCount),
		})
	}

	if paidAmountCents != consumedAmountCents {
		report.RevenueDiscrepancyCents = paidAmountCents - consumedAmountCents
		report.Issues = append(report.Issues, model.ReconciliationIssue{
			CheckType: model.ReconCheckRevenue,
			Expected:  consumedAmountCents,
			Actual:    paidAmountCents,
			Details: fmt.Sprintf("consumed reservations total %d cents but payments total %d cents",
				consumedAmountCents, paidAmountCents),
		})
	}

	report.HasDiscrepancies = len(report.Issues) > 0

	return report, nil
}

// ReconcileDue runs ReconcileEvent over every event with consumption activity
// since the cutoff and aggregates the results. Per-event failures do not stop
// the run.
func (s *ReconciliationServiceImpl) ReconcileDue(ctx context.Context, since time.Time) (*model.ReconciliationRunReport, error) {
	log := logger.WithComponent("reconciliation")

	run := &model.ReconciliationRunReport{
		StartedAt:     time.Now().UTC(),
		Discrepancies: make([]model.ReconciliationReport, 0),
	}

	eventIDs, err := s.reservationRepository.EventIDsWithConsumptionSince(ctx, since)
	if err != nil {
		return nil, err
	}

	for _, eventID := range eventIDs {
		report, err := s.ReconcileEvent(ctx, eventID)
		if err != nil {
			log.Error("failed to reconcile event",
				zap.Int64("event_id", eventID), zap.Error(err))
			run.Failed++
			continue
		}

		run.Reconciled++
		if report.HasDiscrepancies {
			// Surfaced, never silently dropped; repair stays manual.
			log.Warn("reconciliation discrepancies detected",
				zap.Int64("event_id", eventID),
				zap.Int("issues", len(report.Issues)),
				zap.Int64("revenue_discrepancy_cents", report.RevenueDiscrepancyCents))
			run.Discrepancies = append(run.Discrepancies, *report)
		}
	}

	run.FinishedAt = time.Now().UTC()

	return run, nil
}
