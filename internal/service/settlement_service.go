package service

import (
	"context"
	"encoding/json"
	"errors"
	"go-ticket-reservation/internal/model"
	"go-ticket-reservation/internal/repository"
	apperrors "go-ticket-reservation/pkg/app_errors"
	"go-ticket-reservation/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// SettlementService consumes payment-provider notifications and drives the
// reservation service. Everything it does for one notification happens in a
// single transaction with the idempotency insert, so duplicate deliveries
// and transient failures are both safe.
type SettlementService interface {
	HandleEvent(ctx context.Context, provider string, body []byte) (string, error)
}

type SettlementServiceImpl struct {
	pool                  *pgxpool.Pool
	webhookRepository     repository.WebhookRepository
	paymentRepository     repository.PaymentRepository
	reservationRepository repository.ReservationRepository
	reservationService    ReservationService
}

func NewSettlementService(
	pool *pgxpool.Pool,
	webhookRepository repository.WebhookRepository,
	paymentRepository repository.PaymentRepository,
	reservationRepository repository.ReservationRepository,
	reservationService ReservationService,
) SettlementService {
	return &SettlementServiceImpl{
		pool:                  pool,
		webhookRepository:     webhookRepository,
		paymentRepository:     paymentRepository,
		reservationRepository: reservationRepository,
		reservationService:    reservationService,
	}
}

// HandleEvent returns the recorded outcome. A non-nil error means transient
// infrastructure failure: nothing was committed and the caller should answer
// with a retryable status so the provider redelivers.
func (s *SettlementServiceImpl) HandleEvent(ctx context.Context, provider string, body []byte) (string, error) {
	log := logger.WithComponent("settlement").With(zap.String("provider", provider))

	var payload model.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil || payload.ExternalEventID == "" {
		// Nothing to key idempotency on. Log and acknowledge; retrying a
		// body that cannot be parsed would loop forever.
		log.Warn("malformed webhook payload", zap.Error(err))
		return model.WebhookOutcomeMalformed, nil
	}

	log = log.With(
		zap.String("external_event_id", payload.ExternalEventID),
		zap.String("event_type", payload.EventType),
	)

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	inserted, err := s.webhookRepository.Insert(ctx, tx, &model.WebhookEvent{
		Provider:        provider,
		ExternalEventID: payload.ExternalEventID,
		EventType:       payload.EventType,
		Payload:         body,
	})
	if err != nil {
		return "", err
	}
	if !inserted {
		// Second delivery of an identifier that already went through the
		// gate. Short-circuit before any ledger mutation.
		log.Info("duplicate webhook delivery absorbed")
		return model.WebhookOutcomeAbsorbed, nil
	}

	outcome, err := s.settle(ctx, tx, log, payload)
	if err != nil {
		return "", err
	}

	err = s.webhookRepository.MarkProcessed(ctx, tx, provider, payload.ExternalEventID, outcome)
	if err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}

	return outcome, nil
}

func (s *SettlementServiceImpl) settle(ctx context.Context, tx pgx.Tx, log *zap.Logger, payload model.WebhookPayload) (string, error) {
	switch payload.EventType {
	case model.WebhookTypePaymentSucceeded:
		return s.settleSucceeded(ctx, tx, log, payload)
	case model.WebhookTypePaymentFailed, model.WebhookTypeSessionExpired:
		return s.settleFailed(ctx, tx, log, payload)
	default:
		log.Warn("unknown webhook event type, acknowledged")
		return model.WebhookOutcomeAbsorbed, nil
	}
}

func (s *SettlementServiceImpl) settleSucceeded(ctx context.Context, tx pgx.Tx, log *zap.Logger, payload model.WebhookPayload) (string, error) {
	reservation, err := s.reservationRepository.FindBySessionForUpdate(ctx, tx, payload.Data.SessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrReservationNotFound) {
			log.Warn("payment for unknown checkout session, acknowledged",
				zap.String("session_id", payload.Data.SessionID))
			return model.WebhookOutcomeMalformed, nil
		}
		return "", err
	}

	amount := payload.Data.AmountCents
	if amount == 0 {
		amount = reservation.AmountCents
	}

	// The payment record is written regardless of what happens to the
	// reservation: money moved, and reconciliation needs to see it.
	_, err = s.paymentRepository.Create(ctx, tx, &model.PaymentRecord{
		ExternalEventID: payload.ExternalEventID,
		SessionID:       payload.Data.SessionID,
		ReservationID:   &reservation.ID,
		EventID:         &reservation.EventID,
		AmountCents:     amount,
		Status:          model.PaymentStatusSucceeded,
	})
	if err != nil {
		return "", err
	}

	_, err = s.reservationService.ConsumeTx(ctx, tx, reservation.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrReservationExpired) {
			// Paid after the hold died. No tickets; the payment record
			// above is what reconciliation will flag for refund handling.
			log.Warn("payment succeeded for expired reservation",
				zap.String("reservation_id", reservation.ID.String()))
			return model.WebhookOutcomeAbsorbed, nil
		}
		return "", err
	}

	log.Info("reservation consumed",
		zap.String("reservation_id", reservation.ID.String()),
		zap.Int("quantity", reservation.Quantity))
	return model.WebhookOutcomeConsumed, nil
}

func (s *SettlementServiceImpl) settleFailed(ctx context.Context, tx pgx.Tx, log *zap.Logger, payload model.WebhookPayload) (string, error) {
	reservation, err := s.reservationRepository.FindBySessionForUpdate(ctx, tx, payload.Data.SessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrReservationNotFound) {
			log.Warn("failure notice for unknown checkout session, acknowledged",
				zap.String("session_id", payload.Data.SessionID))
			return model.WebhookOutcomeMalformed, nil
		}
		return "", err
	}

	// A declined charge is still a settlement fact; record it so an operator
	// can line up failed attempts against released holds. Session expiry moves
	// no money and leaves no payment row.
	if payload.EventType == model.WebhookTypePaymentFailed {
		amount := payload.Data.AmountCents
		if amount == 0 {
			amount = reservation.AmountCents
		}
		_, err = s.paymentRepository.Create(ctx, tx, &model.PaymentRecord{
			ExternalEventID: payload.ExternalEventID,
			SessionID:       payload.Data.SessionID,
			ReservationID:   &reservation.ID,
			EventID:         &reservation.EventID,
			AmountCents:     amount,
			Status:          model.PaymentStatusFailed,
		})
		if err != nil {
			return "", err
		}
	}

	err = s.reservationService.ReleaseTx(ctx, tx, reservation.ID, model.ReservationStatusCancelled)
	if err != nil {
		return "", err
	}

	log.Info("reservation released after payment failure",
		zap.String("reservation_id", reservation.ID.String()))
	return model.WebhookOutcomeReleased, nil
}
