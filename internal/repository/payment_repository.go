package repository

import (
	"context"
	"fmt"
	"go-ticket-reservation/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository interface {
	ListByEvent(ctx context.Context, eventID int64) ([]*model.PaymentRecord, error)
	SucceededStatsByEvent(ctx context.Context, eventID int64) (count int, totalAmountCents int64, err error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, payment *model.PaymentRecord) (*model.PaymentRecord, error)
}

type PaymentRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &PaymentRepositoryImpl{
		pool: pool,
	}
}

func (r *PaymentRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, payment *model.PaymentRecord) (*model.PaymentRecord, error) {
	query := `
		INSERT INTO payments (
			external_event_id, session_id, reservation_id, event_id, amount_cents, status
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, received_at
	`

	err := tx.QueryRow(ctx, query,
		payment.ExternalEventID, payment.SessionID, payment.ReservationID,
		payment.EventID, payment.AmountCents, payment.Status,
	).Scan(&payment.ID, &payment.ReceivedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment record: %w", err)
	}

	return payment, nil
}

func (r *PaymentRepositoryImpl) ListByEvent(ctx context.Context, eventID int64) ([]*model.PaymentRecord, error) {
	query := `
		SELECT id, external_event_id, session_id, reservation_id, event_id,
		       amount_cents, status, received_at
		FROM payments
		WHERE event_id = $1
		ORDER BY received_at DESC
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]*model.PaymentRecord, 0)

	for rows.Next() {
		var payment model.PaymentRecord
		err := rows.Scan(
			&payment.ID,
			&payment.ExternalEventID,
			&payment.SessionID,
			&payment.ReservationID,
			&payment.EventID,
			&payment.AmountCents,
			&payment.Status,
			&payment.ReceivedAt,
		)
		if err != nil {
			return nil, err
		}
		payments = append(payments, &payment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *PaymentRepositoryImpl) SucceededStatsByEvent(ctx context.Context, eventID int64) (int, int64, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(amount_cents), 0)
		FROM payments
		WHERE event_id = $1 AND status = $2
	`

	var count int
	var totalAmountCents int64
	err := r.pool.QueryRow(ctx, query, eventID, model.PaymentStatusSucceeded).
		Scan(&count, &totalAmountCents)
	if err != nil {
		return 0, 0, err
	}

	return count, totalAmountCents, nil
}
