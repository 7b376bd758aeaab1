package repository

import (
	"context"
	"fmt"
	"go-ticket-reservation/internal/model"
	apperrors "go-ticket-reservation/pkg/app_errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReservationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	FindByUserID(ctx context.Context, userID int64) ([]*model.Reservation, error)
	SetCheckoutSession(ctx context.Context, id uuid.UUID, sessionID string) error
	EventIDsWithConsumptionSince(ctx context.Context, since time.Time) ([]int64, error)
	ConsumedStatsByEvent(ctx context.Context, eventID int64) (count int, totalAmountCents int64, err error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, reservation *model.Reservation) (*model.Reservation, error)
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Reservation, error)
	FindBySessionForUpdate(ctx context.Context, tx pgx.Tx, sessionID string) (*model.Reservation, error)
	MarkConsumed(ctx context.Context, tx pgx.Tx, id uuid.UUID, consumedAt time.Time) error
	MarkReleased(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.ReservationStatus) error
	LockExpired(ctx context.Context, tx pgx.Tx, now time.Time, limit int) ([]*model.Reservation, error)
}

type ReservationRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) ReservationRepository {
	return &ReservationRepositoryImpl{
		pool: pool,
	}
}

const reservationColumns = `id, inventory_id, event_id, user_id, quantity, status,
		amount_cents, checkout_session_id, created_at, expires_at, consumed_at`

func scanReservation(row pgx.Row) (*model.Reservation, error) {
	var r model.Reservation
	err := row.Scan(
		&r.ID,
		&r.InventoryID,
		&r.EventID,
		&r.UserID,
		&r.Quantity,
		&r.Status,
		&r.AmountCents,
		&r.CheckoutSessionID,
		&r.CreatedAt,
		&r.ExpiresAt,
		&r.ConsumedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrReservationNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (r *ReservationRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, reservation *model.Reservation) (*model.Reservation, error) {
	query := `
		INSERT INTO reservations (
			id, inventory_id, event_id, user_id, quantity, status, amount_cents, expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + reservationColumns

	created, err := scanReservation(tx.QueryRow(ctx, query,
		reservation.ID, reservation.InventoryID, reservation.EventID,
		reservation.UserID, reservation.Quantity, reservation.Status,
		reservation.AmountCents, reservation.ExpiresAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	return created, nil
}

func (r *ReservationRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE id = $1
	`

	return scanReservation(r.pool.QueryRow(ctx, query, id))
}

func (r *ReservationRepositoryImpl) FindByUserID(ctx context.Context, userID int64) ([]*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := make([]*model.Reservation, 0)

	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reservations, nil
}

func (r *ReservationRepositoryImpl) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE id = $1
		FOR UPDATE
	`

	return scanReservation(tx.QueryRow(ctx, query, id))
}

func (r *ReservationRepositoryImpl) FindBySessionForUpdate(ctx context.Context, tx pgx.Tx, sessionID string) (*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE checkout_session_id = $1
		ORDER BY created_at DESC
		LIMIT 1
		FOR UPDATE
	`

	return scanReservation(tx.QueryRow(ctx, query, sessionID))
}

// SetCheckoutSession records (or replaces) the external session attached to a
// pending reservation. Attaching never touches inventory.
func (r *ReservationRepositoryImpl) SetCheckoutSession(ctx context.Context, id uuid.UUID, sessionID string) error {
	query := `
		UPDATE reservations
		SET checkout_session_id = $1
		WHERE id = $2 AND status = $3
	`

	result, err := r.pool.Exec(ctx, query, sessionID, id, model.ReservationStatusPending)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrReservationNotFound
	}

	return nil
}

func (r *ReservationRepositoryImpl) MarkConsumed(ctx context.Context, tx pgx.Tx, id uuid.UUID, consumedAt time.Time) error {
	query := `
		UPDATE reservations
		SET status = $1, consumed_at = $2
		WHERE id = $3 AND status = $4
	`

	result, err := tx.Exec(ctx, query,
		model.ReservationStatusConsumed, consumedAt, id, model.ReservationStatusPending)
	if err != nil {
		return fmt.Errorf("failed to mark reservation consumed: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrReservationNotFound
	}

	return nil
}

// MarkReleased moves a pending reservation to expired or cancelled. The
// status guard in the WHERE clause keeps terminal states immutable.
func (r *ReservationRepositoryImpl) MarkReleased(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.ReservationStatus) error {
	if !status.IsTerminal() || status == model.ReservationStatusConsumed {
		return apperrors.ErrInvalidInput
	}

	query := `
		UPDATE reservations
		SET status = $1
		WHERE id = $2 AND status = $3
	`

	result, err := tx.Exec(ctx, query, status, id, model.ReservationStatusPending)
	if err != nil {
		return fmt.Errorf("failed to mark reservation released: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrReservationNotFound
	}

	return nil
}

// LockExpired selects overdue pending reservations with FOR UPDATE SKIP
// LOCKED: rows held by a live Consume or Release are skipped instead of
// waited on, so a sweep never queues behind checkout traffic.
func (r *ReservationRepositoryImpl) LockExpired(ctx context.Context, tx pgx.Tx, now time.Time, limit int) ([]*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE status = $1 AND expires_at < $2
		ORDER BY expires_at
		LIMIT $3
		FOR UPDATE SKIP LOCKED
	`

	rows, err := tx.Query(ctx, query, model.ReservationStatusPending, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := make([]*model.Reservation, 0)

	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reservations, nil
}

func (r *ReservationRepositoryImpl) EventIDsWithConsumptionSince(ctx context.Context, since time.Time) ([]int64, error) {
	query := `
		SELECT DISTINCT event_id
		FROM reservations
		WHERE status = $1 AND consumed_at >= $2
		ORDER BY event_id
	`

	rows, err := r.pool.Query(ctx, query, model.ReservationStatusConsumed, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	eventIDs := make([]int64, 0)

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		eventIDs = append(eventIDs, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return eventIDs, nil
}

func (r *ReservationRepositoryImpl) ConsumedStatsByEvent(ctx context.Context, eventID int64) (int, int64, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(amount_cents), 0)
		FROM reservations
		WHERE event_id = $1 AND status = $2
	`

	var count int
	var totalAmountCents int64
	err := r.pool.QueryRow(ctx, query, eventID, model.ReservationStatusConsumed).
		Scan(&count, &totalAmountCents)
	if err != nil {
		return 0, 0, err
	}

	return count, totalAmountCents, nil
}
