package repository

import (
	"context"
	"fmt"
	"go-ticket-reservation/internal/model"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepository interface {
	FindByReservationID(ctx context.Context, reservationID uuid.UUID) ([]*model.Ticket, error)
	FindByUserID(ctx context.Context, userID int64) ([]*model.Ticket, error)
	CountByEvent(ctx context.Context, eventID int64) (int, error)

	// Transaction methods
	CreateBatch(ctx context.Context, tx pgx.Tx, tickets []*model.Ticket) error
}

type TicketRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &TicketRepositoryImpl{
		pool: pool,
	}
}

const ticketColumns = `id, reservation_id, event_id, user_id, token, status, issued_at`

func scanTicket(row pgx.Row) (*model.Ticket, error) {
	var t model.Ticket
	err := row.Scan(
		&t.ID,
		&t.ReservationID,
		&t.EventID,
		&t.UserID,
		&t.Token,
		&t.Status,
		&t.IssuedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateBatch inserts all tickets for one consumed reservation in a single
// multi-VALUES statement inside the caller's transaction.
func (r *TicketRepositoryImpl) CreateBatch(ctx context.Context, tx pgx.Tx, tickets []*model.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}

	values := make([]string, 0, len(tickets))
	args := make([]interface{}, 0, len(tickets)*6)
	argPos := 1

	for _, ticket := range tickets {
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)",
			argPos, argPos+1, argPos+2, argPos+3, argPos+4, argPos+5))
		args = append(args,
			ticket.ID, ticket.ReservationID, ticket.EventID,
			ticket.UserID, ticket.Token, ticket.Status)
		argPos += 6
	}

	query := `
		INSERT INTO tickets (id, reservation_id, event_id, user_id, token, status)
		VALUES ` + strings.Join(values, ", ")

	_, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create tickets: %w", err)
	}

	return nil
}

func (r *TicketRepositoryImpl) FindByReservationID(ctx context.Context, reservationID uuid.UUID) ([]*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE reservation_id = $1
		ORDER BY issued_at, id
	`

	return r.queryTickets(ctx, query, reservationID)
}

func (r *TicketRepositoryImpl) FindByUserID(ctx context.Context, userID int64) ([]*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE user_id = $1
		ORDER BY issued_at DESC
	`

	return r.queryTickets(ctx, query, userID)
}

func (r *TicketRepositoryImpl) CountByEvent(ctx context.Context, eventID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM tickets
		WHERE event_id = $1 AND status = $2
	`

	var count int
	err := r.pool.QueryRow(ctx, query, eventID, model.TicketStatusIssued).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *TicketRepositoryImpl) queryTickets(ctx context.Context, query string, args ...interface{}) ([]*model.Ticket, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]*model.Ticket, 0)

	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tickets, nil
}
