package repository

import (
	"context"
	"go-ticket-reservation/internal/model"
	apperrors "go-ticket-reservation/pkg/app_errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type InventoryRepository interface {
	Create(ctx context.Context, inv *model.EventInventory) (*model.EventInventory, error)
	FindByEventAndType(ctx context.Context, eventID int64, ticketType string) (*model.EventInventory, error)
	ListByEvent(ctx context.Context, eventID int64) ([]*model.EventInventory, error)

	// Transaction methods
	FindForUpdate(ctx context.Context, tx pgx.Tx, eventID int64, ticketType string) (*model.EventInventory, error)
	Hold(ctx context.Context, tx pgx.Tx, id int64, quantity int) error
	CommitSold(ctx context.Context, tx pgx.Tx, id int64, quantity int) error
	ReleaseHold(ctx context.Context, tx pgx.Tx, id int64, quantity int) error
}

type InventoryRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewInventoryRepository(pool *pgxpool.Pool) InventoryRepository {
	return &InventoryRepositoryImpl{
		pool: pool,
	}
}

const inventoryColumns = `id, event_id, ticket_type, price_cents, total_capacity,
		reserved_count, sold_count, created_at, updated_at`

func scanInventory(row pgx.Row) (*model.EventInventory, error) {
	var inv model.EventInventory
	err := row.Scan(
		&inv.ID,
		&inv.EventID,
		&inv.TicketType,
		&inv.PriceCents,
		&inv.TotalCapacity,
		&inv.ReservedCount,
		&inv.SoldCount,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrInventoryNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *InventoryRepositoryImpl) Create(ctx context.Context, inv *model.EventInventory) (*model.EventInventory, error) {
	query := `
		INSERT INTO event_inventory (event_id, ticket_type, price_cents, total_capacity)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + inventoryColumns

	return scanInventory(r.pool.QueryRow(ctx, query,
		inv.EventID, inv.TicketType, inv.PriceCents, inv.TotalCapacity))
}

func (r *InventoryRepositoryImpl) FindByEventAndType(ctx context.Context, eventID int64, ticketType string) (*model.EventInventory, error) {
	query := `
		SELECT ` + inventoryColumns + `
		FROM event_inventory
		WHERE event_id = $1 AND ticket_type = $2
	`

	return scanInventory(r.pool.QueryRow(ctx, query, eventID, ticketType))
}

func (r *InventoryRepositoryImpl) ListByEvent(ctx context.Context, eventID int64) ([]*model.EventInventory, error) {
	query := `
		SELECT ` + inventoryColumns + `
		FROM event_inventory
		WHERE event_id = $1
		ORDER BY ticket_type
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	inventories := make([]*model.EventInventory, 0)

	for rows.Next() {
		inv, err := scanInventory(rows)
		if err != nil {
			return nil, err
		}
		inventories = append(inventories, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return inventories, nil
}

// FindForUpdate takes the row lock that serializes all mutation of one
// inventory row. A second transaction targeting the same row blocks here
// until the first commits or aborts, then re-reads fresh counts.
func (r *InventoryRepositoryImpl) FindForUpdate(ctx context.Context, tx pgx.Tx, eventID int64, ticketType string) (*model.EventInventory, error) {
	query := `
		SELECT ` + inventoryColumns + `
		FROM event_inventory
		WHERE event_id = $1 AND ticket_type = $2
		FOR UPDATE
	`

	return scanInventory(tx.QueryRow(ctx, query, eventID, ticketType))
}

// Hold moves quantity into reserved_count. The WHERE clause re-checks
// availability so the invariant holds even if a caller skipped the lock.
func (r *InventoryRepositoryImpl) Hold(ctx context.Context, tx pgx.Tx, id int64, quantity int) error {
	query := `
		UPDATE event_inventory
		SET reserved_count = reserved_count + $1, updated_at = $2
		WHERE id = $3
		  AND total_capacity - reserved_count - sold_count >= $1
	`

	result, err := tx.Exec(ctx, query, quantity, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrInsufficientInventory
	}

	return nil
}

// CommitSold converts a hold into a sale: reserved_count down, sold_count up.
// Zero rows affected means reserved_count no longer covers the quantity, a
// counter drift that must surface as a conflict rather than a missing row.
func (r *InventoryRepositoryImpl) CommitSold(ctx context.Context, tx pgx.Tx, id int64, quantity int) error {
	query := `
		UPDATE event_inventory
		SET reserved_count = reserved_count - $1,
			sold_count = sold_count + $1,
			updated_at = $2
		WHERE id = $3 AND reserved_count >= $1
	`

	result, err := tx.Exec(ctx, query, quantity, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrInventoryConflict
	}

	return nil
}

func (r *InventoryRepositoryImpl) ReleaseHold(ctx context.Context, tx pgx.Tx, id int64, quantity int) error {
	query := `
		UPDATE event_inventory
		SET reserved_count = reserved_count - $1, updated_at = $2
		WHERE id = $3 AND reserved_count >= $1
	`

	result, err := tx.Exec(ctx, query, quantity, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrInventoryConflict
	}

	return nil
}
