package repository

import (
	"context"
	"fmt"
	"go-ticket-reservation/internal/model"
	apperrors "go-ticket-reservation/pkg/app_errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WebhookRepository interface {
	FindByExternalID(ctx context.Context, provider, externalEventID string) (*model.WebhookEvent, error)

	// Transaction methods
	Insert(ctx context.Context, tx pgx.Tx, event *model.WebhookEvent) (bool, error)
	MarkProcessed(ctx context.Context, tx pgx.Tx, provider, externalEventID, outcome string) error
}

type WebhookRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewWebhookRepository(pool *pgxpool.Pool) WebhookRepository {
	return &WebhookRepositoryImpl{
		pool: pool,
	}
}

// Insert is the idempotency gate. It reports false when the (provider,
// external_event_id) pair already exists, in which case the caller must not
// mutate any ledger. Running inside the settlement transaction means a
// rollback also takes the gate record with it, so redelivery stays safe
// after transient failures.
func (r *WebhookRepositoryImpl) Insert(ctx context.Context, tx pgx.Tx, event *model.WebhookEvent) (bool, error) {
	query := `
		INSERT INTO webhook_events (provider, external_event_id, event_type, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (provider, external_event_id) DO NOTHING
	`

	payload := event.Payload
	if payload == nil {
		payload = []byte("{}")
	}

	result, err := tx.Exec(ctx, query,
		event.Provider, event.ExternalEventID, event.EventType, payload)
	if err != nil {
		return false, fmt.Errorf("failed to insert webhook event: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *WebhookRepositoryImpl) MarkProcessed(ctx context.Context, tx pgx.Tx, provider, externalEventID, outcome string) error {
	query := `
		UPDATE webhook_events
		SET outcome = $1, processed_at = $2
		WHERE provider = $3 AND external_event_id = $4
	`

	result, err := tx.Exec(ctx, query, outcome, time.Now().UTC(), provider, externalEventID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrInternalServerError
	}

	return nil
}

func (r *WebhookRepositoryImpl) FindByExternalID(ctx context.Context, provider, externalEventID string) (*model.WebhookEvent, error) {
	query := `
		SELECT id, provider, external_event_id, event_type, payload,
		       outcome, received_at, processed_at
		FROM webhook_events
		WHERE provider = $1 AND external_event_id = $2
	`

	var event model.WebhookEvent
	err := r.pool.QueryRow(ctx, query, provider, externalEventID).Scan(
		&event.ID,
		&event.Provider,
		&event.ExternalEventID,
		&event.EventType,
		&event.Payload,
		&event.Outcome,
		&event.ReceivedAt,
		&event.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}

	return &event, nil
}
