package model

import (
	"encoding/json"
	"time"
)

// Webhook event types delivered by the payment provider.
const (
	WebhookTypePaymentSucceeded = "payment.succeeded"
	WebhookTypePaymentFailed    = "payment.failed"
	WebhookTypeSessionExpired   = "checkout.session.expired"
)

// Settlement outcomes recorded on the webhook event row.
const (
	WebhookOutcomeConsumed  = "consumed"
	WebhookOutcomeReleased  = "released"
	WebhookOutcomeAbsorbed  = "absorbed"
	WebhookOutcomeMalformed = "malformed"
)

// WebhookEvent stores provider notifications with deduplication metadata.
// The (provider, external_event_id) pair is unique; a second delivery of the
// same identifier never reaches the ledgers.
type WebhookEvent struct {
	ID              int64           `json:"id" db:"id"`
	Provider        string          `json:"provider" db:"provider"`
	ExternalEventID string          `json:"external_event_id" db:"external_event_id"`
	EventType       string          `json:"event_type" db:"event_type"`
	Payload         json.RawMessage `json:"payload" db:"payload"`
	Outcome         string          `json:"outcome" db:"outcome"`
	ReceivedAt      time.Time       `json:"received_at" db:"received_at"`
	ProcessedAt     *time.Time      `json:"processed_at,omitempty" db:"processed_at"`
}

// WebhookPayload is the parsed body of a provider notification.
type WebhookPayload struct {
	ExternalEventID string `json:"id"`
	EventType       string `json:"type"`
	Data            struct {
		SessionID   string `json:"session_id"`
		AmountCents int64  `json:"amount_cents"`
	} `json:"data"`
}
