package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"go-ticket-reservation/config"
	"net/http"
	"time"
)

// Session is a hosted checkout session created at the payment provider. The
// engine stores only the session id; the provider owns everything else.
type Session struct {
	ID          string    `json:"id"`
	CheckoutURL string    `json:"url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// CreateSessionParams describes one payable reservation.
type CreateSessionParams struct {
	ReferenceID string `json:"reference_id"`
	AmountCents int64  `json:"amount_cents"`
	Quantity    int    `json:"quantity"`
	SuccessURL  string `json:"success_url"`
	CancelURL   string `json:"cancel_url"`
	// ExpiresAt caps the session at the reservation deadline so the
	// provider cannot collect for a hold that no longer exists.
	ExpiresAt time.Time `json:"expires_at"`
}

// Provider is the outbound port to the external payment system.
type Provider interface {
	CreateSession(ctx context.Context, params CreateSessionParams) (*Session, error)
}

// HTTPProvider talks to a hosted-checkout API over one JSON POST.
type HTTPProvider struct {
	baseURL    string
	apiKey     string
	sessionTTL time.Duration
	client     *http.Client
}

func NewHTTPProvider(cfg *config.PaymentConfig) *HTTPProvider {
	sessionTTL := cfg.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = 30 * time.Minute
	}
	return &HTTPProvider{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		sessionTTL: sessionTTL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *HTTPProvider) CreateSession(ctx context.Context, params CreateSessionParams) (*Session, error) {
	// The session never outlives the configured window, even when the caller
	// passes a later reservation deadline.
	maxExpiry := time.Now().UTC().Add(p.sessionTTL)
	if params.ExpiresAt.IsZero() || params.ExpiresAt.After(maxExpiry) {
		params.ExpiresAt = maxExpiry
	}

	body, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("checkout session request failed: status %d", resp.StatusCode)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}

	return &session, nil
}
