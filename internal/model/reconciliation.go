package model

import "time"

// Reconciliation check types, named in reports so an operator can tell which
// pair of records disagreed.
const (
	ReconCheckTicketCount  = "TICKET_COUNT"  // tickets issued vs inventory sold_count
	ReconCheckPaymentCount = "PAYMENT_COUNT" // successful payments vs consumed reservations
	ReconCheckRevenue      = "REVENUE"       // paid amount vs consumed reservation amounts
)

// ReconciliationIssue is one detected mismatch. Details are human-readable;
// the expected/actual pair carries the raw numbers.
type ReconciliationIssue struct {
	CheckType string `json:"check_type"`
	Expected  int64  `json:"expected"`
	Actual    int64  `json:"actual"`
	Details   string `json:"details"`
}

// ReconciliationReport is a regenerated, read-only artifact. The ledgers stay
// authoritative; the report only points at drift between them.
type ReconciliationReport struct {
	EventID                 int64                 `json:"event_id"`
	GeneratedAt             time.Time             `json:"generated_at"`
	Issues                  []ReconciliationIssue `json:"issues"`
	RevenueDiscrepancyCents int64                 `json:"revenue_discrepancy_cents"`
	HasDiscrepancies        bool                  `json:"has_discrepancies"`
}

// ReconciliationRunReport aggregates one ReconcileDue pass.
type ReconciliationRunReport struct {
	StartedAt     time.Time              `json:"started_at"`
	FinishedAt    time.Time              `json:"finished_at"`
	Reconciled    int                    `json:"reconciled"`
	Failed        int                    `json:"failed"`
	Discrepancies []ReconciliationReport `json:"discrepancies"`
}
