package entity

import (
	"time"

	"github.com/google/uuid"
)

// WebhookEvent is one row in the append-only idempotency ledger of processed
// gateway event ids. A duplicate delivery fails the unique insert and is
// acknowledged without side effects.
type WebhookEvent struct {
	ID         uuid.UUID `db:"id"`
	EventID    string    `db:"event_id"`
	Source     string    `db:"source"`
	ReceivedAt time.Time `db:"received_at"`
}

// FailedWebhookEvent captures a payment event whose booking could not be
// created or updated. Money has moved but the system of record has not; the
// entry is recoverable only through operator retry or manual resolve.
// Entries are never deleted.
type FailedWebhookEvent struct {
	BaseNoDelete
	PaymentIntentID string            `db:"payment_intent_id"`
	Amount          int64             `db:"amount"`
	Currency        string            `db:"currency"`
	Metadata        map[string]string `db:"metadata"`
	LastError       string            `db:"last_error"`
	Resolved        bool              `db:"resolved"`
	ResolvedAt      *time.Time        `db:"resolved_at"`
	ResolvedBy      *string           `db:"resolved_by"`
	Notes           *string           `db:"notes"`
}
