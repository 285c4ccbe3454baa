package response

import (
	"time"

	"tour-booking/internal/data/entity"
)

type FailedWebhookEventResponse struct {
	ID              string            `json:"id"`
	PaymentIntentID string            `json:"payment_intent_id"`
	Amount          int64             `json:"amount"`
	Currency        string            `json:"currency"`
	Metadata        map[string]string `json:"metadata"`
	LastError       string            `json:"last_error"`
	Resolved        bool              `json:"resolved"`
	ResolvedAt      *time.Time        `json:"resolved_at,omitempty"`
	ResolvedBy      *string           `json:"resolved_by,omitempty"`
	Notes           *string           `json:"notes,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

func FailedWebhookEventToResponse(event *entity.FailedWebhookEvent) FailedWebhookEventResponse {
	return FailedWebhookEventResponse{
		ID:              event.ID.String(),
		PaymentIntentID: event.PaymentIntentID,
		Amount:          event.Amount,
		Currency:        event.Currency,
		Metadata:        event.Metadata,
		LastError:       event.LastError,
		Resolved:        event.Resolved,
		ResolvedAt:      event.ResolvedAt,
		ResolvedBy:      event.ResolvedBy,
		Notes:           event.Notes,
		CreatedAt:       event.CreatedAt,
	}
}
