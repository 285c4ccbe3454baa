package repository

import (
	"context"
	"fmt"
	"time"

	"tour-booking/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type WebhookEventRepository interface {
	// Insert records a gateway event id. Returns false when the id was seen
	// before, which means the delivery is a duplicate and must be ignored.
	Insert(ctx context.Context, eventID, source string) (bool, error)
}

type webhookEventRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewWebhookEventRepository(db database.PgxIface, log *zap.Logger) WebhookEventRepository {
	return &webhookEventRepository{
		db:  db,
		log: log.With(zap.String("repository", "webhook_event")),
	}
}

func (r *webhookEventRepository) Insert(ctx context.Context, eventID, source string) (bool, error) {
	query := `
		INSERT INTO webhook_events (id, event_id, source, received_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id) DO NOTHING
	`

	tag, err := r.db.Exec(ctx, query, uuid.New(), eventID, source, time.Now())
	if err != nil {
		r.log.Error("Failed to insert webhook event",
			zap.Error(err),
			zap.String("event_id", eventID),
		)
		return false, fmt.Errorf("insert webhook event %s: %w", eventID, err)
	}

	return tag.RowsAffected() > 0, nil
}
