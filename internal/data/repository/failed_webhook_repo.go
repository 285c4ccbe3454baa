package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"tour-booking/internal/data/entity"
	"tour-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type FailedWebhookEventRepository interface {
	Create(ctx context.Context, event *entity.FailedWebhookEvent) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.FailedWebhookEvent, error)
	Find(ctx context.Context, resolved *bool, limit, offset int) ([]*entity.FailedWebhookEvent, error)
	Count(ctx context.Context, resolved *bool) (int64, error)
	MarkResolved(ctx context.Context, id uuid.UUID, resolvedBy string, notes *string) error
}

type failedWebhookEventRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewFailedWebhookEventRepository(db database.PgxIface, log *zap.Logger) FailedWebhookEventRepository {
	return &failedWebhookEventRepository{
		db:  db,
		log: log.With(zap.String("repository", "failed_webhook_event")),
	}
}

const failedWebhookColumns = `id, payment_intent_id, amount, currency, metadata, last_error,
	resolved, resolved_at, resolved_by, notes, created_at, updated_at`

func scanFailedWebhookEvent(row pgx.Row) (*entity.FailedWebhookEvent, error) {
	var event entity.FailedWebhookEvent
	var metadata []byte
	err := row.Scan(
		&event.ID,
		&event.PaymentIntentID,
		&event.Amount,
		&event.Currency,
		&metadata,
		&event.LastError,
		&event.Resolved,
		&event.ResolvedAt,
		&event.ResolvedBy,
		&event.Notes,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &event.Metadata); err != nil {
			return nil, fmt.Errorf("decode failed webhook metadata: %w", err)
		}
	}

	return &event, nil
}

func (r *failedWebhookEventRepository) Create(ctx context.Context, event *entity.FailedWebhookEvent) error {
	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return fmt.Errorf("encode failed webhook metadata: %w", err)
	}

	query := `
		INSERT INTO failed_webhook_events (id, payment_intent_id, amount, currency, metadata,
			last_error, resolved, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.Exec(ctx, query,
		event.ID,
		event.PaymentIntentID,
		event.Amount,
		event.Currency,
		metadata,
		event.LastError,
		event.Resolved,
		event.CreatedAt,
		event.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create failed webhook event",
			zap.Error(err),
			zap.String("payment_intent_id", event.PaymentIntentID),
		)
		return fmt.Errorf("create failed webhook event for %s: %w", event.PaymentIntentID, err)
	}

	return nil
}

func (r *failedWebhookEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.FailedWebhookEvent, error) {
	query := `SELECT ` + failedWebhookColumns + ` FROM failed_webhook_events WHERE id = $1`

	event, err := scanFailedWebhookEvent(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find failed webhook event",
			zap.Error(err),
			zap.String("id", id.String()),
		)
		return nil, fmt.Errorf("find failed webhook event %s: %w", id.String(), err)
	}

	return event, nil
}

func (r *failedWebhookEventRepository) Find(ctx context.Context, resolved *bool, limit, offset int) ([]*entity.FailedWebhookEvent, error) {
	query := `
		SELECT ` + failedWebhookColumns + `
		FROM failed_webhook_events
		WHERE ($1::boolean IS NULL OR resolved = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, resolved, limit, offset)
	if err != nil {
		r.log.Error("Failed to list failed webhook events", zap.Error(err))
		return nil, fmt.Errorf("list failed webhook events: %w", err)
	}
	defer rows.Close()

	var events []*entity.FailedWebhookEvent
	for rows.Next() {
		event, err := scanFailedWebhookEvent(rows)
		if err != nil {
			r.log.Error("Failed to scan failed webhook event row", zap.Error(err))
			return nil, fmt.Errorf("scan failed webhook event row: %w", err)
		}
		events = append(events, event)
	}

	return events, nil
}

func (r *failedWebhookEventRepository) Count(ctx context.Context, resolved *bool) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM failed_webhook_events
		WHERE ($1::boolean IS NULL OR resolved = $1)
	`

	var count int64
	if err := r.db.QueryRow(ctx, query, resolved).Scan(&count); err != nil {
		r.log.Error("Failed to count failed webhook events", zap.Error(err))
		return 0, fmt.Errorf("count failed webhook events: %w", err)
	}

	return count, nil
}

// MarkResolved closes an entry. Audit fields are append-only: the entry itself
// is never deleted and an already-resolved entry is left untouched.
func (r *failedWebhookEventRepository) MarkResolved(ctx context.Context, id uuid.UUID, resolvedBy string, notes *string) error {
	query := `
		UPDATE failed_webhook_events
		SET resolved = TRUE,
		    resolved_at = NOW(),
		    resolved_by = $2,
		    notes = COALESCE($3, notes),
		    updated_at = NOW()
		WHERE id = $1 AND resolved = FALSE
	`

	tag, err := r.db.Exec(ctx, query, id, resolvedBy, notes)
	if err != nil {
		r.log.Error("Failed to mark failed webhook event resolved",
			zap.Error(err),
			zap.String("id", id.String()),
		)
		return fmt.Errorf("resolve failed webhook event %s: %w", id.String(), err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed webhook event %s not found or already resolved", id.String())
	}

	return nil
}
