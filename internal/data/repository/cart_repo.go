package repository

import (
	"context"
	"fmt"

	"tour-booking/internal/data/entity"
	"tour-booking/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CartRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.CartItem, error)
	DeleteItems(ctx context.Context, q database.Querier, ids []uuid.UUID) error
}

type cartRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCartRepository(db database.PgxIface, log *zap.Logger) CartRepository {
	return &cartRepository{
		db:  db,
		log: log.With(zap.String("repository", "cart")),
	}
}

func (r *cartRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.CartItem, error) {
	query := `
		SELECT id, user_id, package_type, package_id, slot_date, slot_time, adults, children, created_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to find cart items",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find cart items for %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var items []*entity.CartItem
	for rows.Next() {
		var item entity.CartItem
		err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.PackageType,
			&item.PackageID,
			&item.Date,
			&item.Time,
			&item.Adults,
			&item.Children,
			&item.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan cart item row", zap.Error(err))
			return nil, fmt.Errorf("scan cart item row: %w", err)
		}
		items = append(items, &item)
	}

	return items, nil
}

func (r *cartRepository) DeleteItems(ctx context.Context, q database.Querier, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	query := `DELETE FROM cart_items WHERE id = ANY($1)`

	if q == nil {
		q = r.db
	}

	if _, err := q.Exec(ctx, query, ids); err != nil {
		r.log.Error("Failed to delete cart items", zap.Error(err), zap.Int("count", len(ids)))
		return fmt.Errorf("delete %d cart items: %w", len(ids), err)
	}

	return nil
}
