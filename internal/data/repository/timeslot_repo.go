package repository

import (
	"context"
	"fmt"

	"tour-booking/internal/data/entity"
	"tour-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type TimeSlotRepository interface {
	CreateBatch(ctx context.Context, slots []*entity.TimeSlot) (int64, error)
	FindByDay(ctx context.Context, packageType entity.PackageType, packageID uuid.UUID, date string) ([]*entity.TimeSlot, error)
	FindSlot(ctx context.Context, packageType entity.PackageType, packageID uuid.UUID, date, timeLabel string) (*entity.TimeSlot, error)
	FindExistingDates(ctx context.Context, packageType entity.PackageType, packageID uuid.UUID) (map[string]bool, error)
	DeleteByPackage(ctx context.Context, packageType entity.PackageType, packageID uuid.UUID) (int64, error)

	// Regeneration helpers
	DeleteByPackageExceptTimes(ctx context.Context, packageType entity.PackageType, packageID uuid.UUID, keepTimes []string) (int64, error)
	UpdateScheduleByTime(ctx context.Context, packageType entity.PackageType, packageID uuid.UUID, timeLabel string, capacity, minimumPerson int) (int64, error)

	// Mutation primitives; q is the caller's transaction.
	LockSlot(ctx context.Context, q database.Querier, packageType entity.PackageType, packageID uuid.UUID, date, timeLabel string) (*entity.TimeSlot, error)
	UpdateCounts(ctx context.Context, q database.Querier, slotID uuid.UUID, bookedCount, minimumPerson int) (bool, error)
}

type timeSlotRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTimeSlotRepository(db database.PgxIface, log *zap.Logger) TimeSlotRepository {
	return &timeSlotRepository{
		db:  db,
		log: log.With(zap.String("repository", "time_slot")),
	}
}

const timeSlotColumns = `id, package_type, package_id, slot_date, slot_time, capacity, booked_count,
	is_available, minimum_person, cutoff_time, price, created_at, updated_at`

func scanTimeSlot(row pgx.Row) (*entity.TimeSlot, error) {
	var slot entity.TimeSlot
	err := row.Scan(
		&slot.ID,
		&slot.PackageType,
		&slot.PackageID,
		&slot.Date,
		&slot.Time,
		&slot.Capacity,
		&slot.BookedCount,
		&slot.IsAvailable,
		&slot.MinimumPerson,
		&slot.CutoffTime,
		&slot.Price,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// CreateBatch inserts slots, skipping rows whose (type, package, date, time)
// key already exists. Returns the number of rows actually inserted.
func (r *timeSlotRepository) CreateBatch(ctx context.Context, slots []*entity.TimeSlot) (int64, error) {
	query := `
		INSERT INTO time_slots (id, package_type, package_id, slot_date, slot_time, capacity,
			booked_count, is_available, minimum_person, cutoff_time, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (package_type, package_id, slot_date, slot_time) DO NOTHING
	`

	var inserted int64
	for _, slot := range slots {
		tag, err := r.db.Exec(ctx, query,
			slot.ID,
			slot.PackageType,
			slot.PackageID,
			slot.Date,
			slot.Time,
			slot.Capacity,
			slot.BookedCount,
			slot.IsAvailable,
			slot.MinimumPerson,
			slot.CutoffTime,
			slot.Price,
			slot.CreatedAt,
			slot.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to insert time slot",
				zap.Error(err),
				zap.String("package_id", slot.PackageID.String()),
				zap.String("date", slot.Date),
				zap.String("time", slot.Time),
			)
			return inserted, fmt.Errorf("insert time slot %s %s: %w", slot.Date, slot.Time, err)
		}
		inserted += tag.RowsAffected()
	}

	return inserted, nil
}

func (r *timeSlotRepository) FindByDay(ctx context.Context, packageType entity.PackageType, packageID uuid.UUID, date string) ([]*entity.TimeSlot, error) {
	query := `
		SELECT ` + timeSlotColumns + `
		FROM time_slots
		WHERE package_type = $1 AND package_id = $2 AND slot_date = $3
		ORDER BY slot_time
	`

	rows, err := r.db.Query(ctx, query, packageType, packageID, date)
	if err != nil {
		r.log.Error("Failed to find slots by day",
			zap.Error(err),
			zap.String("package_id", packageID.String()),
			zap.String("date", date),
		)
		return nil, fmt.Errorf("find slots for %s on %s: %w", packageID.String(), date, err)
	}
	defer rows.Close()

	var slots []*entity.TimeSlot
	for rows.Next() {
		slot, err := scanTimeSlot(rows)
		if err != nil {
			r.log.Error("Failed to scan time slot row", zap.Error(err))
			return nil, fmt.Errorf("scan time slot row: %w", err)
		}
		slots = append(slots, slot)
	}

	return slots, nil
}

func (r *timeSlotRepository) FindSlot(ctx context.Context, packageType entity.PackageType, packageID uuid.UUID, date, timeLabel string) (*entity.TimeSlot, error) {
	query := `
		SELECT ` + timeSlotColumns + `
		FROM time_slots
		WHERE package_type = $1 AND package_id = $2 AND slot_date = $3 AND slot_time = $4
	`

	slot, err := scanTimeSlot(r.db.QueryRow(ctx, query, packageType, packageID, date, timeLabel))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find slot",
			zap.Error(err),
			zap.String("package_id", packageID.String()),
			zap.String("date", date),
			zap.String("time", timeLabel),
		)
		return nil, fmt.Errorf("find slot %s %s %s: %w", packageID.String(), date, timeLabel, err)
	}

	return slot, nil
}

func (r *timeSlotRepository) FindExistingDates(ctx context.Context, packageType entity.PackageType, packageID uuid.UUID) (map[string]bool, error) {
	query := `
		SELECT DISTINCT slot_date
		FROM time_slots
		WHERE package_type = $1 AND package_id = $2
	`

	rows, err := r.db.Query(ctx, query, packageType, packageID)
	if err != nil {
		r.log.Error("Failed to find existing slot dates",
			zap.Error(err),
			zap.String("package_id", packageID.String()),
		)
		return nil, fmt.Errorf("find existing slot dates for %s: %w", packageID.String(), err)
	}
	defer rows.Close()

	dates := make(map[string]bool)
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("scan slot date: %w", err)
		}
		dates[date] = true
	}

	return dates, nil
}

func (r *timeSlotRepository) DeleteByPackage(ctx context.Context, packageType entity.PackageType, packageID uuid.UUID) (int64, error) {
	query := `DELETE FROM time_slots WHERE package_type = $1 AND package_id = $2`

	tag, err := r.db.Exec(ctx, query, packageType, packageID)
	if err != nil {
		r.log.Error("Failed to delete slots by package",
			zap.Error(err),
			zap.String("package_id", packageID.String()),
		)
		return 0, fmt.Errorf("delete slots for package %s: %w", packageID.String(), err)
	}

	return tag.RowsAffected(), nil
}

// DeleteByPackageExceptTimes removes slots whose time label is no longer in
// the package schedule.
func (r *timeSlotRepository) DeleteByPackageExceptTimes(ctx context.Context, packageType entity.PackageType, packageID uuid.UUID, keepTimes []string) (int64, error) {
	query := `
		DELETE FROM time_slots
		WHERE package_type = $1 AND package_id = $2 AND slot_time != ALL($3)
	`

	tag, err := r.db.Exec(ctx, query, packageType, packageID, keepTimes)
	if err != nil {
		r.log.Error("Failed to delete removed slot times",
			zap.Error(err),
			zap.String("package_id", packageID.String()),
		)
		return 0, fmt.Errorf("delete removed slot times for %s: %w", packageID.String(), err)
	}

	return tag.RowsAffected(), nil
}

// UpdateScheduleByTime applies a capacity change to every slot with the given
// time label. Booked counts are preserved but clamped to the new capacity;
// minimum person is re-derived only for slots that have no bookings yet.
func (r *timeSlotRepository) UpdateScheduleByTime(ctx context.Context, packageType entity.PackageType, packageID uuid.UUID, timeLabel string, capacity, minimumPerson int) (int64, error) {
	query := `
		UPDATE time_slots
		SET capacity = $4,
		    booked_count = LEAST(booked_count, $4),
		    minimum_person = CASE WHEN booked_count = 0 THEN $5 ELSE minimum_person END,
		    updated_at = NOW()
		WHERE package_type = $1 AND package_id = $2 AND slot_time = $3
	`

	tag, err := r.db.Exec(ctx, query, packageType, packageID, timeLabel, capacity, minimumPerson)
	if err != nil {
		r.log.Error("Failed to update slot schedule",
			zap.Error(err),
			zap.String("package_id", packageID.String()),
			zap.String("time", timeLabel),
		)
		return 0, fmt.Errorf("update slot schedule %s %s: %w", packageID.String(), timeLabel, err)
	}

	return tag.RowsAffected(), nil
}

// LockSlot loads a slot with a row lock so concurrent mutations of the same
// slot serialize on the database. Must be called inside a transaction.
func (r *timeSlotRepository) LockSlot(ctx context.Context, q database.Querier, packageType entity.PackageType, packageID uuid.UUID, date, timeLabel string) (*entity.TimeSlot, error) {
	query := `
		SELECT ` + timeSlotColumns + `
		FROM time_slots
		WHERE package_type = $1 AND package_id = $2 AND slot_date = $3 AND slot_time = $4
		FOR UPDATE
	`

	slot, err := scanTimeSlot(q.QueryRow(ctx, query, packageType, packageID, date, timeLabel))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to lock slot",
			zap.Error(err),
			zap.String("package_id", packageID.String()),
			zap.String("date", date),
			zap.String("time", timeLabel),
		)
		return nil, fmt.Errorf("lock slot %s %s %s: %w", packageID.String(), date, timeLabel, err)
	}

	return slot, nil
}

// UpdateCounts writes the new booked count and minimum person. The capacity
// check is repeated in the predicate so an overbooking write can never land,
// even without the row lock. Returns false when the predicate rejects it.
func (r *timeSlotRepository) UpdateCounts(ctx context.Context, q database.Querier, slotID uuid.UUID, bookedCount, minimumPerson int) (bool, error) {
	query := `
		UPDATE time_slots
		SET booked_count = $2, minimum_person = $3, updated_at = NOW()
		WHERE id = $1 AND $2 >= 0 AND $2 <= capacity
	`

	tag, err := q.Exec(ctx, query, slotID, bookedCount, minimumPerson)
	if err != nil {
		r.log.Error("Failed to update slot counts",
			zap.Error(err),
			zap.String("slot_id", slotID.String()),
			zap.Int("booked_count", bookedCount),
		)
		return false, fmt.Errorf("update slot %s counts: %w", slotID.String(), err)
	}

	return tag.RowsAffected() > 0, nil
}
