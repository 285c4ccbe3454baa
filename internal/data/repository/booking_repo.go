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

type BookingRepository interface {
	Create(ctx context.Context, q database.Querier, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByOrderID(ctx context.Context, orderID string) (*entity.Booking, error)
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*entity.Booking, error)
	ExistsForSlot(ctx context.Context, q database.Querier, email string, packageType entity.PackageType, packageID uuid.UUID, date, timeLabel string) (bool, error)
	UpdateStatus(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus) error
	SetPaymentStatus(ctx context.Context, bookingID uuid.UUID, status entity.PaymentStatus) error
	SetConfirmationEmailSent(ctx context.Context, bookingID uuid.UUID) error

	// MarkPaymentSucceeded flips a pending/processing payment to succeeded and
	// confirms the booking in one conditional write. Returns false when no row
	// transitioned, i.e. the payment was already reconciled by a racing caller.
	MarkPaymentSucceeded(ctx context.Context, q database.Querier, paymentIntentID string) (bool, error)
	MarkPaymentFailed(ctx context.Context, paymentIntentID string) (bool, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, order_id, package_type, package_id, slot_date, slot_time, adults, children,
	full_name, email, phone, status, payment_status, payment_intent_id, is_private,
	confirmation_email_sent, total_amount, currency, created_at, updated_at`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.OrderID,
		&booking.PackageType,
		&booking.PackageID,
		&booking.Date,
		&booking.Time,
		&booking.Adults,
		&booking.Children,
		&booking.FullName,
		&booking.Email,
		&booking.Phone,
		&booking.Status,
		&booking.PaymentStatus,
		&booking.PaymentIntentID,
		&booking.IsPrivate,
		&booking.ConfirmationEmailSent,
		&booking.TotalAmount,
		&booking.Currency,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) Create(ctx context.Context, q database.Querier, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, order_id, package_type, package_id, slot_date, slot_time, adults,
			children, full_name, email, phone, status, payment_status, payment_intent_id, is_private,
			confirmation_email_sent, total_amount, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	if q == nil {
		q = r.db
	}

	_, err := q.Exec(ctx, query,
		booking.ID,
		booking.OrderID,
		booking.PackageType,
		booking.PackageID,
		booking.Date,
		booking.Time,
		booking.Adults,
		booking.Children,
		booking.FullName,
		booking.Email,
		booking.Phone,
		booking.Status,
		booking.PaymentStatus,
		booking.PaymentIntentID,
		booking.IsPrivate,
		booking.ConfirmationEmailSent,
		booking.TotalAmount,
		booking.Currency,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("order_id", booking.OrderID),
			zap.String("email", booking.Email),
		)
		return fmt.Errorf("create booking %s: %w", booking.OrderID, err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 AND deleted_at IS NULL`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByOrderID(ctx context.Context, orderID string) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE order_id = $1 AND deleted_at IS NULL`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, orderID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by order ID",
			zap.Error(err),
			zap.String("order_id", orderID),
		)
		return nil, fmt.Errorf("find booking by order ID %s: %w", orderID, err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE payment_intent_id = $1 AND deleted_at IS NULL`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, paymentIntentID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by payment intent ID",
			zap.Error(err),
			zap.String("payment_intent_id", paymentIntentID),
		)
		return nil, fmt.Errorf("find booking by payment intent %s: %w", paymentIntentID, err)
	}

	return booking, nil
}

func (r *bookingRepository) ExistsForSlot(ctx context.Context, q database.Querier, email string, packageType entity.PackageType, packageID uuid.UUID, date, timeLabel string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE email = $1 AND package_type = $2 AND package_id = $3
			  AND slot_date = $4 AND slot_time = $5
			  AND status IN ('pending', 'confirmed')
			  AND deleted_at IS NULL
		)
	`

	if q == nil {
		q = r.db
	}

	var exists bool
	err := q.QueryRow(ctx, query, email, packageType, packageID, date, timeLabel).Scan(&exists)
	if err != nil {
		r.log.Error("Failed to check duplicate booking",
			zap.Error(err),
			zap.String("email", email),
			zap.String("package_id", packageID.String()),
		)
		return false, fmt.Errorf("check duplicate booking: %w", err)
	}

	return exists, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus) error {
	query := `UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, bookingID, status)
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update booking %s status to %s: %w", bookingID.String(), string(status), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", bookingID.String())
	}

	return nil
}

func (r *bookingRepository) SetPaymentStatus(ctx context.Context, bookingID uuid.UUID, status entity.PaymentStatus) error {
	query := `UPDATE bookings SET payment_status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, bookingID, status)
	if err != nil {
		r.log.Error("Failed to update payment status",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("payment_status", string(status)),
		)
		return fmt.Errorf("update booking %s payment status to %s: %w", bookingID.String(), string(status), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", bookingID.String())
	}

	return nil
}

func (r *bookingRepository) SetConfirmationEmailSent(ctx context.Context, bookingID uuid.UUID) error {
	query := `UPDATE bookings SET confirmation_email_sent = TRUE, updated_at = NOW() WHERE id = $1`

	_, err := r.db.Exec(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to set confirmation email flag",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return fmt.Errorf("set confirmation email flag for %s: %w", bookingID.String(), err)
	}

	return nil
}

func (r *bookingRepository) MarkPaymentSucceeded(ctx context.Context, q database.Querier, paymentIntentID string) (bool, error) {
	query := `
		UPDATE bookings
		SET payment_status = 'succeeded', status = 'confirmed', updated_at = NOW()
		WHERE payment_intent_id = $1
		  AND payment_status IN ('pending', 'processing')
		  AND deleted_at IS NULL
	`

	if q == nil {
		q = r.db
	}

	tag, err := q.Exec(ctx, query, paymentIntentID)
	if err != nil {
		r.log.Error("Failed to mark payment succeeded",
			zap.Error(err),
			zap.String("payment_intent_id", paymentIntentID),
		)
		return false, fmt.Errorf("mark payment %s succeeded: %w", paymentIntentID, err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *bookingRepository) MarkPaymentFailed(ctx context.Context, paymentIntentID string) (bool, error) {
	query := `
		UPDATE bookings
		SET payment_status = 'failed', updated_at = NOW()
		WHERE payment_intent_id = $1
		  AND payment_status IN ('pending', 'processing')
		  AND deleted_at IS NULL
	`

	tag, err := r.db.Exec(ctx, query, paymentIntentID)
	if err != nil {
		r.log.Error("Failed to mark payment failed",
			zap.Error(err),
			zap.String("payment_intent_id", paymentIntentID),
		)
		return false, fmt.Errorf("mark payment %s failed: %w", paymentIntentID, err)
	}

	return tag.RowsAffected() > 0, nil
}
