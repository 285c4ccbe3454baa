package entity

import (
	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusSucceeded  PaymentStatus = "succeeded"
	PaymentStatusFailed     PaymentStatus = "failed"
)

type Booking struct {
	Base
	OrderID               string        `db:"order_id"`
	PackageType           PackageType   `db:"package_type"`
	PackageID             uuid.UUID     `db:"package_id"`
	Date                  string        `db:"slot_date"`
	Time                  string        `db:"slot_time"`
	Adults                int           `db:"adults"`
	Children              int           `db:"children"`
	FullName              string        `db:"full_name"`
	Email                 string        `db:"email"`
	Phone                 string        `db:"phone"`
	Status                BookingStatus `db:"status"`
	PaymentStatus         PaymentStatus `db:"payment_status"`
	PaymentIntentID       *string       `db:"payment_intent_id"`
	IsPrivate             bool          `db:"is_private"`
	ConfirmationEmailSent bool          `db:"confirmation_email_sent"`
	TotalAmount           float64       `db:"total_amount"`
	Currency              string        `db:"currency"`
}

// PartySize is the number of travellers on the booking.
func (b *Booking) PartySize() int {
	return b.Adults + b.Children
}

// SlotUnits is the capacity consumed by the booking: one vehicle unit for
// private packages, one seat per traveller otherwise.
func (b *Booking) SlotUnits() int {
	if b.IsPrivate {
		return 1
	}
	return b.PartySize()
}
