package entity

import (
	"time"

	"github.com/google/uuid"
)

// TimeSlot is one bookable departure (date + time) for a package.
// The set of rows sharing (package_type, package_id, date) forms the per-day
// aggregate. Dates are YYYY-MM-DD strings in the business timezone.
//
// Invariants: 0 <= BookedCount <= Capacity, MinimumPerson >= 1, and once a
// non-private slot has its first booking MinimumPerson collapses to 1.
type TimeSlot struct {
	ID            uuid.UUID   `db:"id"`
	PackageType   PackageType `db:"package_type"`
	PackageID     uuid.UUID   `db:"package_id"`
	Date          string      `db:"slot_date"`
	Time          string      `db:"slot_time"`
	Capacity      int         `db:"capacity"`
	BookedCount   int         `db:"booked_count"`
	IsAvailable   bool        `db:"is_available"`
	MinimumPerson int         `db:"minimum_person"`
	CutoffTime    *string     `db:"cutoff_time"`
	Price         *float64    `db:"price"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
}

// AvailableSpaces returns the remaining capacity of the slot.
func (s *TimeSlot) AvailableSpaces() int {
	return s.Capacity - s.BookedCount
}
