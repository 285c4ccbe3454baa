package usecase

import (
	"fmt"
	"time"

	"tour-booking/internal/data/entity"

	"go.uber.org/zap"
)

// All dates and departure times are interpreted in one canonical business
// timezone regardless of client-supplied offsets; storing calendar dates as
// plain strings keyed to that zone avoids off-by-one-day defects.
const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

func loadBusinessLocation(name string, log *zap.Logger) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warn("Unknown business timezone, falling back to UTC", zap.String("timezone", name))
		return time.UTC
	}
	return loc
}

// parseDeparture combines a date and a time label into a concrete instant in
// the business timezone.
func parseDeparture(date, timeLabel string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+timeLabel, loc)
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// departureCutoffReason applies the booking cutoff rule: dates strictly from
// tomorrow onward, and only while now is more than the cutoff window before
// departure. Fails closed on any parse ambiguity. Empty string means bookable.
func departureCutoffReason(slot *entity.TimeSlot, loc *time.Location, cutoffHours int, now time.Time) string {
	label := slot.Time
	if slot.CutoffTime != nil && *slot.CutoffTime != "" {
		label = *slot.CutoffTime
	}

	departure, err := parseDeparture(slot.Date, label, loc)
	if err != nil {
		return "invalid departure date or time"
	}

	now = now.In(loc)
	tomorrow := startOfDay(now).AddDate(0, 0, 1)
	if departure.Before(tomorrow) {
		return "bookings must be made at least one day in advance"
	}

	cutoff := departure.Add(-time.Duration(cutoffHours) * time.Hour)
	if !now.Before(cutoff) {
		return fmt.Sprintf("bookings close %d hours before departure", cutoffHours)
	}

	return ""
}
