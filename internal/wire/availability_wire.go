package wire

import (
	"tour-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAvailability(r chi.Router, availabilityHandler *adaptor.AvailabilityHandler) {
	// POST /api/availability/check - Can this party book this departure?
	r.Post("/api/availability/check", availabilityHandler.CheckAvailability)

	// GET /api/availability/slots - Bookable departures for a day
	r.Get("/api/availability/slots", availabilityHandler.GetAvailableSlots)
}
