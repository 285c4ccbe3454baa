package wire

import (
	"tour-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireSlot(r chi.Router, slotHandler *adaptor.SlotHandler) {
	// Slot inventory management, called by the catalog service on package
	// create/update/delete.
	r.Route("/api/admin/slots", func(r chi.Router) {
		// POST /api/admin/slots/generate - Create slots for the forward horizon
		r.Post("/generate", slotHandler.GenerateSlots)

		// PUT /api/admin/slots/regenerate - Apply a schedule change
		r.Put("/regenerate", slotHandler.RegenerateSlots)

		// POST /api/admin/slots/booking - Adjust booked counts directly
		r.Post("/booking", slotHandler.UpdateSlotBooking)

		// DELETE /api/admin/slots/{packageType}/{packageID} - Package deleted
		r.Delete("/{packageType}/{packageID}", slotHandler.DeleteSlots)
	})
}
