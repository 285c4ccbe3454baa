package wire

import (
	"tour-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireFailedEvent(r chi.Router, failedEventHandler *adaptor.FailedEventHandler) {
	// Operator ledger of payments that could not be reconciled.
	r.Route("/api/admin/failed-events", func(r chi.Router) {
		// GET /api/admin/failed-events - List, filter by ?resolved=
		r.Get("/", failedEventHandler.ListFailedEvents)

		// GET /api/admin/failed-events/{id} - Inspect one entry
		r.Get("/{id}", failedEventHandler.GetFailedEvent)

		// POST /api/admin/failed-events/{id}/retry - Replay reconciliation
		r.Post("/{id}/retry", failedEventHandler.RetryFailedEvent)

		// POST /api/admin/failed-events/{id}/resolve - Close out of band
		r.Post("/{id}/resolve", failedEventHandler.ResolveFailedEvent)
	})
}
