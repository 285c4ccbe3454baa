package wire

import (
	"tour-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wirePayment(r chi.Router, paymentHandler *adaptor.PaymentHandler) {
	// POST /api/webhooks/payment - Signed gateway events
	r.Post("/api/webhooks/payment", paymentHandler.HandleWebhook)

	// POST /api/payments/confirm - Client-side confirmation after checkout
	r.Post("/api/payments/confirm", paymentHandler.ConfirmPayment)
}
