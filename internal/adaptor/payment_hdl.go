package adaptor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"tour-booking/internal/dto/request"
	"tour-booking/internal/usecase"
	"tour-booking/pkg/utils"

	"go.uber.org/zap"
)

// webhookBodyLimit caps gateway payload reads.
const webhookBodyLimit = 1 << 20

type PaymentHandler struct {
	service usecase.ReconcilerService
	log     *zap.Logger
}

func NewPaymentHandler(service usecase.ReconcilerService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log.With(zap.String("handler", "payment")),
	}
}

// HandleWebhook handles POST /api/webhooks/payment (gateway only).
//
// Status codes drive the gateway's retry loop: 2xx acknowledges, 4xx drops
// the delivery, 5xx schedules a retry. Contained reconciliation failures are
// acknowledged because the durable ledger owns the recovery from there.
func (h *PaymentHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, webhookBodyLimit))
	if err != nil {
		utils.ResponseBadRequest(w, "Unable to read request body", nil)
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		utils.ResponseBadRequest(w, "Missing signature header", nil)
		return
	}

	err = h.service.HandleGatewayWebhook(r.Context(), payload, signature)
	switch {
	case err == nil:
		utils.ResponseSuccess(w, "received", nil)
	case errors.Is(err, usecase.ErrInvalidSignature),
		errors.Is(err, usecase.ErrValidation):
		handleServiceError(w, h.log, err, "handle payment webhook")
	default:
		// Infrastructure failure before anything durable was recorded; let
		// the gateway retry.
		h.log.Error("Webhook processing failed", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// ConfirmPayment handles POST /api/payments/confirm (public)
func (h *PaymentHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req request.ConfirmPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	booking, err := h.service.ConfirmPayment(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "confirm payment")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}
