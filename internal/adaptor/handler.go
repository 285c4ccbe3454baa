package adaptor

import (
	"errors"
	"net/http"

	"tour-booking/internal/usecase"
	"tour-booking/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Availability *AvailabilityHandler
	Slot         *SlotHandler
	Payment      *PaymentHandler
	Cart         *CartHandler
	FailedEvent  *FailedEventHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Availability: NewAvailabilityHandler(service.Availability, log),
		Slot:         NewSlotHandler(service.Slot, log),
		Payment:      NewPaymentHandler(service.Reconciler, log),
		Cart:         NewCartHandler(service.Cart, log),
		FailedEvent:  NewFailedEventHandler(service.FailedEvent, log),
	}
}

// handleServiceError maps the service error taxonomy onto HTTP statuses.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	errMsg := err.Error()

	switch {
	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseNotFound(w, errMsg)

	case errors.Is(err, usecase.ErrValidation):
		log.Warn(operation+" validation failed",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, errMsg, nil)

	case errors.Is(err, usecase.ErrCapacityExceeded),
		errors.Is(err, usecase.ErrMinimumPerson),
		errors.Is(err, usecase.ErrBookingCutoff):
		log.Warn(operation+" rejected by booking rules",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, errMsg, nil)

	case errors.Is(err, usecase.ErrConflict):
		log.Warn(operation+" lost a concurrent update",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseJSON(w, http.StatusConflict, false, errMsg, nil, nil)

	case errors.Is(err, usecase.ErrInvalidSignature):
		log.Warn(operation+" signature rejected",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, errMsg, nil)

	default:
		log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
