package usecase

import (
	"tour-booking/internal/data/repository"
	"tour-booking/internal/gateway"
	"tour-booking/pkg/utils"

	"go.uber.org/zap"
)

// Service bundles the use cases for wiring.
type Service struct {
	Availability AvailabilityService
	Slot         SlotService
	Reconciler   ReconcilerService
	Cart         CartService
	FailedEvent  FailedEventService
}

func NewService(
	repo *repository.Repository,
	catalog gateway.PackageCatalog,
	payments gateway.PaymentGateway,
	notifier gateway.Notifier,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	loc := loadBusinessLocation(config.Booking.Timezone, log)

	slot := NewSlotService(repo, catalog, config.Booking, loc, log)
	reconciler := NewReconcilerService(repo, catalog, payments, notifier, slot, config.Payment, log)

	return &Service{
		Availability: NewAvailabilityService(repo, catalog, config.Booking, loc, log),
		Slot:         slot,
		Reconciler:   reconciler,
		Cart:         NewCartService(repo, catalog, notifier, slot, config.Booking, loc, log),
		FailedEvent:  NewFailedEventService(repo, reconciler, log),
	}
}
