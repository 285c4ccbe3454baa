package repository

import (
	"tour-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	// DB is exposed so services can open transactions spanning
	// booking writes and slot mutations.
	DB database.PgxIface

	Package       PackageRepository
	TimeSlot      TimeSlotRepository
	Booking       BookingRepository
	WebhookEvent  WebhookEventRepository
	FailedWebhook FailedWebhookEventRepository
	Cart          CartRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		DB:            db,
		Package:       NewPackageRepository(db, log),
		TimeSlot:      NewTimeSlotRepository(db, log),
		Booking:       NewBookingRepository(db, log),
		WebhookEvent:  NewWebhookEventRepository(db, log),
		FailedWebhook: NewFailedWebhookEventRepository(db, log),
		Cart:          NewCartRepository(db, log),
	}
}
