package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tour-booking/internal/data/entity"
	"tour-booking/internal/data/repository"
	"tour-booking/internal/dto/request"
	"tour-booking/internal/dto/response"
	"tour-booking/internal/gateway"
	"tour-booking/pkg/database"
	"tour-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartService turns a user's cart into bookings in one pass. Items that fail
// a business rule become warnings and stay in the cart for retry; only booked
// items are removed. The whole batch shares one transaction so a booked item
// and its slot increment are never split.
type CartService interface {
	BookCartItems(ctx context.Context, req *request.BookCartRequest) (*response.CartBookingResponse, error)
}

type cartService struct {
	repo     *repository.Repository
	catalog  gateway.PackageCatalog
	notifier gateway.Notifier
	slots    SlotService
	config   utils.BookingConfig
	loc      *time.Location
	now      func() time.Time
	log      *zap.Logger
}

func NewCartService(
	repo *repository.Repository,
	catalog gateway.PackageCatalog,
	notifier gateway.Notifier,
	slots SlotService,
	config utils.BookingConfig,
	loc *time.Location,
	log *zap.Logger,
) CartService {
	return &cartService{
		repo:     repo,
		catalog:  catalog,
		notifier: notifier,
		slots:    slots,
		config:   config,
		loc:      loc,
		now:      time.Now,
		log:      log.With(zap.String("service", "cart")),
	}
}

func (s *cartService) BookCartItems(ctx context.Context, req *request.BookCartRequest) (*response.CartBookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrValidation, errs)
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user ID %s", ErrValidation, req.UserID)
	}

	items, err := s.repo.Cart.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrValidation)
	}

	tx, err := s.repo.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin cart booking: %w", err)
	}
	defer tx.Rollback(ctx)

	result := &response.CartBookingResponse{}
	var bookedItemIDs []uuid.UUID
	var summaries []*gateway.BookingSummary

	for _, item := range items {
		booking, warning, err := s.bookItem(ctx, tx, req, item)
		if err != nil {
			// Infrastructure failure aborts the whole batch; nothing commits.
			return nil, err
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s %s %s: %s", item.PackageID.String(), item.Date, item.Time, warning))
			continue
		}

		bookedItemIDs = append(bookedItemIDs, item.ID)
		result.BookingIDs = append(result.BookingIDs, booking.ID.String())
		summaries = append(summaries, &gateway.BookingSummary{
			BookingID:   booking.ID.String(),
			OrderID:     booking.OrderID,
			PackageID:   booking.PackageID.String(),
			PackageType: string(booking.PackageType),
			Date:        booking.Date,
			Time:        booking.Time,
			FullName:    booking.FullName,
			Email:       booking.Email,
			Adults:      booking.Adults,
			Children:    booking.Children,
			TotalAmount: booking.TotalAmount,
			Currency:    booking.Currency,
		})
	}

	if len(bookedItemIDs) == 0 {
		result.Errors = append(result.Errors, "no cart items could be booked")
		s.log.Warn("Cart booking produced no bookings",
			zap.String("user_id", req.UserID),
			zap.Strings("warnings", result.Warnings),
		)
		return result, nil
	}

	// Only successfully booked items leave the cart.
	if err := s.repo.Cart.DeleteItems(ctx, tx, bookedItemIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit cart booking: %w", err)
	}

	result.Success = true

	s.log.Info("Cart booked",
		zap.String("user_id", req.UserID),
		zap.Int("booked", len(result.BookingIDs)),
		zap.Int("skipped", len(result.Warnings)),
	)

	// One consolidated confirmation for the batch, best effort.
	if err := s.notifier.SendCartConfirmation(ctx, summaries); err != nil {
		s.log.Warn("Cart confirmation notification failed",
			zap.Error(err),
			zap.String("user_id", req.UserID),
		)
	}

	return result, nil
}

// bookItem books one cart item inside the shared transaction. A non-empty
// warning means the item was skipped for a business reason and the
// transaction stays usable; an error aborts the batch.
func (s *cartService) bookItem(ctx context.Context, q database.Querier, req *request.BookCartRequest, item *entity.CartItem) (*entity.Booking, string, error) {
	pkg, err := s.catalog.GetPackage(ctx, item.PackageType, item.PackageID)
	if err != nil {
		return nil, "", err
	}
	if pkg == nil {
		return nil, "package no longer exists", nil
	}

	slot, err := s.repo.TimeSlot.FindSlot(ctx, item.PackageType, item.PackageID, item.Date, item.Time)
	if err != nil {
		return nil, "", err
	}
	if slot == nil {
		return nil, "no departure slot for this date and time", nil
	}

	if !slot.IsAvailable {
		return nil, "departure is closed for booking", nil
	}

	if reason := departureCutoffReason(slot, s.loc, s.config.CutoffHours, s.now()); reason != "" {
		return nil, reason, nil
	}

	persons := item.Adults + item.Children
	if required := requiredMinimum(pkg, slot); persons < required {
		return nil, minimumPersonReason(pkg, slot, required), nil
	}

	duplicate, err := s.repo.Booking.ExistsForSlot(ctx, q, req.Email, item.PackageType, item.PackageID, item.Date, item.Time)
	if err != nil {
		return nil, "", err
	}
	if duplicate {
		return nil, "already booked for this departure", nil
	}

	units := persons
	if pkg.IsPrivate {
		units = 1
	}

	err = s.slots.UpdateSlotBookingTx(ctx, q, item.PackageType, item.PackageID, item.Date, item.Time, units, SlotOpAdd)
	if err != nil {
		// Business rejections leave the transaction clean; report and skip.
		switch {
		case errors.Is(err, ErrCapacityExceeded),
			errors.Is(err, ErrMinimumPerson),
			errors.Is(err, ErrNotFound):
			return nil, err.Error(), nil
		}
		return nil, "", err
	}

	price := pkg.BasePrice
	if slot.Price != nil {
		price = *slot.Price
	}

	now := s.now()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OrderID:       utils.GenerateOrderID(),
		PackageType:   item.PackageType,
		PackageID:     item.PackageID,
		Date:          item.Date,
		Time:          item.Time,
		Adults:        item.Adults,
		Children:      item.Children,
		FullName:      req.FullName,
		Email:         req.Email,
		Phone:         req.Phone,
		Status:        entity.BookingStatusConfirmed,
		PaymentStatus: entity.PaymentStatusPending,
		IsPrivate:     pkg.IsPrivate,
		TotalAmount:   price * float64(units),
		Currency:      "USD",
	}

	if err := s.repo.Booking.Create(ctx, q, booking); err != nil {
		return nil, "", err
	}

	return booking, "", nil
}
