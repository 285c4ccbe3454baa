package usecase

import (
	"context"
	"fmt"
	"time"

	"tour-booking/internal/data/entity"
	"tour-booking/internal/data/repository"
	"tour-booking/internal/dto/request"
	"tour-booking/internal/dto/response"
	"tour-booking/internal/gateway"
	"tour-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AvailabilityService interface {
	// CheckAvailability is a read-only decision: is the requested booking
	// permissible right now? Business rejections come back in the result with
	// a reason, not as errors.
	CheckAvailability(ctx context.Context, req *request.CheckAvailabilityRequest) (*response.AvailabilityResponse, error)

	// GetAvailableSlots returns the bookable departures of a day, with closed
	// slots and departures inside the cutoff window filtered out.
	GetAvailableSlots(ctx context.Context, req *request.GetAvailableSlotsRequest) ([]response.SlotResponse, error)
}

type availabilityService struct {
	repo    *repository.Repository
	catalog gateway.PackageCatalog
	config  utils.BookingConfig
	loc     *time.Location
	now     func() time.Time
	log     *zap.Logger
}

func NewAvailabilityService(repo *repository.Repository, catalog gateway.PackageCatalog, config utils.BookingConfig, loc *time.Location, log *zap.Logger) AvailabilityService {
	return &availabilityService{
		repo:    repo,
		catalog: catalog,
		config:  config,
		loc:     loc,
		now:     time.Now,
		log:     log.With(zap.String("service", "availability")),
	}
}

func (s *availabilityService) CheckAvailability(ctx context.Context, req *request.CheckAvailabilityRequest) (*response.AvailabilityResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Check availability validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %v", ErrValidation, errs)
	}

	packageID, err := uuid.Parse(req.PackageID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid package ID %s", ErrValidation, req.PackageID)
	}

	pkg, err := s.catalog.GetPackage(ctx, entity.PackageType(req.PackageType), packageID)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, fmt.Errorf("%w: package %s", ErrNotFound, req.PackageID)
	}

	slot, err := s.repo.TimeSlot.FindSlot(ctx, pkg.Type, packageID, req.Date, req.Time)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, fmt.Errorf("%w: no slot for %s at %s %s", ErrNotFound, req.PackageID, req.Date, req.Time)
	}

	result := &response.AvailabilityResponse{
		AvailableSpaces: slot.AvailableSpaces(),
		RequiredMinimum: requiredMinimum(pkg, slot),
	}

	if !slot.IsAvailable {
		result.Reason = "departure is closed for booking"
		return result, nil
	}

	if reason := s.cutoffReason(slot); reason != "" {
		result.Reason = reason
		return result, nil
	}

	if req.Persons < result.RequiredMinimum {
		result.Reason = minimumPersonReason(pkg, slot, result.RequiredMinimum)
		return result, nil
	}

	if req.Persons > result.AvailableSpaces {
		result.Reason = fmt.Sprintf("only %d spaces left for this departure", result.AvailableSpaces)
		return result, nil
	}

	result.Available = true

	s.log.Debug("Availability granted",
		zap.String("package_id", req.PackageID),
		zap.String("date", req.Date),
		zap.String("time", req.Time),
		zap.Int("persons", req.Persons),
		zap.Int("available_spaces", result.AvailableSpaces),
	)

	return result, nil
}

func (s *availabilityService) GetAvailableSlots(ctx context.Context, req *request.GetAvailableSlotsRequest) ([]response.SlotResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrValidation, errs)
	}

	packageID, err := uuid.Parse(req.PackageID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid package ID %s", ErrValidation, req.PackageID)
	}

	slots, err := s.repo.TimeSlot.FindByDay(ctx, entity.PackageType(req.PackageType), packageID, req.Date)
	if err != nil {
		return nil, err
	}

	results := make([]response.SlotResponse, 0, len(slots))
	for _, slot := range slots {
		if !slot.IsAvailable || slot.AvailableSpaces() <= 0 {
			continue
		}
		if s.cutoffReason(slot) != "" {
			continue
		}
		results = append(results, response.SlotToResponse(slot))
	}

	return results, nil
}

func (s *availabilityService) cutoffReason(slot *entity.TimeSlot) string {
	reason := departureCutoffReason(slot, s.loc, s.config.CutoffHours, s.now())
	if reason == "invalid departure date or time" {
		s.log.Warn("Unparseable slot date/time, failing closed",
			zap.String("date", slot.Date),
			zap.String("time", slot.Time),
		)
	}
	return reason
}

// requiredMinimum is 1 for private (vehicle-mode) packages; for shared
// packages it is the slot's current floor, which the first booking collapses
// to 1.
func requiredMinimum(pkg *entity.TourPackage, slot *entity.TimeSlot) int {
	if pkg.IsPrivate {
		return 1
	}
	return slot.MinimumPerson
}

func minimumPersonReason(pkg *entity.TourPackage, slot *entity.TimeSlot, required int) string {
	if pkg.IsPrivate {
		return "private booking requires at least 1 person"
	}
	if slot.BookedCount == 0 {
		return fmt.Sprintf("first booking for this departure requires at least %d persons", required)
	}
	return fmt.Sprintf("at least %d persons required for this departure", required)
}
