package usecase

import (
	"context"
	"fmt"
	"time"

	"tour-booking/internal/data/entity"
	"tour-booking/internal/data/repository"
	"tour-booking/internal/dto/request"
	"tour-booking/internal/gateway"
	"tour-booking/pkg/database"
	"tour-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SlotOperation string

const (
	SlotOpAdd      SlotOperation = "add"
	SlotOpSubtract SlotOperation = "subtract"
)

// SlotService owns the slot inventory: bulk generation for the rolling
// horizon, schedule regeneration, package-deletion cleanup, and the single
// authorized write path for booked counts and minimum person.
type SlotService interface {
	GenerateForPackage(ctx context.Context, req *request.GenerateSlotsRequest) (int64, error)
	RegenerateForPackage(ctx context.Context, req *request.GenerateSlotsRequest) error
	DeleteForPackage(ctx context.Context, packageType, packageID string) error

	UpdateSlotBooking(ctx context.Context, packageType, packageID, date, timeLabel string, persons int, op SlotOperation) error

	// UpdateSlotBookingTx runs the mutation inside a caller-owned transaction
	// so a booking write and its slot change commit or fail together.
	UpdateSlotBookingTx(ctx context.Context, q database.Querier, packageType entity.PackageType, packageID uuid.UUID, date, timeLabel string, persons int, op SlotOperation) error
}

type slotService struct {
	repo    *repository.Repository
	catalog gateway.PackageCatalog
	config  utils.BookingConfig
	loc     *time.Location
	now     func() time.Time
	log     *zap.Logger
}

func NewSlotService(repo *repository.Repository, catalog gateway.PackageCatalog, config utils.BookingConfig, loc *time.Location, log *zap.Logger) SlotService {
	return &slotService{
		repo:    repo,
		catalog: catalog,
		config:  config,
		loc:     loc,
		now:     time.Now,
		log:     log.With(zap.String("service", "slot")),
	}
}

// GenerateForPackage creates slot rows for every day in the forward horizon
// that has none yet. Idempotent: days that already have slots are skipped.
// Minimum person always comes from the catalog, never from the caller.
func (s *slotService) GenerateForPackage(ctx context.Context, req *request.GenerateSlotsRequest) (int64, error) {
	pkg, packageID, times, capacity, err := s.resolveSchedule(ctx, req)
	if err != nil {
		return 0, err
	}

	existing, err := s.repo.TimeSlot.FindExistingDates(ctx, pkg.Type, packageID)
	if err != nil {
		return 0, err
	}

	var slots []*entity.TimeSlot
	today := startOfDay(s.now().In(s.loc))
	for day := 1; day <= s.config.HorizonDays; day++ {
		date := today.AddDate(0, 0, day).Format(dateLayout)
		if existing[date] {
			continue
		}
		slots = append(slots, s.buildDay(pkg, packageID, date, times, capacity)...)
	}

	inserted, err := s.repo.TimeSlot.CreateBatch(ctx, slots)
	if err != nil {
		return inserted, err
	}

	s.log.Info("Slots generated",
		zap.String("package_id", packageID.String()),
		zap.Int("horizon_days", s.config.HorizonDays),
		zap.Int64("inserted", inserted),
	)

	return inserted, nil
}

// RegenerateForPackage applies a departure-time or capacity change. Booked
// counts survive for time labels that still exist (clamped to the new
// capacity); removed labels are dropped; minimum person is re-derived only
// for slots without bookings.
func (s *slotService) RegenerateForPackage(ctx context.Context, req *request.GenerateSlotsRequest) error {
	pkg, packageID, times, capacity, err := s.resolveSchedule(ctx, req)
	if err != nil {
		return err
	}

	removed, err := s.repo.TimeSlot.DeleteByPackageExceptTimes(ctx, pkg.Type, packageID, times)
	if err != nil {
		return err
	}

	for _, timeLabel := range times {
		if _, err := s.repo.TimeSlot.UpdateScheduleByTime(ctx, pkg.Type, packageID, timeLabel, capacity, pkg.MinimumPerson); err != nil {
			return err
		}
	}

	// Fill labels and days the old schedule did not have; existing rows are
	// skipped by the insert's conflict clause.
	var slots []*entity.TimeSlot
	today := startOfDay(s.now().In(s.loc))
	for day := 1; day <= s.config.HorizonDays; day++ {
		date := today.AddDate(0, 0, day).Format(dateLayout)
		slots = append(slots, s.buildDay(pkg, packageID, date, times, capacity)...)
	}

	inserted, err := s.repo.TimeSlot.CreateBatch(ctx, slots)
	if err != nil {
		return err
	}

	s.log.Info("Slots regenerated",
		zap.String("package_id", packageID.String()),
		zap.Int64("removed", removed),
		zap.Int64("inserted", inserted),
		zap.Int("capacity", capacity),
	)

	return nil
}

// DeleteForPackage removes all slots of a deleted package. Non-critical: a
// failure is logged and must not roll back the package deletion.
func (s *slotService) DeleteForPackage(ctx context.Context, packageType, packageID string) error {
	id, err := uuid.Parse(packageID)
	if err != nil {
		return fmt.Errorf("%w: invalid package ID %s", ErrValidation, packageID)
	}

	pt := entity.PackageType(packageType)
	if !pt.Valid() {
		return fmt.Errorf("%w: invalid package type %s", ErrValidation, packageType)
	}

	deleted, err := s.repo.TimeSlot.DeleteByPackage(ctx, pt, id)
	if err != nil {
		s.log.Warn("Slot cleanup failed, package deletion proceeds",
			zap.Error(err),
			zap.String("package_id", packageID),
		)
		return nil
	}

	s.log.Info("Slots deleted with package",
		zap.String("package_id", packageID),
		zap.Int64("deleted", deleted),
	)

	return nil
}

func (s *slotService) UpdateSlotBooking(ctx context.Context, packageType, packageID, date, timeLabel string, persons int, op SlotOperation) error {
	id, err := uuid.Parse(packageID)
	if err != nil {
		return fmt.Errorf("%w: invalid package ID %s", ErrValidation, packageID)
	}

	pt := entity.PackageType(packageType)
	if !pt.Valid() {
		return fmt.Errorf("%w: invalid package type %s", ErrValidation, packageType)
	}

	tx, err := s.repo.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin slot mutation: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.UpdateSlotBookingTx(ctx, tx, pt, id, date, timeLabel, persons, op); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *slotService) UpdateSlotBookingTx(ctx context.Context, q database.Querier, packageType entity.PackageType, packageID uuid.UUID, date, timeLabel string, persons int, op SlotOperation) error {
	if persons <= 0 {
		return fmt.Errorf("%w: persons count must be positive", ErrValidation)
	}
	if op != SlotOpAdd && op != SlotOpSubtract {
		return fmt.Errorf("%w: unknown slot operation %q", ErrValidation, op)
	}

	// Vehicle mode and the configured minimum are re-fetched here; the values
	// baked into the slot at creation time may have drifted.
	pkg, err := s.catalog.GetPackage(ctx, packageType, packageID)
	if err != nil {
		return err
	}
	if pkg == nil {
		return fmt.Errorf("%w: package %s", ErrNotFound, packageID.String())
	}

	slot, err := s.repo.TimeSlot.LockSlot(ctx, q, packageType, packageID, date, timeLabel)
	if err != nil {
		return err
	}
	if slot == nil {
		return fmt.Errorf("%w: no slot for %s at %s %s", ErrNotFound, packageID.String(), date, timeLabel)
	}

	// Captured before the write; the transition rules below key off it.
	wasEmpty := slot.BookedCount == 0

	var newBooked int
	switch op {
	case SlotOpAdd:
		newBooked = slot.BookedCount + persons
		if newBooked > slot.Capacity {
			return fmt.Errorf("%w: %d requested, %d available", ErrCapacityExceeded, persons, slot.AvailableSpaces())
		}
	case SlotOpSubtract:
		newBooked = slot.BookedCount - persons
		if newBooked < 0 {
			newBooked = 0
		}
	}

	newMinimum := slot.MinimumPerson
	if op == SlotOpAdd && wasEmpty && !pkg.IsPrivate {
		// First booking unlocks the slot for smaller subsequent parties.
		newMinimum = 1
	}
	if op == SlotOpSubtract && !wasEmpty && newBooked == 0 {
		// Fully cancelled back to empty: restore the package's configured floor.
		newMinimum = pkg.MinimumPerson
	}

	if newBooked == 0 && newMinimum > slot.Capacity {
		return fmt.Errorf("%w: minimum of %d exceeds slot capacity %d", ErrMinimumPerson, newMinimum, slot.Capacity)
	}

	updated, err := s.repo.TimeSlot.UpdateCounts(ctx, q, slot.ID, newBooked, newMinimum)
	if err != nil {
		return err
	}
	if !updated {
		return fmt.Errorf("%w: slot %s changed concurrently", ErrConflict, slot.ID.String())
	}

	s.log.Info("Slot booking updated",
		zap.String("package_id", packageID.String()),
		zap.String("date", date),
		zap.String("time", timeLabel),
		zap.String("operation", string(op)),
		zap.Int("persons", persons),
		zap.Int("booked_count", newBooked),
		zap.Int("minimum_person", newMinimum),
	)

	return nil
}

// resolveSchedule validates the request and fills departure times and
// capacity from the catalog when the caller did not override them.
func (s *slotService) resolveSchedule(ctx context.Context, req *request.GenerateSlotsRequest) (*entity.TourPackage, uuid.UUID, []string, int, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, uuid.Nil, nil, 0, fmt.Errorf("%w: %v", ErrValidation, errs)
	}

	packageID, err := uuid.Parse(req.PackageID)
	if err != nil {
		return nil, uuid.Nil, nil, 0, fmt.Errorf("%w: invalid package ID %s", ErrValidation, req.PackageID)
	}

	pkg, err := s.catalog.GetPackage(ctx, entity.PackageType(req.PackageType), packageID)
	if err != nil {
		return nil, uuid.Nil, nil, 0, err
	}
	if pkg == nil {
		return nil, uuid.Nil, nil, 0, fmt.Errorf("%w: package %s", ErrNotFound, req.PackageID)
	}

	times := req.DepartureTimes
	if len(times) == 0 {
		times = pkg.DepartureTimes
	}
	if len(times) == 0 {
		return nil, uuid.Nil, nil, 0, fmt.Errorf("%w: package %s has no departure times", ErrValidation, req.PackageID)
	}

	capacity := req.Capacity
	if capacity <= 0 {
		capacity = pkg.MaximumPerson
	}
	if capacity <= 0 {
		return nil, uuid.Nil, nil, 0, fmt.Errorf("%w: package %s has no capacity", ErrValidation, req.PackageID)
	}

	return pkg, packageID, times, capacity, nil
}

func (s *slotService) buildDay(pkg *entity.TourPackage, packageID uuid.UUID, date string, times []string, capacity int) []*entity.TimeSlot {
	now := s.now()
	slots := make([]*entity.TimeSlot, 0, len(times))
	for _, timeLabel := range times {
		price := pkg.BasePrice
		slots = append(slots, &entity.TimeSlot{
			ID:            uuid.New(),
			PackageType:   pkg.Type,
			PackageID:     packageID,
			Date:          date,
			Time:          timeLabel,
			Capacity:      capacity,
			BookedCount:   0,
			IsAvailable:   true,
			MinimumPerson: pkg.MinimumPerson,
			Price:         &price,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}
	return slots
}
