package usecase

import (
	"context"
	"testing"
	"time"

	"tour-booking/internal/data/entity"
	"tour-booking/internal/dto/request"
	"tour-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func testBookingConfig() utils.BookingConfig {
	return utils.BookingConfig{Timezone: "UTC", CutoffHours: 10, HorizonDays: 90}
}

func sharedTourPackage() *entity.TourPackage {
	return &entity.TourPackage{
		Base:           entity.Base{ID: uuid.New()},
		Name:           "Phi Phi Island Day Trip",
		Type:           entity.PackageTypeTour,
		MaximumPerson:  10,
		MinimumPerson:  4,
		DepartureTimes: []string{"08:00", "13:00"},
		BasePrice:      1500,
	}
}

func newAvailabilityService(env *testEnv, catalog *fakeCatalog) *availabilityService {
	svc := NewAvailabilityService(env.repo, catalog, testBookingConfig(), time.UTC, zap.NewNop()).(*availabilityService)
	svc.now = func() time.Time { return testNow }
	return svc
}

func seedSlot(env *testEnv, pkg *entity.TourPackage, date, timeLabel string, capacity, booked, minimum int) *entity.TimeSlot {
	slot := &entity.TimeSlot{
		ID:            uuid.New(),
		PackageType:   pkg.Type,
		PackageID:     pkg.ID,
		Date:          date,
		Time:          timeLabel,
		Capacity:      capacity,
		BookedCount:   booked,
		IsAvailable:   true,
		MinimumPerson: minimum,
	}
	env.slots.put(slot)
	return slot
}

func checkReq(pkg *entity.TourPackage, date, timeLabel string, persons int) *request.CheckAvailabilityRequest {
	return &request.CheckAvailabilityRequest{
		PackageType: string(pkg.Type),
		PackageID:   pkg.ID.String(),
		Date:        date,
		Time:        timeLabel,
		Persons:     persons,
	}
}

func TestCheckAvailabilityMinimumPerson(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	pkg := sharedTourPackage()
	svc := newAvailabilityService(env, newFakeCatalog(pkg))

	seedSlot(env, pkg, "2026-09-05", "08:00", 10, 0, 4)

	t.Run("party below the first-booking minimum is rejected", func(t *testing.T) {
		result, err := svc.CheckAvailability(ctx, checkReq(pkg, "2026-09-05", "08:00", 2))
		require.NoError(t, err)
		assert.False(t, result.Available)
		assert.Equal(t, 4, result.RequiredMinimum)
		assert.Contains(t, result.Reason, "at least 4 persons")
	})

	t.Run("party meeting the minimum is accepted", func(t *testing.T) {
		result, err := svc.CheckAvailability(ctx, checkReq(pkg, "2026-09-05", "08:00", 4))
		require.NoError(t, err)
		assert.True(t, result.Available)
		assert.Empty(t, result.Reason)
	})

	t.Run("after the first booking a party of one is enough", func(t *testing.T) {
		seedSlot(env, pkg, "2026-09-06", "08:00", 10, 4, 1)

		result, err := svc.CheckAvailability(ctx, checkReq(pkg, "2026-09-06", "08:00", 1))
		require.NoError(t, err)
		assert.True(t, result.Available)
		assert.Equal(t, 1, result.RequiredMinimum)
	})

	t.Run("private package requires only one person", func(t *testing.T) {
		private := sharedTourPackage()
		private.IsPrivate = true
		private.MinimumPerson = 4
		svc := newAvailabilityService(env, newFakeCatalog(private))
		seedSlot(env, private, "2026-09-05", "08:00", 3, 0, 4)

		result, err := svc.CheckAvailability(ctx, checkReq(private, "2026-09-05", "08:00", 1))
		require.NoError(t, err)
		assert.True(t, result.Available)
		assert.Equal(t, 1, result.RequiredMinimum)
	})
}

func TestCheckAvailabilityCapacity(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	pkg := sharedTourPackage()
	svc := newAvailabilityService(env, newFakeCatalog(pkg))

	seedSlot(env, pkg, "2026-09-05", "08:00", 10, 7, 1)

	t.Run("party exceeding remaining spaces is rejected", func(t *testing.T) {
		result, err := svc.CheckAvailability(ctx, checkReq(pkg, "2026-09-05", "08:00", 4))
		require.NoError(t, err)
		assert.False(t, result.Available)
		assert.Equal(t, 3, result.AvailableSpaces)
		assert.Contains(t, result.Reason, "only 3 spaces left")
	})

	t.Run("party fitting exactly is accepted", func(t *testing.T) {
		result, err := svc.CheckAvailability(ctx, checkReq(pkg, "2026-09-05", "08:00", 3))
		require.NoError(t, err)
		assert.True(t, result.Available)
	})
}

func TestCheckAvailabilityCutoff(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	pkg := sharedTourPackage()
	svc := newAvailabilityService(env, newFakeCatalog(pkg))

	t.Run("same-day departure is rejected", func(t *testing.T) {
		seedSlot(env, pkg, "2026-09-01", "23:00", 10, 0, 4)

		result, err := svc.CheckAvailability(ctx, checkReq(pkg, "2026-09-01", "23:00", 4))
		require.NoError(t, err)
		assert.False(t, result.Available)
		assert.Contains(t, result.Reason, "one day in advance")
	})

	t.Run("tomorrow inside the cutoff window is rejected", func(t *testing.T) {
		// Departure 2026-09-02 08:00, cutoff 10h before = 2026-09-01 22:00.
		// Now is 12:00, so still bookable; shift now past the cutoff.
		seedSlot(env, pkg, "2026-09-02", "08:00", 10, 0, 4)
		svc.now = func() time.Time { return time.Date(2026, 9, 1, 23, 0, 0, 0, time.UTC) }
		defer func() { svc.now = func() time.Time { return testNow } }()

		result, err := svc.CheckAvailability(ctx, checkReq(pkg, "2026-09-02", "08:00", 4))
		require.NoError(t, err)
		assert.False(t, result.Available)
		assert.Contains(t, result.Reason, "10 hours before departure")
	})

	t.Run("tomorrow outside the cutoff window is accepted", func(t *testing.T) {
		seedSlot(env, pkg, "2026-09-02", "13:00", 10, 0, 4)

		result, err := svc.CheckAvailability(ctx, checkReq(pkg, "2026-09-02", "13:00", 4))
		require.NoError(t, err)
		assert.True(t, result.Available)
	})

	t.Run("closed slot reports a reason", func(t *testing.T) {
		slot := seedSlot(env, pkg, "2026-09-07", "08:00", 10, 0, 4)
		slot.IsAvailable = false

		result, err := svc.CheckAvailability(ctx, checkReq(pkg, "2026-09-07", "08:00", 4))
		require.NoError(t, err)
		assert.False(t, result.Available)
		assert.Contains(t, result.Reason, "closed")
	})

	t.Run("unparseable slot time fails closed", func(t *testing.T) {
		seedSlot(env, pkg, "2026-09-08", "25:99", 10, 0, 4)

		result, err := svc.CheckAvailability(ctx, checkReq(pkg, "2026-09-08", "25:99", 4))
		require.NoError(t, err)
		assert.False(t, result.Available)
		assert.Contains(t, result.Reason, "invalid departure")
	})
}

func TestCheckAvailabilityNotFound(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	pkg := sharedTourPackage()
	svc := newAvailabilityService(env, newFakeCatalog(pkg))

	t.Run("unknown package", func(t *testing.T) {
		req := checkReq(pkg, "2026-09-05", "08:00", 4)
		req.PackageID = uuid.NewString()

		_, err := svc.CheckAvailability(ctx, req)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown slot", func(t *testing.T) {
		_, err := svc.CheckAvailability(ctx, checkReq(pkg, "2026-09-05", "19:00", 4))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("malformed request", func(t *testing.T) {
		req := checkReq(pkg, "2026-09-05", "08:00", 4)
		req.PackageType = "flight"

		_, err := svc.CheckAvailability(ctx, req)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestGetAvailableSlots(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	pkg := sharedTourPackage()
	svc := newAvailabilityService(env, newFakeCatalog(pkg))

	seedSlot(env, pkg, "2026-09-05", "08:00", 10, 2, 1)
	seedSlot(env, pkg, "2026-09-05", "13:00", 10, 10, 1) // full
	closed := seedSlot(env, pkg, "2026-09-05", "16:00", 10, 0, 4)
	closed.IsAvailable = false

	slots, err := svc.GetAvailableSlots(ctx, &request.GetAvailableSlotsRequest{
		PackageType: string(pkg.Type),
		PackageID:   pkg.ID.String(),
		Date:        "2026-09-05",
	})
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "08:00", slots[0].Time)
	assert.Equal(t, 8, slots[0].AvailableSpaces)
}
