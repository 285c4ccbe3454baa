package usecase

import (
	"context"
	"testing"

	"tour-booking/internal/data/entity"
	"tour-booking/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedFailedEvent(f *reconcilerFixture, intentID string, metadata map[string]string) *entity.FailedWebhookEvent {
	event := &entity.FailedWebhookEvent{
		BaseNoDelete:    entity.BaseNoDelete{ID: uuid.New(), CreatedAt: testNow, UpdatedAt: testNow},
		PaymentIntentID: intentID,
		Amount:          300000,
		Currency:        "usd",
		Metadata:        metadata,
		LastError:       "boom",
	}
	f.env.failed.events = append(f.env.failed.events, event)
	return event
}

func TestFailedEventRetry(t *testing.T) {
	ctx := context.Background()
	f := newReconcilerFixture(t)
	svc := NewFailedEventService(f.env.repo, f.svc, zap.NewNop())

	seedSlot(f.env, f.pkg, "2026-09-05", "08:00", 10, 0, 4)
	event := seedFailedEvent(f, "pi_retry", map[string]string{
		"package_type": "tour",
		"package_id":   f.pkg.ID.String(),
		"date":         "2026-09-05",
		"time":         "08:00",
		"adults":       "2",
		"full_name":    "Grace Hopper",
		"email":        "grace@example.com",
	})

	resp, err := svc.Retry(ctx, event.ID.String(), &request.RetryFailedEventRequest{RequestedBy: "ops@example.com"})
	require.NoError(t, err)

	assert.True(t, resp.Resolved)
	require.NotNil(t, resp.ResolvedBy)
	assert.Equal(t, "ops@example.com", *resp.ResolvedBy)

	booking, err := f.env.bookings.FindByPaymentIntentID(ctx, "pi_retry")
	require.NoError(t, err)
	require.NotNil(t, booking)
	assert.Equal(t, entity.PaymentStatusSucceeded, booking.PaymentStatus)

	t.Run("resolved entry cannot be retried again", func(t *testing.T) {
		_, err := svc.Retry(ctx, event.ID.String(), &request.RetryFailedEventRequest{RequestedBy: "ops@example.com"})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestFailedEventRetryStillBroken(t *testing.T) {
	ctx := context.Background()
	f := newReconcilerFixture(t)
	svc := NewFailedEventService(f.env.repo, f.svc, zap.NewNop())

	// Metadata is still missing the email, replay fails, entry stays open.
	event := seedFailedEvent(f, "pi_still_broken", map[string]string{
		"package_type": "tour",
		"package_id":   f.pkg.ID.String(),
		"date":         "2026-09-05",
		"time":         "08:00",
		"adults":       "2",
		"full_name":    "Grace Hopper",
	})

	_, err := svc.Retry(ctx, event.ID.String(), &request.RetryFailedEventRequest{RequestedBy: "ops@example.com"})
	require.Error(t, err)

	stored, _ := f.env.failed.FindByID(ctx, event.ID)
	assert.False(t, stored.Resolved)
}

func TestFailedEventResolve(t *testing.T) {
	ctx := context.Background()
	f := newReconcilerFixture(t)
	svc := NewFailedEventService(f.env.repo, f.svc, zap.NewNop())

	event := seedFailedEvent(f, "pi_manual", nil)

	notes := "refunded manually, customer rebooked"
	resp, err := svc.Resolve(ctx, event.ID.String(), &request.ResolveFailedEventRequest{
		ResolvedBy: "ops@example.com",
		Notes:      &notes,
	})
	require.NoError(t, err)

	assert.True(t, resp.Resolved)
	require.NotNil(t, resp.Notes)
	assert.Equal(t, notes, *resp.Notes)

	// No booking was created.
	booking, _ := f.env.bookings.FindByPaymentIntentID(ctx, "pi_manual")
	assert.Nil(t, booking)
}

func TestFailedEventList(t *testing.T) {
	ctx := context.Background()
	f := newReconcilerFixture(t)
	svc := NewFailedEventService(f.env.repo, f.svc, zap.NewNop())

	open := seedFailedEvent(f, "pi_open", nil)
	closed := seedFailedEvent(f, "pi_closed", nil)
	closed.Resolved = true

	t.Run("unfiltered", func(t *testing.T) {
		page, err := svc.List(ctx, nil, &request.PaginatedRequest{Page: 1, PerPage: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Pagination.Total)
		assert.Len(t, page.Data, 2)
	})

	t.Run("only unresolved", func(t *testing.T) {
		unresolved := false
		page, err := svc.List(ctx, &unresolved, &request.PaginatedRequest{Page: 1, PerPage: 10})
		require.NoError(t, err)
		require.Len(t, page.Data, 1)
		assert.Equal(t, open.ID.String(), page.Data[0].ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.Get(ctx, uuid.NewString())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
