package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"tour-booking/internal/data/entity"
	"tour-booking/internal/data/repository"
	"tour-booking/internal/gateway"
	"tour-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// In-memory doubles for the repository and gateway interfaces. The slot and
// booking fakes enforce the same predicates as the SQL they stand in for, so
// the services' concurrency-sensitive paths are exercised honestly.

type fakeDB struct {
	mu       sync.Mutex
	begun    int
	commits  int
	rollback int
}

func (d *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (d *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (d *fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (d *fakeDB) Ping(context.Context) error { return nil }
func (d *fakeDB) Close()                     {}

func (d *fakeDB) Begin(context.Context) (database.Tx, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.begun++
	return &fakeTx{db: d}, nil
}

type fakeTx struct {
	db   *fakeDB
	done bool
}

func (t *fakeTx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (t *fakeTx) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (t *fakeTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (t *fakeTx) Commit(context.Context) error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	if !t.done {
		t.done = true
		t.db.commits++
	}
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	if !t.done {
		t.done = true
		t.db.rollback++
	}
	return nil
}

func slotKey(pt entity.PackageType, pid uuid.UUID, date, timeLabel string) string {
	return fmt.Sprintf("%s|%s|%s|%s", pt, pid, date, timeLabel)
}

type fakeTimeSlotRepo struct {
	slots       map[string]*entity.TimeSlot
	updateCalls int
}

func newFakeTimeSlotRepo() *fakeTimeSlotRepo {
	return &fakeTimeSlotRepo{slots: make(map[string]*entity.TimeSlot)}
}

func (r *fakeTimeSlotRepo) put(slot *entity.TimeSlot) {
	r.slots[slotKey(slot.PackageType, slot.PackageID, slot.Date, slot.Time)] = slot
}

func (r *fakeTimeSlotRepo) CreateBatch(_ context.Context, slots []*entity.TimeSlot) (int64, error) {
	var inserted int64
	for _, slot := range slots {
		key := slotKey(slot.PackageType, slot.PackageID, slot.Date, slot.Time)
		if _, exists := r.slots[key]; exists {
			continue
		}
		copied := *slot
		r.slots[key] = &copied
		inserted++
	}
	return inserted, nil
}

func (r *fakeTimeSlotRepo) FindByDay(_ context.Context, pt entity.PackageType, pid uuid.UUID, date string) ([]*entity.TimeSlot, error) {
	var results []*entity.TimeSlot
	for _, slot := range r.slots {
		if slot.PackageType == pt && slot.PackageID == pid && slot.Date == date {
			copied := *slot
			results = append(results, &copied)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Time < results[j].Time })
	return results, nil
}

func (r *fakeTimeSlotRepo) FindSlot(_ context.Context, pt entity.PackageType, pid uuid.UUID, date, timeLabel string) (*entity.TimeSlot, error) {
	slot, ok := r.slots[slotKey(pt, pid, date, timeLabel)]
	if !ok {
		return nil, nil
	}
	copied := *slot
	return &copied, nil
}

func (r *fakeTimeSlotRepo) FindExistingDates(_ context.Context, pt entity.PackageType, pid uuid.UUID) (map[string]bool, error) {
	dates := make(map[string]bool)
	for _, slot := range r.slots {
		if slot.PackageType == pt && slot.PackageID == pid {
			dates[slot.Date] = true
		}
	}
	return dates, nil
}

func (r *fakeTimeSlotRepo) DeleteByPackage(_ context.Context, pt entity.PackageType, pid uuid.UUID) (int64, error) {
	var deleted int64
	for key, slot := range r.slots {
		if slot.PackageType == pt && slot.PackageID == pid {
			delete(r.slots, key)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeTimeSlotRepo) DeleteByPackageExceptTimes(_ context.Context, pt entity.PackageType, pid uuid.UUID, keepTimes []string) (int64, error) {
	keep := make(map[string]bool, len(keepTimes))
	for _, t := range keepTimes {
		keep[t] = true
	}

	var deleted int64
	for key, slot := range r.slots {
		if slot.PackageType == pt && slot.PackageID == pid && !keep[slot.Time] {
			delete(r.slots, key)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeTimeSlotRepo) UpdateScheduleByTime(_ context.Context, pt entity.PackageType, pid uuid.UUID, timeLabel string, capacity, minimumPerson int) (int64, error) {
	var updated int64
	for _, slot := range r.slots {
		if slot.PackageType != pt || slot.PackageID != pid || slot.Time != timeLabel {
			continue
		}
		slot.Capacity = capacity
		if slot.BookedCount > capacity {
			slot.BookedCount = capacity
		}
		if slot.BookedCount == 0 {
			slot.MinimumPerson = minimumPerson
		}
		updated++
	}
	return updated, nil
}

func (r *fakeTimeSlotRepo) LockSlot(_ context.Context, _ database.Querier, pt entity.PackageType, pid uuid.UUID, date, timeLabel string) (*entity.TimeSlot, error) {
	slot, ok := r.slots[slotKey(pt, pid, date, timeLabel)]
	if !ok {
		return nil, nil
	}
	copied := *slot
	return &copied, nil
}

func (r *fakeTimeSlotRepo) UpdateCounts(_ context.Context, _ database.Querier, slotID uuid.UUID, bookedCount, minimumPerson int) (bool, error) {
	for _, slot := range r.slots {
		if slot.ID != slotID {
			continue
		}
		// Same predicate as the SQL write.
		if bookedCount < 0 || bookedCount > slot.Capacity {
			return false, nil
		}
		slot.BookedCount = bookedCount
		slot.MinimumPerson = minimumPerson
		r.updateCalls++
		return true, nil
	}
	return false, nil
}

type fakeBookingRepo struct {
	bookings map[uuid.UUID]*entity.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*entity.Booking)}
}

func (r *fakeBookingRepo) Create(_ context.Context, _ database.Querier, booking *entity.Booking) error {
	copied := *booking
	r.bookings[booking.ID] = &copied
	return nil
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	booking, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	copied := *booking
	return &copied, nil
}

func (r *fakeBookingRepo) FindByOrderID(_ context.Context, orderID string) (*entity.Booking, error) {
	for _, booking := range r.bookings {
		if booking.OrderID == orderID {
			copied := *booking
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeBookingRepo) FindByPaymentIntentID(_ context.Context, intentID string) (*entity.Booking, error) {
	for _, booking := range r.bookings {
		if booking.PaymentIntentID != nil && *booking.PaymentIntentID == intentID {
			copied := *booking
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeBookingRepo) ExistsForSlot(_ context.Context, _ database.Querier, email string, pt entity.PackageType, pid uuid.UUID, date, timeLabel string) (bool, error) {
	for _, booking := range r.bookings {
		if booking.Email == email && booking.PackageType == pt && booking.PackageID == pid &&
			booking.Date == date && booking.Time == timeLabel &&
			(booking.Status == entity.BookingStatusPending || booking.Status == entity.BookingStatusConfirmed) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeBookingRepo) UpdateStatus(_ context.Context, id uuid.UUID, status entity.BookingStatus) error {
	booking, ok := r.bookings[id]
	if !ok {
		return fmt.Errorf("booking %s not found", id.String())
	}
	booking.Status = status
	return nil
}

func (r *fakeBookingRepo) SetPaymentStatus(_ context.Context, id uuid.UUID, status entity.PaymentStatus) error {
	booking, ok := r.bookings[id]
	if !ok {
		return fmt.Errorf("booking %s not found", id.String())
	}
	booking.PaymentStatus = status
	return nil
}

func (r *fakeBookingRepo) SetConfirmationEmailSent(_ context.Context, id uuid.UUID) error {
	booking, ok := r.bookings[id]
	if !ok {
		return fmt.Errorf("booking %s not found", id.String())
	}
	booking.ConfirmationEmailSent = true
	return nil
}

func (r *fakeBookingRepo) MarkPaymentSucceeded(_ context.Context, _ database.Querier, intentID string) (bool, error) {
	for _, booking := range r.bookings {
		if booking.PaymentIntentID == nil || *booking.PaymentIntentID != intentID {
			continue
		}
		if booking.PaymentStatus != entity.PaymentStatusPending && booking.PaymentStatus != entity.PaymentStatusProcessing {
			return false, nil
		}
		booking.PaymentStatus = entity.PaymentStatusSucceeded
		booking.Status = entity.BookingStatusConfirmed
		return true, nil
	}
	return false, nil
}

func (r *fakeBookingRepo) MarkPaymentFailed(_ context.Context, intentID string) (bool, error) {
	for _, booking := range r.bookings {
		if booking.PaymentIntentID == nil || *booking.PaymentIntentID != intentID {
			continue
		}
		if booking.PaymentStatus != entity.PaymentStatusPending && booking.PaymentStatus != entity.PaymentStatusProcessing {
			return false, nil
		}
		booking.PaymentStatus = entity.PaymentStatusFailed
		return true, nil
	}
	return false, nil
}

type fakeWebhookEventRepo struct {
	seen map[string]bool
}

func newFakeWebhookEventRepo() *fakeWebhookEventRepo {
	return &fakeWebhookEventRepo{seen: make(map[string]bool)}
}

func (r *fakeWebhookEventRepo) Insert(_ context.Context, eventID, _ string) (bool, error) {
	if r.seen[eventID] {
		return false, nil
	}
	r.seen[eventID] = true
	return true, nil
}

type fakeFailedWebhookRepo struct {
	events []*entity.FailedWebhookEvent
}

func (r *fakeFailedWebhookRepo) Create(_ context.Context, event *entity.FailedWebhookEvent) error {
	copied := *event
	r.events = append(r.events, &copied)
	return nil
}

func (r *fakeFailedWebhookRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.FailedWebhookEvent, error) {
	for _, event := range r.events {
		if event.ID == id {
			copied := *event
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeFailedWebhookRepo) Find(_ context.Context, resolved *bool, limit, offset int) ([]*entity.FailedWebhookEvent, error) {
	var results []*entity.FailedWebhookEvent
	for _, event := range r.events {
		if resolved != nil && event.Resolved != *resolved {
			continue
		}
		copied := *event
		results = append(results, &copied)
	}
	if offset >= len(results) {
		return nil, nil
	}
	results = results[offset:]
	if limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}

func (r *fakeFailedWebhookRepo) Count(_ context.Context, resolved *bool) (int64, error) {
	var count int64
	for _, event := range r.events {
		if resolved == nil || event.Resolved == *resolved {
			count++
		}
	}
	return count, nil
}

func (r *fakeFailedWebhookRepo) MarkResolved(_ context.Context, id uuid.UUID, resolvedBy string, notes *string) error {
	for _, event := range r.events {
		if event.ID != id || event.Resolved {
			continue
		}
		now := time.Now()
		event.Resolved = true
		event.ResolvedAt = &now
		event.ResolvedBy = &resolvedBy
		if notes != nil {
			event.Notes = notes
		}
		return nil
	}
	return fmt.Errorf("failed webhook event %s not found or already resolved", id.String())
}

type fakeCartRepo struct {
	items []*entity.CartItem
}

func (r *fakeCartRepo) FindByUserID(_ context.Context, userID uuid.UUID) ([]*entity.CartItem, error) {
	var results []*entity.CartItem
	for _, item := range r.items {
		if item.UserID == userID {
			copied := *item
			results = append(results, &copied)
		}
	}
	return results, nil
}

func (r *fakeCartRepo) DeleteItems(_ context.Context, _ database.Querier, ids []uuid.UUID) error {
	drop := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	var kept []*entity.CartItem
	for _, item := range r.items {
		if !drop[item.ID] {
			kept = append(kept, item)
		}
	}
	r.items = kept
	return nil
}

type fakeCatalog struct {
	packages map[uuid.UUID]*entity.TourPackage
}

func newFakeCatalog(packages ...*entity.TourPackage) *fakeCatalog {
	c := &fakeCatalog{packages: make(map[uuid.UUID]*entity.TourPackage)}
	for _, pkg := range packages {
		c.packages[pkg.ID] = pkg
	}
	return c
}

func (c *fakeCatalog) GetPackage(_ context.Context, _ entity.PackageType, id uuid.UUID) (*entity.TourPackage, error) {
	pkg, ok := c.packages[id]
	if !ok {
		return nil, nil
	}
	copied := *pkg
	return &copied, nil
}

type fakeNotifier struct {
	bookingCalls int
	cartCalls    int
	lastBatch    []*gateway.BookingSummary
	err          error
}

func (n *fakeNotifier) SendBookingConfirmation(_ context.Context, summary *gateway.BookingSummary) error {
	if n.err != nil {
		return n.err
	}
	n.bookingCalls++
	n.lastBatch = []*gateway.BookingSummary{summary}
	return nil
}

func (n *fakeNotifier) SendCartConfirmation(_ context.Context, summaries []*gateway.BookingSummary) error {
	if n.err != nil {
		return n.err
	}
	n.cartCalls++
	n.lastBatch = summaries
	return nil
}

type fakePaymentGateway struct {
	intents map[string]*gateway.PaymentIntent
}

func (g *fakePaymentGateway) RetrievePaymentIntent(_ context.Context, id string) (*gateway.PaymentIntent, error) {
	intent, ok := g.intents[id]
	if !ok {
		return nil, fmt.Errorf("retrieve payment intent %s: gateway status 404", id)
	}
	copied := *intent
	return &copied, nil
}

// testEnv bundles the fakes behind a Repository so services wire up exactly as
// in production.
type testEnv struct {
	db       *fakeDB
	slots    *fakeTimeSlotRepo
	bookings *fakeBookingRepo
	webhooks *fakeWebhookEventRepo
	failed   *fakeFailedWebhookRepo
	cart     *fakeCartRepo
	repo     *repository.Repository
}

func newTestEnv() *testEnv {
	env := &testEnv{
		db:       &fakeDB{},
		slots:    newFakeTimeSlotRepo(),
		bookings: newFakeBookingRepo(),
		webhooks: newFakeWebhookEventRepo(),
		failed:   &fakeFailedWebhookRepo{},
		cart:     &fakeCartRepo{},
	}
	env.repo = &repository.Repository{
		DB:            env.db,
		TimeSlot:      env.slots,
		Booking:       env.bookings,
		WebhookEvent:  env.webhooks,
		FailedWebhook: env.failed,
		Cart:          env.cart,
	}
	return env
}
