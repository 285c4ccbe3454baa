package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
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

const (
	eventCheckoutCompleted = "checkout.session.completed"
	eventPaymentSucceeded  = "payment_intent.succeeded"
	eventPaymentFailed     = "payment_intent.payment_failed"
	eventPaymentCanceled   = "payment_intent.canceled"

	webhookSource = "payment_gateway"
)

// ReconcilerService maps asynchronous payment events and racing client
// confirmation calls onto bookings and slot mutations exactly once.
//
// Guarantee: one successful payment produces one confirmed booking and one
// slot-capacity increment, no matter how many times the event is delivered or
// how the confirmation call interleaves with it.
type ReconcilerService interface {
	HandleGatewayWebhook(ctx context.Context, payload []byte, signature string) error
	ConfirmPayment(ctx context.Context, req *request.ConfirmPaymentRequest) (*response.BookingResponse, error)

	// ReplayFailedEvent re-runs reconciliation from a ledger entry's stored
	// metadata; used by operator retry.
	ReplayFailedEvent(ctx context.Context, event *entity.FailedWebhookEvent) error
}

type reconcilerService struct {
	repo     *repository.Repository
	catalog  gateway.PackageCatalog
	payments gateway.PaymentGateway
	notifier gateway.Notifier
	slots    SlotService
	config   utils.PaymentConfig
	now      func() time.Time
	log      *zap.Logger
}

func NewReconcilerService(
	repo *repository.Repository,
	catalog gateway.PackageCatalog,
	payments gateway.PaymentGateway,
	notifier gateway.Notifier,
	slots SlotService,
	config utils.PaymentConfig,
	log *zap.Logger,
) ReconcilerService {
	return &reconcilerService{
		repo:     repo,
		catalog:  catalog,
		payments: payments,
		notifier: notifier,
		slots:    slots,
		config:   config,
		now:      time.Now,
		log:      log.With(zap.String("service", "reconciler")),
	}
}

// gatewayEvent is the envelope of a signed webhook delivery.
type gatewayEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object gatewayObject `json:"object"`
	} `json:"data"`
}

// gatewayObject covers both payment intents and checkout sessions; only the
// fields the reconciler reads.
type gatewayObject struct {
	ID               string                `json:"id"`
	PaymentIntent    string                `json:"payment_intent"`
	Amount           int64                 `json:"amount"`
	AmountTotal      int64                 `json:"amount_total"`
	Currency         string                `json:"currency"`
	Metadata         map[string]string     `json:"metadata"`
	LastPaymentError *gateway.PaymentError `json:"last_payment_error"`
}

// intentID is the payment correlation id: the intent reference on checkout
// sessions, the object's own id on intent events.
func (o *gatewayObject) intentID() string {
	if o.PaymentIntent != "" {
		return o.PaymentIntent
	}
	return o.ID
}

func (o *gatewayObject) amount() int64 {
	if o.AmountTotal > 0 {
		return o.AmountTotal
	}
	return o.Amount
}

func (s *reconcilerService) HandleGatewayWebhook(ctx context.Context, payload []byte, signature string) error {
	tolerance := time.Duration(s.config.ToleranceSeconds) * time.Second
	if err := gateway.VerifyWebhookSignature(payload, signature, s.config.WebhookSecret, tolerance, s.now()); err != nil {
		s.log.Warn("Webhook signature rejected", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	var event gatewayEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("%w: malformed webhook payload", ErrValidation)
	}
	if event.ID == "" || event.Type == "" {
		return fmt.Errorf("%w: webhook payload missing id or type", ErrValidation)
	}

	// Dedupe before any side effect. A repeated event id is acknowledged as
	// success without reprocessing.
	firstDelivery, err := s.repo.WebhookEvent.Insert(ctx, event.ID, webhookSource)
	if err != nil {
		return err
	}
	if !firstDelivery {
		s.log.Info("Duplicate webhook delivery ignored",
			zap.String("event_id", event.ID),
			zap.String("type", event.Type),
		)
		return nil
	}

	obj := &event.Data.Object

	switch event.Type {
	case eventCheckoutCompleted, eventPaymentSucceeded:
		if err := s.reconcileSucceeded(ctx, obj.intentID(), obj.amount(), obj.Currency, obj.Metadata); err != nil {
			// The charge went through but the system of record did not catch
			// up. Persist for operator retry and acknowledge the event so the
			// gateway stops retrying a failure it cannot fix.
			return s.recordFailure(ctx, obj, err)
		}
	case eventPaymentFailed:
		s.markFailed(ctx, obj.intentID(), event.Type)
	case eventPaymentCanceled:
		// Bare auto-cancellations (customer closed the tab) carry no payment
		// error and are not customer-visible failures.
		if obj.LastPaymentError == nil {
			s.log.Debug("Auto-cancellation ignored", zap.String("event_id", event.ID))
			return nil
		}
		s.markFailed(ctx, obj.intentID(), event.Type)
	default:
		s.log.Debug("Unhandled webhook event type",
			zap.String("event_id", event.ID),
			zap.String("type", event.Type),
		)
	}

	return nil
}

func (s *reconcilerService) ConfirmPayment(ctx context.Context, req *request.ConfirmPaymentRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrValidation, errs)
	}

	// The webhook may have won the race; then this call is a pure read.
	booking, err := s.repo.Booking.FindByPaymentIntentID(ctx, req.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	if booking != nil && booking.PaymentStatus == entity.PaymentStatusSucceeded {
		s.log.Info("Payment already reconciled by webhook",
			zap.String("payment_intent_id", req.PaymentIntentID),
		)
		resp := response.BookingToResponse(booking)
		return &resp, nil
	}

	// Never trust the client's word that money moved.
	intent, err := s.payments.RetrievePaymentIntent(ctx, req.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	if intent.Status != gateway.PaymentIntentStatusSucceeded {
		return nil, fmt.Errorf("%w: payment intent status is %s", ErrValidation, intent.Status)
	}

	if booking == nil {
		if req.Booking == nil {
			return nil, fmt.Errorf("%w: booking details required for unconfirmed payment", ErrValidation)
		}
		booking, err = s.bookingFromDraft(ctx, req.Booking, req.PaymentIntentID)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Booking.Create(ctx, nil, booking); err != nil {
			return nil, err
		}
	}

	if err := s.reconcileSucceeded(ctx, req.PaymentIntentID, intent.Amount, intent.Currency, intent.Metadata); err != nil {
		return nil, err
	}

	booking, err = s.repo.Booking.FindByPaymentIntentID(ctx, req.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: booking for payment %s", ErrNotFound, req.PaymentIntentID)
	}

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *reconcilerService) ReplayFailedEvent(ctx context.Context, event *entity.FailedWebhookEvent) error {
	return s.reconcileSucceeded(ctx, event.PaymentIntentID, event.Amount, event.Currency, event.Metadata)
}

// reconcileSucceeded is the single reconciliation path for a succeeded
// payment, shared by the webhook, the confirmation call and operator retry.
// The booking confirmation and the slot increment commit in one transaction;
// whichever caller observes the pending-to-succeeded transition performs the
// slot mutation, everyone else no-ops.
func (s *reconcilerService) reconcileSucceeded(ctx context.Context, intentID string, amount int64, currency string, metadata map[string]string) error {
	booking, err := s.repo.Booking.FindByPaymentIntentID(ctx, intentID)
	if err != nil {
		return err
	}

	if booking != nil && booking.PaymentStatus == entity.PaymentStatusSucceeded {
		s.log.Info("Payment already reconciled", zap.String("payment_intent_id", intentID))
		return nil
	}

	reconstructed := false
	if booking == nil {
		// Payment succeeded but no booking row exists (checkout never
		// completed client-side). Rebuild it from the event metadata.
		booking, err = s.bookingFromMetadata(ctx, intentID, amount, currency, metadata)
		if err != nil {
			return err
		}
		reconstructed = true
	}

	tx, err := s.repo.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reconciliation: %w", err)
	}
	defer tx.Rollback(ctx)

	if reconstructed {
		booking.Status = entity.BookingStatusConfirmed
		booking.PaymentStatus = entity.PaymentStatusSucceeded
		if err := s.repo.Booking.Create(ctx, tx, booking); err != nil {
			return err
		}
	} else {
		transitioned, err := s.repo.Booking.MarkPaymentSucceeded(ctx, tx, intentID)
		if err != nil {
			return err
		}
		if !transitioned {
			// A racing caller got there first; the slot was already mutated.
			s.log.Info("Payment reconciled by concurrent caller",
				zap.String("payment_intent_id", intentID),
			)
			return nil
		}
	}

	err = s.slots.UpdateSlotBookingTx(ctx, tx,
		booking.PackageType, booking.PackageID, booking.Date, booking.Time,
		booking.SlotUnits(), SlotOpAdd,
	)
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reconciliation: %w", err)
	}

	s.log.Info("Payment reconciled",
		zap.String("payment_intent_id", intentID),
		zap.String("booking_id", booking.ID.String()),
		zap.Bool("reconstructed", reconstructed),
		zap.Int("slot_units", booking.SlotUnits()),
	)

	s.notifyConfirmed(ctx, booking)

	return nil
}

func (s *reconcilerService) markFailed(ctx context.Context, intentID, eventType string) {
	marked, err := s.repo.Booking.MarkPaymentFailed(ctx, intentID)
	if err != nil {
		s.log.Error("Failed to mark payment failed",
			zap.Error(err),
			zap.String("payment_intent_id", intentID),
		)
		return
	}

	s.log.Info("Payment marked failed",
		zap.String("payment_intent_id", intentID),
		zap.String("event_type", eventType),
		zap.Bool("booking_updated", marked),
	)
}

// recordFailure writes the reconciliation failure to the durable ledger. Only
// when even that write fails is the error propagated, so the gateway retries
// instead of the event being lost.
func (s *reconcilerService) recordFailure(ctx context.Context, obj *gatewayObject, cause error) error {
	now := s.now()
	entry := &entity.FailedWebhookEvent{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		PaymentIntentID: obj.intentID(),
		Amount:          obj.amount(),
		Currency:        obj.Currency,
		Metadata:        obj.Metadata,
		LastError:       cause.Error(),
		Resolved:        false,
	}

	if err := s.repo.FailedWebhook.Create(ctx, entry); err != nil {
		s.log.Error("Failed to persist reconciliation failure",
			zap.Error(err),
			zap.String("payment_intent_id", obj.intentID()),
			zap.NamedError("cause", cause),
		)
		return err
	}

	s.log.Error("Reconciliation failed, recorded for operator retry",
		zap.NamedError("cause", cause),
		zap.String("payment_intent_id", obj.intentID()),
		zap.String("failed_event_id", entry.ID.String()),
	)

	return nil
}

// bookingFromMetadata reconstructs a booking from gateway metadata. Every
// field is validated: the metadata map is attacker-adjacent input.
func (s *reconcilerService) bookingFromMetadata(ctx context.Context, intentID string, amount int64, currency string, metadata map[string]string) (*entity.Booking, error) {
	if len(metadata) == 0 {
		return nil, fmt.Errorf("%w: event carries no booking metadata", ErrValidation)
	}

	packageType := entity.PackageType(metadata["package_type"])
	if !packageType.Valid() {
		return nil, fmt.Errorf("%w: metadata package_type %q", ErrValidation, metadata["package_type"])
	}

	packageID, err := uuid.Parse(metadata["package_id"])
	if err != nil {
		return nil, fmt.Errorf("%w: metadata package_id %q", ErrValidation, metadata["package_id"])
	}

	date := metadata["date"]
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: metadata date %q", ErrValidation, date)
	}

	timeLabel := metadata["time"]
	if _, err := time.Parse(timeLayout, timeLabel); err != nil {
		return nil, fmt.Errorf("%w: metadata time %q", ErrValidation, timeLabel)
	}

	adults, err := strconv.Atoi(metadata["adults"])
	if err != nil || adults < 1 || adults > 100 {
		return nil, fmt.Errorf("%w: metadata adults %q", ErrValidation, metadata["adults"])
	}

	children := 0
	if raw, ok := metadata["children"]; ok && raw != "" {
		children, err = strconv.Atoi(raw)
		if err != nil || children < 0 || children > 100 {
			return nil, fmt.Errorf("%w: metadata children %q", ErrValidation, raw)
		}
	}

	email := strings.TrimSpace(metadata["email"])
	if email == "" || !strings.Contains(email, "@") || len(email) > 254 {
		return nil, fmt.Errorf("%w: metadata email missing or invalid", ErrValidation)
	}

	fullName := strings.TrimSpace(metadata["full_name"])
	if fullName == "" || len(fullName) > 200 {
		return nil, fmt.Errorf("%w: metadata full_name missing or invalid", ErrValidation)
	}

	phone := metadata["phone"]
	if len(phone) > 30 {
		phone = phone[:30]
	}

	pkg, err := s.catalog.GetPackage(ctx, packageType, packageID)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, fmt.Errorf("%w: package %s from metadata", ErrNotFound, packageID.String())
	}

	if currency == "" {
		currency = "USD"
	}

	now := s.now()
	intent := intentID
	return &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OrderID:         utils.GenerateOrderID(),
		PackageType:     packageType,
		PackageID:       packageID,
		Date:            date,
		Time:            timeLabel,
		Adults:          adults,
		Children:        children,
		FullName:        fullName,
		Email:           email,
		Phone:           phone,
		Status:          entity.BookingStatusPending,
		PaymentStatus:   entity.PaymentStatusPending,
		PaymentIntentID: &intent,
		IsPrivate:       pkg.IsPrivate,
		TotalAmount:     float64(amount) / 100,
		Currency:        strings.ToUpper(currency),
	}, nil
}

func (s *reconcilerService) bookingFromDraft(ctx context.Context, draft *request.BookingDraft, intentID string) (*entity.Booking, error) {
	if errs := utils.ValidateStruct(draft); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrValidation, errs)
	}

	packageID, err := uuid.Parse(draft.PackageID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid package ID %s", ErrValidation, draft.PackageID)
	}

	pkg, err := s.catalog.GetPackage(ctx, entity.PackageType(draft.PackageType), packageID)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, fmt.Errorf("%w: package %s", ErrNotFound, draft.PackageID)
	}

	currency := draft.Currency
	if currency == "" {
		currency = "USD"
	}

	now := s.now()
	intent := intentID
	return &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OrderID:         utils.GenerateOrderID(),
		PackageType:     pkg.Type,
		PackageID:       packageID,
		Date:            draft.Date,
		Time:            draft.Time,
		Adults:          draft.Adults,
		Children:        draft.Children,
		FullName:        draft.FullName,
		Email:           draft.Email,
		Phone:           draft.Phone,
		Status:          entity.BookingStatusPending,
		PaymentStatus:   entity.PaymentStatusPending,
		PaymentIntentID: &intent,
		IsPrivate:       pkg.IsPrivate,
		TotalAmount:     draft.TotalAmount,
		Currency:        strings.ToUpper(currency),
	}, nil
}

// notifyConfirmed dispatches the confirmation exactly once, guarded by the
// sent flag. A notification failure never affects booking state.
func (s *reconcilerService) notifyConfirmed(ctx context.Context, booking *entity.Booking) {
	if booking.ConfirmationEmailSent {
		return
	}

	summary := &gateway.BookingSummary{
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
	}

	if err := s.notifier.SendBookingConfirmation(ctx, summary); err != nil {
		s.log.Warn("Booking confirmation notification failed",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return
	}

	if err := s.repo.Booking.SetConfirmationEmailSent(ctx, booking.ID); err != nil {
		s.log.Warn("Failed to persist confirmation email flag",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
	}
}
