package usecase

import (
	"context"
	"fmt"

	"tour-booking/internal/data/entity"
	"tour-booking/internal/data/repository"
	"tour-booking/internal/dto/request"
	"tour-booking/internal/dto/response"
	"tour-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FailedEventService is the operator surface over the durable ledger of
// reconciliation failures.
type FailedEventService interface {
	List(ctx context.Context, resolved *bool, page *request.PaginatedRequest) (*response.PaginatedResponse[response.FailedWebhookEventResponse], error)
	Get(ctx context.Context, id string) (*response.FailedWebhookEventResponse, error)

	// Retry re-runs reconciliation from the stored metadata and resolves the
	// entry on success.
	Retry(ctx context.Context, id string, req *request.RetryFailedEventRequest) (*response.FailedWebhookEventResponse, error)

	// Resolve closes an entry without replaying it, for cases handled out of
	// band (manual refund, booking created by hand).
	Resolve(ctx context.Context, id string, req *request.ResolveFailedEventRequest) (*response.FailedWebhookEventResponse, error)
}

type failedEventService struct {
	repo       *repository.Repository
	reconciler ReconcilerService
	log        *zap.Logger
}

func NewFailedEventService(repo *repository.Repository, reconciler ReconcilerService, log *zap.Logger) FailedEventService {
	return &failedEventService{
		repo:       repo,
		reconciler: reconciler,
		log:        log.With(zap.String("service", "failed_event")),
	}
}

func (s *failedEventService) List(ctx context.Context, resolved *bool, page *request.PaginatedRequest) (*response.PaginatedResponse[response.FailedWebhookEventResponse], error) {
	if errs := utils.ValidateStruct(page); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrValidation, errs)
	}

	events, err := s.repo.FailedWebhook.Find(ctx, resolved, page.Limit(), page.Offset())
	if err != nil {
		return nil, err
	}

	total, err := s.repo.FailedWebhook.Count(ctx, resolved)
	if err != nil {
		return nil, err
	}

	results := make([]response.FailedWebhookEventResponse, 0, len(events))
	for _, event := range events {
		results = append(results, response.FailedWebhookEventToResponse(event))
	}

	return response.NewPaginatedResponse(results, page.Page, page.Limit(), total), nil
}

func (s *failedEventService) Get(ctx context.Context, id string) (*response.FailedWebhookEventResponse, error) {
	event, err := s.findEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := response.FailedWebhookEventToResponse(event)
	return &resp, nil
}

func (s *failedEventService) Retry(ctx context.Context, id string, req *request.RetryFailedEventRequest) (*response.FailedWebhookEventResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrValidation, errs)
	}

	event, err := s.findEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.Resolved {
		return nil, fmt.Errorf("%w: event %s is already resolved", ErrValidation, id)
	}

	if err := s.reconciler.ReplayFailedEvent(ctx, event); err != nil {
		s.log.Warn("Failed event replay did not succeed",
			zap.Error(err),
			zap.String("failed_event_id", id),
			zap.String("requested_by", req.RequestedBy),
		)
		return nil, err
	}

	notes := fmt.Sprintf("resolved by retry, requested by %s", req.RequestedBy)
	if err := s.repo.FailedWebhook.MarkResolved(ctx, event.ID, req.RequestedBy, &notes); err != nil {
		return nil, err
	}

	s.log.Info("Failed event replayed and resolved",
		zap.String("failed_event_id", id),
		zap.String("payment_intent_id", event.PaymentIntentID),
		zap.String("requested_by", req.RequestedBy),
	)

	return s.Get(ctx, id)
}

func (s *failedEventService) Resolve(ctx context.Context, id string, req *request.ResolveFailedEventRequest) (*response.FailedWebhookEventResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrValidation, errs)
	}

	event, err := s.findEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.Resolved {
		return nil, fmt.Errorf("%w: event %s is already resolved", ErrValidation, id)
	}

	if err := s.repo.FailedWebhook.MarkResolved(ctx, event.ID, req.ResolvedBy, req.Notes); err != nil {
		return nil, err
	}

	s.log.Info("Failed event resolved manually",
		zap.String("failed_event_id", id),
		zap.String("resolved_by", req.ResolvedBy),
	)

	return s.Get(ctx, id)
}

func (s *failedEventService) findEvent(ctx context.Context, id string) (*entity.FailedWebhookEvent, error) {
	eventID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid event ID %s", ErrValidation, id)
	}

	event, err := s.repo.FailedWebhook.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, fmt.Errorf("%w: failed webhook event %s", ErrNotFound, id)
	}

	return event, nil
}
