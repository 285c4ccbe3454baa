package adaptor

import (
	"encoding/json"
	"net/http"

	"tour-booking/internal/dto/request"
	"tour-booking/internal/usecase"
	"tour-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type FailedEventHandler struct {
	service usecase.FailedEventService
	log     *zap.Logger
}

func NewFailedEventHandler(service usecase.FailedEventService, log *zap.Logger) *FailedEventHandler {
	return &FailedEventHandler{
		service: service,
		log:     log.With(zap.String("handler", "failed_event")),
	}
}

// ListFailedEvents handles GET /api/admin/failed-events (admin)
func (h *FailedEventHandler) ListFailedEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	var resolved *bool
	switch query.Get("resolved") {
	case "true":
		v := true
		resolved = &v
	case "false":
		v := false
		resolved = &v
	}

	events, err := h.service.List(r.Context(), resolved, page)
	if err != nil {
		handleServiceError(w, h.log, err, "list failed events")
		return
	}

	utils.ResponseSuccess(w, "success", events)
}

// GetFailedEvent handles GET /api/admin/failed-events/{id} (admin)
func (h *FailedEventHandler) GetFailedEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		utils.ResponseBadRequest(w, "Event ID is required", nil)
		return
	}

	event, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.log, err, "get failed event")
		return
	}

	utils.ResponseSuccess(w, "success", event)
}

// RetryFailedEvent handles POST /api/admin/failed-events/{id}/retry (admin)
func (h *FailedEventHandler) RetryFailedEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		utils.ResponseBadRequest(w, "Event ID is required", nil)
		return
	}

	var req request.RetryFailedEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	event, err := h.service.Retry(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "retry failed event")
		return
	}

	utils.ResponseSuccess(w, "success", event)
}

// ResolveFailedEvent handles POST /api/admin/failed-events/{id}/resolve (admin)
func (h *FailedEventHandler) ResolveFailedEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		utils.ResponseBadRequest(w, "Event ID is required", nil)
		return
	}

	var req request.ResolveFailedEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	event, err := h.service.Resolve(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "resolve failed event")
		return
	}

	utils.ResponseSuccess(w, "success", event)
}
