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

type SlotHandler struct {
	service usecase.SlotService
	log     *zap.Logger
}

func NewSlotHandler(service usecase.SlotService, log *zap.Logger) *SlotHandler {
	return &SlotHandler{
		service: service,
		log:     log.With(zap.String("handler", "slot")),
	}
}

// GenerateSlots handles POST /api/admin/slots/generate (admin)
func (h *SlotHandler) GenerateSlots(w http.ResponseWriter, r *http.Request) {
	var req request.GenerateSlotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	inserted, err := h.service.GenerateForPackage(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "generate slots")
		return
	}

	utils.ResponseCreated(w, "success", map[string]int64{"inserted": inserted})
}

// RegenerateSlots handles PUT /api/admin/slots/regenerate (admin)
func (h *SlotHandler) RegenerateSlots(w http.ResponseWriter, r *http.Request) {
	var req request.GenerateSlotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.service.RegenerateForPackage(r.Context(), &req); err != nil {
		handleServiceError(w, h.log, err, "regenerate slots")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

// DeleteSlots handles DELETE /api/admin/slots/{packageType}/{packageID} (admin)
func (h *SlotHandler) DeleteSlots(w http.ResponseWriter, r *http.Request) {
	packageType := chi.URLParam(r, "packageType")
	packageID := chi.URLParam(r, "packageID")
	if packageType == "" || packageID == "" {
		utils.ResponseBadRequest(w, "Package type and ID are required", nil)
		return
	}

	if err := h.service.DeleteForPackage(r.Context(), packageType, packageID); err != nil {
		handleServiceError(w, h.log, err, "delete slots")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

// UpdateSlotBooking handles POST /api/admin/slots/booking (admin)
func (h *SlotHandler) UpdateSlotBooking(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateSlotBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	err := h.service.UpdateSlotBooking(r.Context(),
		req.PackageType, req.PackageID, req.Date, req.Time,
		req.Persons, usecase.SlotOperation(req.Operation),
	)
	if err != nil {
		handleServiceError(w, h.log, err, "update slot booking")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}
