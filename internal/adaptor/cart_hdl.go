package adaptor

import (
	"encoding/json"
	"net/http"

	"tour-booking/internal/dto/request"
	"tour-booking/internal/usecase"
	"tour-booking/pkg/utils"

	"go.uber.org/zap"
)

type CartHandler struct {
	service usecase.CartService
	log     *zap.Logger
}

func NewCartHandler(service usecase.CartService, log *zap.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		log:     log.With(zap.String("handler", "cart")),
	}
}

// BookCart handles POST /api/cart/book (public)
func (h *CartHandler) BookCart(w http.ResponseWriter, r *http.Request) {
	var req request.BookCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.service.BookCartItems(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "book cart")
		return
	}

	if !result.Success {
		utils.ResponseBadRequest(w, "No cart items could be booked", result)
		return
	}

	utils.ResponseCreated(w, "success", result)
}
