package wire

import (
	"tour-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireCart(r chi.Router, cartHandler *adaptor.CartHandler) {
	// POST /api/cart/book - Book every bookable item in the user's cart
	r.Post("/api/cart/book", cartHandler.BookCart)
}
