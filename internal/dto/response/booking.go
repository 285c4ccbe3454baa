package response

import (
	"time"

	"tour-booking/internal/data/entity"
)

type BookingResponse struct {
	ID            string               `json:"id"`
	OrderID       string               `json:"order_id"`
	PackageType   string               `json:"package_type"`
	PackageID     string               `json:"package_id"`
	Date          string               `json:"date"`
	Time          string               `json:"time"`
	Adults        int                  `json:"adults"`
	Children      int                  `json:"children"`
	FullName      string               `json:"full_name"`
	Email         string               `json:"email"`
	Status        entity.BookingStatus `json:"status"`
	PaymentStatus entity.PaymentStatus `json:"payment_status"`
	IsPrivate     bool                 `json:"is_private"`
	TotalAmount   float64              `json:"total_amount"`
	Currency      string               `json:"currency"`
	CreatedAt     time.Time            `json:"created_at"`
}

func BookingToResponse(booking *entity.Booking) BookingResponse {
	return BookingResponse{
		ID:            booking.ID.String(),
		OrderID:       booking.OrderID,
		PackageType:   string(booking.PackageType),
		PackageID:     booking.PackageID.String(),
		Date:          booking.Date,
		Time:          booking.Time,
		Adults:        booking.Adults,
		Children:      booking.Children,
		FullName:      booking.FullName,
		Email:         booking.Email,
		Status:        booking.Status,
		PaymentStatus: booking.PaymentStatus,
		IsPrivate:     booking.IsPrivate,
		TotalAmount:   booking.TotalAmount,
		Currency:      booking.Currency,
		CreatedAt:     booking.CreatedAt,
	}
}
