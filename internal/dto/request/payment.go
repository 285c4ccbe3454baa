package request

// BookingDraft carries the checkout details the client collected, used to
// create the booking when the webhook has not arrived first.
type BookingDraft struct {
	PackageType string  `json:"package_type" validate:"required,oneof=tour transfer"`
	PackageID   string  `json:"package_id" validate:"required,uuid4"`
	Date        string  `json:"date" validate:"required,len=10"`
	Time        string  `json:"time" validate:"required,len=5"`
	Adults      int     `json:"adults" validate:"required,min=1,max=100"`
	Children    int     `json:"children" validate:"min=0,max=100"`
	FullName    string  `json:"full_name" validate:"required,max=200"`
	Email       string  `json:"email" validate:"required,email,max=254"`
	Phone       string  `json:"phone" validate:"omitempty,max=30"`
	TotalAmount float64 `json:"total_amount" validate:"min=0"`
	Currency    string  `json:"currency" validate:"omitempty,len=3"`
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string        `json:"payment_intent_id" validate:"required,max=255"`
	Booking         *BookingDraft `json:"booking" validate:"omitempty"`
}
