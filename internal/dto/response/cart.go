package response

type CartBookingResponse struct {
	Success    bool     `json:"success"`
	BookingIDs []string `json:"booking_ids"`
	Errors     []string `json:"errors,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}
