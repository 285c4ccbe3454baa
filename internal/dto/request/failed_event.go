package request

type ResolveFailedEventRequest struct {
	ResolvedBy string  `json:"resolved_by" validate:"required,max=100"`
	Notes      *string `json:"notes" validate:"omitempty,max=2000"`
}

type RetryFailedEventRequest struct {
	RequestedBy string `json:"requested_by" validate:"required,max=100"`
}
