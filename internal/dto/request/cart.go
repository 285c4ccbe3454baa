package request

type BookCartRequest struct {
	UserID   string `json:"user_id" validate:"required,uuid4"`
	FullName string `json:"full_name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
}
