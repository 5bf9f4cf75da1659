package dto

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by both register and login: the freshly minted
// claim plus the email it was minted for.
type AuthResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}
