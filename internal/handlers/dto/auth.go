package dto

type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=50"`
	Email    string `json:"email" binding:"required,email,max=120"`
	Password string `json:"password" binding:"required,max=72"`
}

// LoginRequest takes an email or a username. Presence is checked by the service.
type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"jwt_token"`
}
