package dto

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token string      `json:"token"`
	User  *UserOutput `json:"user"`
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Username        string  `json:"username" validate:"required,min=3"`
	Email           string  `json:"email" validate:"required,email"`
	Password        string  `json:"password" validate:"required,min=6"`
	StartingCapital float64 `json:"starting_capital" validate:"gte=0"`
}

// UserOutput represents user details in API responses
type UserOutput struct {
	ID              string  `json:"id"`
	Username        string  `json:"username"`
	Email           string  `json:"email"`
	Role            string  `json:"role"`
	StartingCapital float64 `json:"starting_capital"`
	WeeklyCapital   float64 `json:"weekly_capital"`
	RunningCapital  float64 `json:"running_capital"`
}
