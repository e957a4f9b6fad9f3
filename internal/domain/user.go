package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a capital-bearing account in the system
type User struct {
	ID              uuid.UUID `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"` // Never expose password hash in JSON
	Role            string    `json:"role"`
	StartingCapital float64   `json:"starting_capital"`
	WeeklyCapital   float64   `json:"weekly_capital"`
	RunningCapital  float64   `json:"running_capital"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UserRole constants
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)
