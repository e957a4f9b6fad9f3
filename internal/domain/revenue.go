package domain

import (
	"time"

	"github.com/google/uuid"
)

// MonthlyRevenue is the per-user revenue aggregate, upserted whenever a signal
// completes. Keyed by (user, month, year).
type MonthlyRevenue struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Month        string    `json:"month"` // "January" .. "December"
	Year         int       `json:"year"`
	TotalRevenue float64   `json:"total_revenue"`
	UpdatedAt    time.Time `json:"updated_at"`
}
