package domain

import (
	"time"

	"github.com/google/uuid"
)

// TradeTiming marks at which point of the two-trade daily cycle a deposit or
// withdrawal takes effect.
type TradeTiming string

const (
	TimingBeforeTrade    TradeTiming = "before-trade"
	TimingInbetweenTrade TradeTiming = "inbetween-trade"
	TimingAfterTrade     TradeTiming = "after-trade"
)

// Valid reports whether the timing is one of the three known values.
func (t TradeTiming) Valid() bool {
	switch t {
	case TimingBeforeTrade, TimingInbetweenTrade, TimingAfterTrade:
		return true
	}
	return false
}

// Deposit represents a user-initiated capital addition.
type Deposit struct {
	ID            uuid.UUID   `json:"id"`
	UserID        uuid.UUID   `json:"user_id"`
	Amount        float64     `json:"amount"`
	Bonus         float64     `json:"bonus"`
	Capital       float64     `json:"capital"` // running capital at posting time
	WhenDeposited TradeTiming `json:"when_deposited"`
	Date          time.Time   `json:"date"`
	CreatedAt     time.Time   `json:"created_at"`
}

// Withdrawal represents a user-initiated capital removal.
type Withdrawal struct {
	ID           uuid.UUID   `json:"id"`
	UserID       uuid.UUID   `json:"user_id"`
	Amount       float64     `json:"amount"`
	WhenWithdraw TradeTiming `json:"when_withdraw"`
	Date         time.Time   `json:"date"`
	CreatedAt    time.Time   `json:"created_at"`
}
