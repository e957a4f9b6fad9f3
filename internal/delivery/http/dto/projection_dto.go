package dto

// ScheduledDepositInput is a hypothetical deposit on a projection timeline
type ScheduledDepositInput struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Bonus  float64 `json:"bonus" validate:"gte=0"`
	Date   string  `json:"date" validate:"required"`
	Timing string  `json:"timing" validate:"required,oneof=before-trade inbetween-trade after-trade"`
}

// ScheduledWithdrawalInput is a hypothetical withdrawal on a projection timeline
type ScheduledWithdrawalInput struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Date   string  `json:"date" validate:"required"`
	Timing string  `json:"timing" validate:"required,oneof=before-trade inbetween-trade after-trade"`
}

// ProjectionRequest represents the projection generation payload
type ProjectionRequest struct {
	StartingCapital float64                    `json:"starting_capital" validate:"required,gt=0"`
	HorizonDays     int                        `json:"horizon_days" validate:"required,gt=0"`
	StartDate       string                     `json:"start_date"`
	Deposits        []ScheduledDepositInput    `json:"deposits" validate:"dive"`
	Withdrawals     []ScheduledWithdrawalInput `json:"withdrawals" validate:"dive"`
}

// ProjectionWithdrawRequest inserts a withdrawal into a regenerated projection
type ProjectionWithdrawRequest struct {
	StartingCapital float64                 `json:"starting_capital" validate:"required,gt=0"`
	HorizonDays     int                     `json:"horizon_days" validate:"required,gt=0"`
	StartDate       string                  `json:"start_date"`
	Deposits        []ScheduledDepositInput `json:"deposits" validate:"dive"`
	Date            string                  `json:"date" validate:"required"`
	Amount          float64                 `json:"amount" validate:"required,gt=0"`
	Timing          string                  `json:"timing" validate:"required,oneof=before-trade inbetween-trade after-trade"`
}

// DaysToProfitOutput reports how long compounding takes to reach a target
type DaysToProfitOutput struct {
	Capital      float64 `json:"capital"`
	TargetProfit float64 `json:"target_profit"`
	Days         int     `json:"days"`
}
