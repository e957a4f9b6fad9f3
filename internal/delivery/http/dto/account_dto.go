package dto

// SignalOutput represents one signal in API responses
type SignalOutput struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Date            string  `json:"date"`
	Window          string  `json:"window"`
	WindowLabel     string  `json:"window_label"`
	Status          string  `json:"status"`
	Traded          bool    `json:"traded"`
	StartingCapital float64 `json:"starting_capital"`
	FinalCapital    float64 `json:"final_capital"`
	Profit          float64 `json:"profit"`
}

// SignalStatsOutput summarizes a user's completed signals
type SignalStatsOutput struct {
	TotalSignals     int     `json:"total_signals"`
	CompletedSignals int     `json:"completed_signals"`
	TotalProfit      float64 `json:"total_profit"`
	AverageProfit    float64 `json:"average_profit"`
}

// ExecuteSignalResponse is returned after a manual signal execution
type ExecuteSignalResponse struct {
	Signal         *SignalOutput `json:"signal"`
	RunningCapital float64       `json:"running_capital"`
}

// RevenueOutput represents one monthly revenue aggregate
type RevenueOutput struct {
	Month        string  `json:"month"`
	Year         int     `json:"year"`
	TotalRevenue float64 `json:"total_revenue"`
}

// CreateDepositRequest represents the deposit creation payload
type CreateDepositRequest struct {
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	Bonus         float64 `json:"bonus" validate:"gte=0"`
	WhenDeposited string  `json:"when_deposited" validate:"required,oneof=before-trade inbetween-trade after-trade"`
	Date          string  `json:"date" validate:"required"`
}

// DepositOutput represents one deposit in API responses
type DepositOutput struct {
	ID            string  `json:"id"`
	Amount        float64 `json:"amount"`
	Bonus         float64 `json:"bonus"`
	Capital       float64 `json:"capital"`
	WhenDeposited string  `json:"when_deposited"`
	Date          string  `json:"date"`
}

// CreateWithdrawalRequest represents the withdrawal creation payload
type CreateWithdrawalRequest struct {
	Amount       float64 `json:"amount" validate:"required,gt=0"`
	WhenWithdraw string  `json:"when_withdraw" validate:"required,oneof=before-trade inbetween-trade after-trade"`
	Date         string  `json:"date" validate:"required"`
}

// WithdrawalOutput represents one withdrawal in API responses
type WithdrawalOutput struct {
	ID           string  `json:"id"`
	Amount       float64 `json:"amount"`
	WhenWithdraw string  `json:"when_withdraw"`
	Date         string  `json:"date"`
}
