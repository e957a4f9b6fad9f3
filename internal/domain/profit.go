package domain

const (
	// TradeCutRate is the fraction of the balance committed to a single trade.
	TradeCutRate = 0.01
	// TradeReturnRate is the fraction of the trade cut returned as profit.
	TradeReturnRate = 0.88
)

// TradeResult is the outcome of applying the profit rule once.
type TradeResult struct {
	BalanceBefore float64 `json:"balance_before"`
	TradeAmount   float64 `json:"trade_amount"`
	Profit        float64 `json:"profit"`
	BalanceAfter  float64 `json:"balance_after"`
}

// CalculateProfit applies the deterministic compounding rule to a balance.
// Pure: no rounding, no side effects.
func CalculateProfit(balance float64) TradeResult {
	tradeAmount := balance * TradeCutRate
	profit := tradeAmount * TradeReturnRate
	return TradeResult{
		BalanceBefore: balance,
		TradeAmount:   tradeAmount,
		Profit:        profit,
		BalanceAfter:  balance + profit,
	}
}

// DayTransaction carries an optional deposit or withdrawal applied during a
// simulated trading day. Exactly one of DepositAmount/WithdrawAmount is set.
type DayTransaction struct {
	DepositAmount  float64
	DepositBonus   float64
	WithdrawAmount float64
	Timing         TradeTiming
}

// DayProfits is the full breakdown of one simulated two-trade day.
type DayProfits struct {
	StartingCapital        float64 `json:"starting_capital"`
	BalanceAfterFirstTrade float64 `json:"balance_after_first_trade"`
	Trade1Amount           float64 `json:"trade1_amount"`
	Trade1Profit           float64 `json:"trade1_profit"`
	Trade2Amount           float64 `json:"trade2_amount"`
	Trade2Profit           float64 `json:"trade2_profit"`
	TotalProfit            float64 `json:"total_profit"`
	FinalBalance           float64 `json:"final_balance"`
}

// CalculateDayProfits runs both trades of a day starting from openingBalance.
// A transaction tagged inbetween-trade shifts the basis of trade 2; one tagged
// after-trade shifts only the final balance. Before-trade transactions must be
// folded into openingBalance by the caller. TotalProfit is always the sum of
// the two pure trade profits, never inclusive of the transacted amount.
func CalculateDayProfits(openingBalance float64, txn *DayTransaction) DayProfits {
	first := CalculateProfit(openingBalance)

	secondBasis := first.BalanceAfter
	if txn != nil && txn.Timing == TimingInbetweenTrade {
		if txn.WithdrawAmount > 0 {
			// Never withdraw more than the balance holds at this point.
			w := txn.WithdrawAmount
			if w > first.BalanceAfter {
				w = first.BalanceAfter
			}
			secondBasis -= w
		} else {
			secondBasis += txn.DepositAmount + txn.DepositBonus
		}
	}

	second := CalculateProfit(secondBasis)

	finalBalance := second.BalanceAfter
	if txn != nil && txn.Timing == TimingAfterTrade {
		if txn.WithdrawAmount > 0 {
			w := txn.WithdrawAmount
			if w > finalBalance {
				w = finalBalance
			}
			finalBalance -= w
		} else {
			finalBalance += txn.DepositAmount + txn.DepositBonus
		}
	}

	return DayProfits{
		StartingCapital:        openingBalance,
		BalanceAfterFirstTrade: first.BalanceAfter,
		Trade1Amount:           first.TradeAmount,
		Trade1Profit:           first.Profit,
		Trade2Amount:           second.TradeAmount,
		Trade2Profit:           second.Profit,
		TotalProfit:            first.Profit + second.Profit,
		FinalBalance:           finalBalance,
	}
}
