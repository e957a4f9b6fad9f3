package service

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"tradecap/internal/domain"
	"tradecap/internal/utils"
)

// ScheduledDeposit is a hypothetical deposit on a projection timeline.
type ScheduledDeposit struct {
	Amount float64            `json:"amount"`
	Bonus  float64            `json:"bonus"`
	Date   time.Time          `json:"date"`
	Timing domain.TradeTiming `json:"timing"`
}

// ScheduledWithdrawal is a hypothetical withdrawal on a projection timeline.
type ScheduledWithdrawal struct {
	Amount float64            `json:"amount"`
	Date   time.Time          `json:"date"`
	Timing domain.TradeTiming `json:"timing"`
}

// DayEntry is one simulated trading day in a projection.
type DayEntry struct {
	Month              string             `json:"month"`
	Weekday            string             `json:"weekday"`
	Label              string             `json:"label"`     // e.g. "Sunday 23rd"
	FullDate           string             `json:"full_date"` // stable key, YYYY-MM-DD
	BalanceBeforeTrade float64            `json:"balance_before_trade"`
	Trade1Amount       float64            `json:"trade1_amount"`
	Trade1Profit       float64            `json:"trade1_profit"`
	Trade2Amount       float64            `json:"trade2_amount"`
	Trade2Profit       float64            `json:"trade2_profit"`
	TotalProfit        float64            `json:"total_profit"`
	BalanceAfterTrade  float64            `json:"balance_after_trade"`
	FirstWindowPassed  bool               `json:"first_window_passed"`
	SecondWindowPassed bool               `json:"second_window_passed"`
	ScheduledWithdraw  bool               `json:"scheduled_withdraw"`
	WithdrawalAmount   float64            `json:"withdrawal_amount"`
	WithdrawalTiming   domain.TradeTiming `json:"withdrawal_timing,omitempty"`
	DepositAmount      float64            `json:"deposit_amount"`
	DepositBonus       float64            `json:"deposit_bonus"`
	DepositTiming      domain.TradeTiming `json:"deposit_timing,omitempty"`
}

// ProjectionService builds forward capital simulations. It never writes to
// any store; projections are planning artifacts only.
type ProjectionService struct {
	clock utils.Clock
	log   zerolog.Logger
}

// NewProjectionService creates a new ProjectionService.
func NewProjectionService(clock utils.Clock, log zerolog.Logger) *ProjectionService {
	return &ProjectionService{clock: clock, log: log}
}

// ProjectSchedule simulates horizonDays trading days starting at start, given
// an opening balance and hypothetical deposits/withdrawals. At most one
// deposit and one withdrawal are considered per day; when both fall on the
// same day the deposit drives the in-day computation.
func (s *ProjectionService) ProjectSchedule(
	openingCapital float64,
	deposits []ScheduledDeposit,
	withdrawals []ScheduledWithdrawal,
	start time.Time,
	horizonDays int,
) ([]DayEntry, error) {
	for _, d := range deposits {
		if !d.Timing.Valid() {
			return nil, fmt.Errorf("deposit on %s: %w", d.Date.Format("2006-01-02"), domain.ErrInvalidTiming)
		}
	}
	for _, w := range withdrawals {
		if !w.Timing.Valid() {
			return nil, fmt.Errorf("withdrawal on %s: %w", w.Date.Format("2006-01-02"), domain.ErrInvalidTiming)
		}
	}

	depByDate := make(map[string]*ScheduledDeposit, len(deposits))
	for i := range deposits {
		depByDate[deposits[i].Date.Format("2006-01-02")] = &deposits[i]
	}
	wdByDate := make(map[string]*ScheduledWithdrawal, len(withdrawals))
	for i := range withdrawals {
		wdByDate[withdrawals[i].Date.Format("2006-01-02")] = &withdrawals[i]
	}

	running := openingCapital
	entries := make([]DayEntry, 0, horizonDays)

	for i := 0; i < horizonDays; i++ {
		date := utils.Midnight(start).AddDate(0, 0, i)
		key := date.Format("2006-01-02")
		dep := depByDate[key]
		wd := wdByDate[key]

		// Before-trade transactions fold straight into the opening balance.
		if dep != nil && dep.Timing == domain.TimingBeforeTrade {
			running += dep.Amount + dep.Bonus
		}
		if wd != nil && wd.Timing == domain.TimingBeforeTrade {
			running -= wd.Amount
			if running < 0 {
				running = 0
			}
		}

		var txn *domain.DayTransaction
		switch {
		case dep != nil && dep.Timing != domain.TimingBeforeTrade:
			txn = &domain.DayTransaction{DepositAmount: dep.Amount, DepositBonus: dep.Bonus, Timing: dep.Timing}
		case wd != nil && wd.Timing != domain.TimingBeforeTrade:
			txn = &domain.DayTransaction{WithdrawAmount: wd.Amount, Timing: wd.Timing}
		}

		day := domain.CalculateDayProfits(running, txn)

		// Trading profit never includes the transacted amount itself: back
		// the amount out of the naive balance difference.
		totalProfit := day.TotalProfit
		if dep != nil && dep.Timing != domain.TimingBeforeTrade {
			totalProfit = day.FinalBalance - running - dep.Amount
		}
		if wd != nil && wd.Timing != domain.TimingBeforeTrade {
			totalProfit = day.FinalBalance - running + wd.Amount
		}

		first, second := s.windowsPassed(date)

		entry := DayEntry{
			Month:              date.Month().String(),
			Weekday:            date.Weekday().String(),
			Label:              fmt.Sprintf("%s %d%s", date.Weekday(), date.Day(), daySuffix(date.Day())),
			FullDate:           key,
			BalanceBeforeTrade: running,
			Trade1Amount:       day.Trade1Amount,
			Trade1Profit:       day.Trade1Profit,
			Trade2Amount:       day.Trade2Amount,
			Trade2Profit:       day.Trade2Profit,
			TotalProfit:        totalProfit,
			BalanceAfterTrade:  day.FinalBalance,
			FirstWindowPassed:  first,
			SecondWindowPassed: second,
		}
		if wd != nil {
			entry.ScheduledWithdraw = true
			entry.WithdrawalAmount = wd.Amount
			entry.WithdrawalTiming = wd.Timing
		}
		if dep != nil {
			entry.DepositAmount = dep.Amount
			entry.DepositBonus = dep.Bonus
			entry.DepositTiming = dep.Timing
		}

		entries = append(entries, entry)
		running = day.FinalBalance
	}

	return entries, nil
}

// ScheduleWithdrawal inserts a withdrawal at a date already present in the
// projection and recomputes that day plus every subsequent day. All-or-
// nothing: if the balance check fails, no entry is mutated. Later days are
// recomputed as plain trading days from the new running balance.
func (s *ProjectionService) ScheduleWithdrawal(projection []DayEntry, date string, amount float64, timing domain.TradeTiming) error {
	if !timing.Valid() {
		return domain.ErrInvalidTiming
	}

	idx := -1
	for i := range projection {
		if projection[i].FullDate == date {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("no projection entry for %s: %w", date, domain.ErrNotFound)
	}

	day := &projection[idx]

	var relevant float64
	switch timing {
	case domain.TimingBeforeTrade:
		relevant = day.BalanceBeforeTrade
	case domain.TimingInbetweenTrade:
		relevant = day.BalanceBeforeTrade + day.Trade1Profit
	default:
		relevant = day.BalanceAfterTrade
	}
	if relevant < amount {
		return fmt.Errorf("withdraw %.2f on %s: %w", amount, date, domain.ErrInsufficientBalance)
	}

	day.ScheduledWithdraw = true
	day.WithdrawalAmount = amount
	day.WithdrawalTiming = timing

	switch timing {
	case domain.TimingBeforeTrade:
		recomputed := domain.CalculateDayProfits(day.BalanceBeforeTrade-amount, nil)
		day.BalanceBeforeTrade -= amount
		applyDayProfits(day, recomputed)
	case domain.TimingInbetweenTrade:
		recomputed := domain.CalculateDayProfits(day.BalanceBeforeTrade, &domain.DayTransaction{
			WithdrawAmount: amount,
			Timing:         domain.TimingInbetweenTrade,
		})
		day.Trade2Amount = recomputed.Trade2Amount
		day.Trade2Profit = recomputed.Trade2Profit
		day.TotalProfit = recomputed.TotalProfit
		day.BalanceAfterTrade = recomputed.FinalBalance
	default: // after-trade
		day.BalanceAfterTrade -= amount
	}

	// A withdrawal changes compounding for every following day.
	running := day.BalanceAfterTrade
	for i := idx + 1; i < len(projection); i++ {
		recomputed := domain.CalculateDayProfits(running, nil)
		projection[i].BalanceBeforeTrade = running
		applyDayProfits(&projection[i], recomputed)
		running = recomputed.FinalBalance
	}

	return nil
}

func applyDayProfits(entry *DayEntry, day domain.DayProfits) {
	entry.Trade1Amount = day.Trade1Amount
	entry.Trade1Profit = day.Trade1Profit
	entry.Trade2Amount = day.Trade2Amount
	entry.Trade2Profit = day.Trade2Profit
	entry.TotalProfit = day.TotalProfit
	entry.BalanceAfterTrade = day.FinalBalance
}

// WeeklyDetails projects the seven days of a week, anchored on the Sunday of
// either the current week or the week following lastWeekEnd.
func (s *ProjectionService) WeeklyDetails(startingCapital float64, deposits []ScheduledDeposit, lastWeekEnd *time.Time) ([]DayEntry, error) {
	start := s.clock.Now()
	if lastWeekEnd != nil {
		start = lastWeekEnd.AddDate(0, 0, 7)
	}
	sunday := utils.Midnight(start).AddDate(0, 0, -int(start.Weekday()))

	return s.ProjectSchedule(startingCapital, deposits, nil, sunday, 7)
}

// SeedCapitalForToday returns the capital a projection starting tomorrow
// should open with, given how many of today's two signals have already
// completed: remaining signals are simulated onto the current capital.
func SeedCapitalForToday(capital float64, signalsCompleted int) float64 {
	switch signalsCompleted {
	case 0:
		first := domain.CalculateProfit(capital)
		return domain.CalculateProfit(first.BalanceAfter).BalanceAfter
	case 1:
		return domain.CalculateProfit(capital).BalanceAfter
	default:
		return capital
	}
}

// DaysToReachProfit returns how many full two-trade days it takes for the
// accumulated trading profit to reach target, compounding from capital.
func DaysToReachProfit(capital, target float64) int {
	if target <= 0 || capital <= 0 {
		return 0
	}

	days := 0
	running := capital
	total := 0.0
	for total < target {
		for i := 0; i < 2; i++ {
			trade := domain.CalculateProfit(running)
			total += trade.Profit
			running = trade.BalanceAfter
		}
		days++
	}
	return days
}

// windowsPassed reports, for a projected date, whether each trading window
// has already elapsed relative to the injected clock.
func (s *ProjectionService) windowsPassed(date time.Time) (bool, bool) {
	now := s.clock.Now()
	today := utils.Midnight(now)
	day := utils.Midnight(date)

	if day.Before(today) {
		return true, true
	}
	if day.Equal(today) {
		return now.Hour() > domain.MorningHour, now.Hour() > domain.EveningHour
	}
	return false, false
}

func daySuffix(day int) string {
	if day > 3 && day < 21 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
