package service

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tradecap/internal/domain"
	"tradecap/internal/utils"
)

func newProjection(now time.Time) *ProjectionService {
	return NewProjectionService(utils.FixedClock{Instant: now}, zerolog.Nop())
}

func TestProjectScheduleCompounds(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := newProjection(now)

	entries, err := svc.ProjectSchedule(2000, nil, nil, now, 10)
	if err != nil {
		t.Fatalf("ProjectSchedule failed: %v", err)
	}
	if len(entries) != 10 {
		t.Fatalf("entries = %d, want 10", len(entries))
	}

	running := 2000.0
	for i, e := range entries {
		if !almostEqual(e.BalanceBeforeTrade, running) {
			t.Errorf("day %d opens at %v, want %v", i, e.BalanceBeforeTrade, running)
		}
		wantClose := running * 1.0088 * 1.0088
		if !almostEqual(e.BalanceAfterTrade, wantClose) {
			t.Errorf("day %d closes at %v, want %v", i, e.BalanceAfterTrade, wantClose)
		}
		if !almostEqual(e.TotalProfit, wantClose-running) {
			t.Errorf("day %d profit = %v, want %v", i, e.TotalProfit, wantClose-running)
		}
		running = wantClose
	}

	if entries[0].FullDate != "2025-03-01" {
		t.Errorf("first day key = %q, want 2025-03-01", entries[0].FullDate)
	}
}

func TestProjectScheduleBeforeTradeDeposit(t *testing.T) {
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	svc := newProjection(start)

	deposits := []ScheduledDeposit{{
		Amount: 100,
		Date:   start,
		Timing: domain.TimingBeforeTrade,
	}}

	entries, err := svc.ProjectSchedule(1000, deposits, nil, start, 1)
	if err != nil {
		t.Fatalf("ProjectSchedule failed: %v", err)
	}

	day := entries[0]
	if !almostEqual(day.BalanceBeforeTrade, 1100) {
		t.Errorf("opening balance = %v, want 1100 with the deposit folded in", day.BalanceBeforeTrade)
	}
	if !almostEqual(day.Trade1Amount, 11) {
		t.Errorf("trade 1 amount = %v, want 11", day.Trade1Amount)
	}
}

func TestProjectScheduleAfterTradeDepositExcludedFromProfit(t *testing.T) {
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	svc := newProjection(start)

	deposits := []ScheduledDeposit{{
		Amount: 500,
		Date:   start,
		Timing: domain.TimingAfterTrade,
	}}

	entries, err := svc.ProjectSchedule(1000, deposits, nil, start, 2)
	if err != nil {
		t.Fatalf("ProjectSchedule failed: %v", err)
	}

	day := entries[0]
	tradeProfit := day.Trade1Profit + day.Trade2Profit
	if !almostEqual(day.TotalProfit, tradeProfit) {
		t.Errorf("total profit = %v, want pure trade profit %v", day.TotalProfit, tradeProfit)
	}
	wantClose := 1000*1.0088*1.0088 + 500
	if !almostEqual(day.BalanceAfterTrade, wantClose) {
		t.Errorf("closing balance = %v, want %v", day.BalanceAfterTrade, wantClose)
	}
	// The next day compounds from the deposit-inclusive balance.
	if !almostEqual(entries[1].BalanceBeforeTrade, wantClose) {
		t.Errorf("next day opens at %v, want %v", entries[1].BalanceBeforeTrade, wantClose)
	}
}

func TestProjectScheduleInbetweenWithdrawalShiftsTradeTwo(t *testing.T) {
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	svc := newProjection(start)

	withdrawals := []ScheduledWithdrawal{{
		Amount: 200,
		Date:   start,
		Timing: domain.TimingInbetweenTrade,
	}}

	entries, err := svc.ProjectSchedule(1000, nil, withdrawals, start, 1)
	if err != nil {
		t.Fatalf("ProjectSchedule failed: %v", err)
	}

	day := entries[0]
	basisAfterFirst := 1000 * 1.0088
	wantTrade2 := (basisAfterFirst - 200) * 0.01
	if !almostEqual(day.Trade2Amount, wantTrade2) {
		t.Errorf("trade 2 amount = %v, want %v from the reduced basis", day.Trade2Amount, wantTrade2)
	}
	if !day.ScheduledWithdraw || day.WithdrawalAmount != 200 {
		t.Errorf("withdrawal not annotated on the day: %+v", day)
	}
}

func TestProjectScheduleRejectsInvalidTiming(t *testing.T) {
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	svc := newProjection(start)

	_, err := svc.ProjectSchedule(1000, []ScheduledDeposit{{
		Amount: 100,
		Date:   start,
		Timing: "sometime",
	}}, nil, start, 1)
	if !errors.Is(err, domain.ErrInvalidTiming) {
		t.Fatalf("error = %v, want ErrInvalidTiming", err)
	}
}

func TestScheduleWithdrawalCascades(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	svc := newProjection(start)

	entries, err := svc.ProjectSchedule(2000, nil, nil, start, 10)
	if err != nil {
		t.Fatalf("ProjectSchedule failed: %v", err)
	}

	before := make([]DayEntry, len(entries))
	copy(before, entries)

	target := entries[4].FullDate
	if err := svc.ScheduleWithdrawal(entries, target, 100, domain.TimingAfterTrade); err != nil {
		t.Fatalf("ScheduleWithdrawal failed: %v", err)
	}

	// Days before the withdrawal are untouched.
	for i := 0; i < 4; i++ {
		if entries[i] != before[i] {
			t.Errorf("day %d changed by a later withdrawal", i)
		}
	}

	if !entries[4].ScheduledWithdraw {
		t.Errorf("withdrawal day not flagged")
	}
	if !almostEqual(entries[4].BalanceAfterTrade, before[4].BalanceAfterTrade-100) {
		t.Errorf("withdrawal day closes at %v, want %v", entries[4].BalanceAfterTrade, before[4].BalanceAfterTrade-100)
	}

	// Every later day compounds from the reduced balance.
	running := entries[4].BalanceAfterTrade
	for i := 5; i < 10; i++ {
		if !almostEqual(entries[i].BalanceBeforeTrade, running) {
			t.Errorf("day %d opens at %v, want %v", i, entries[i].BalanceBeforeTrade, running)
		}
		running = running * 1.0088 * 1.0088
		if !almostEqual(entries[i].BalanceAfterTrade, running) {
			t.Errorf("day %d closes at %v, want %v", i, entries[i].BalanceAfterTrade, running)
		}
	}
}

func TestScheduleWithdrawalInsufficientBalanceLeavesProjectionIntact(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	svc := newProjection(start)

	entries, err := svc.ProjectSchedule(1000, nil, nil, start, 5)
	if err != nil {
		t.Fatalf("ProjectSchedule failed: %v", err)
	}
	before := make([]DayEntry, len(entries))
	copy(before, entries)

	err = svc.ScheduleWithdrawal(entries, entries[2].FullDate, 1_000_000, domain.TimingAfterTrade)
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("error = %v, want ErrInsufficientBalance", err)
	}

	for i := range entries {
		if entries[i] != before[i] {
			t.Errorf("day %d mutated by a rejected withdrawal", i)
		}
	}
}

func TestScheduleWithdrawalUnknownDate(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	svc := newProjection(start)

	entries, _ := svc.ProjectSchedule(1000, nil, nil, start, 3)
	err := svc.ScheduleWithdrawal(entries, "2030-01-01", 10, domain.TimingAfterTrade)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestWeeklyDetailsAnchorsOnSunday(t *testing.T) {
	// A Wednesday; the week opened on Sunday the 23rd.
	now := time.Date(2025, 2, 26, 9, 0, 0, 0, time.UTC)
	svc := newProjection(now)

	entries, err := svc.WeeklyDetails(2000, nil, nil)
	if err != nil {
		t.Fatalf("WeeklyDetails failed: %v", err)
	}

	if len(entries) != 7 {
		t.Fatalf("entries = %d, want 7", len(entries))
	}
	if entries[0].FullDate != "2025-02-23" {
		t.Errorf("week opens on %q, want 2025-02-23", entries[0].FullDate)
	}
	if entries[0].Weekday != "Sunday" {
		t.Errorf("first day = %q, want Sunday", entries[0].Weekday)
	}

	// Days already behind the clock have both windows marked passed.
	if !entries[0].FirstWindowPassed || !entries[0].SecondWindowPassed {
		t.Errorf("past day windows not marked passed: %+v", entries[0])
	}
	// Today, 09:00: neither window has opened yet.
	if entries[3].FirstWindowPassed || entries[3].SecondWindowPassed {
		t.Errorf("today's windows marked passed at 09:00: %+v", entries[3])
	}
}

func TestSeedCapitalForToday(t *testing.T) {
	if got, want := SeedCapitalForToday(2000, 2), 2000.0; !almostEqual(got, want) {
		t.Errorf("both done: %v, want %v", got, want)
	}
	if got, want := SeedCapitalForToday(2000, 1), 2000*1.0088; !almostEqual(got, want) {
		t.Errorf("one left: %v, want %v", got, want)
	}
	if got, want := SeedCapitalForToday(2000, 0), 2000*1.0088*1.0088; !almostEqual(got, want) {
		t.Errorf("both left: %v, want %v", got, want)
	}
}

func TestDaysToReachProfit(t *testing.T) {
	// One full day on 2000 yields about 35.35 profit.
	if got := DaysToReachProfit(2000, 17); got != 1 {
		t.Errorf("days to 17 = %d, want 1", got)
	}
	if got := DaysToReachProfit(2000, 36); got != 2 {
		t.Errorf("days to 36 = %d, want 2", got)
	}
	if got := DaysToReachProfit(2000, 0); got != 0 {
		t.Errorf("days to 0 = %d, want 0", got)
	}
	if got := DaysToReachProfit(0, 100); got != 0 {
		t.Errorf("days with no capital = %d, want 0", got)
	}
}
