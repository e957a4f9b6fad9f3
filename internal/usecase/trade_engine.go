package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tradecap/internal/domain"
	"tradecap/internal/utils"
	"tradecap/pkg/metrics"
)

// TradeEngine owns the signal execute transition and the per-window batch run.
// It is the only writer of signal status and, through it, of running capital.
type TradeEngine struct {
	signalRepo     domain.SignalRepository
	userRepo       domain.UserRepository
	revenueRepo    domain.RevenueRepository
	clock          utils.Clock
	strictBoundary bool
	metrics        *metrics.Recorder
	log            zerolog.Logger
}

// NewTradeEngine creates a new TradeEngine.
func NewTradeEngine(
	signalRepo domain.SignalRepository,
	userRepo domain.UserRepository,
	revenueRepo domain.RevenueRepository,
	clock utils.Clock,
	strictBoundary bool,
	rec *metrics.Recorder,
	log zerolog.Logger,
) *TradeEngine {
	return &TradeEngine{
		signalRepo:     signalRepo,
		userRepo:       userRepo,
		revenueRepo:    revenueRepo,
		clock:          clock,
		strictBoundary: strictBoundary,
		metrics:        rec,
		log:            log,
	}
}

// ExecutionFailure records one signal that could not be executed during a
// batch run.
type ExecutionFailure struct {
	SignalID uuid.UUID `json:"signal_id"`
	UserID   uuid.UUID `json:"user_id"`
	Reason   string    `json:"reason"`
}

// WindowResult summarizes one batch window execution.
type WindowResult struct {
	Window    string             `json:"window"`
	Processed int                `json:"processed"`
	Failed    []ExecutionFailure `json:"failed"`
}

// ExecuteSignal runs the one-way execute transition for a single signal.
// Preconditions: the signal is not-started and startingCapital is the user's
// current running capital. The signal write is status-guarded, so a redundant
// trigger loses the race and gets ErrAlreadyProcessed. The two side effects
// (running capital, monthly revenue) follow the signal write; if either fails
// the transition is reported as failed even though the signal committed.
func (e *TradeEngine) ExecuteSignal(ctx context.Context, signal *domain.Signal, user *domain.User) (domain.TradeResult, error) {
	result := domain.CalculateProfit(user.RunningCapital)

	err := e.signalRepo.MarkCompleted(ctx, signal.ID, user.RunningCapital, result.BalanceAfter, result.Profit)
	if err != nil {
		return domain.TradeResult{}, fmt.Errorf("mark signal %s completed: %w", signal.ID, err)
	}

	if err := e.userRepo.UpdateRunningCapital(ctx, user.ID, result.BalanceAfter); err != nil {
		return domain.TradeResult{}, fmt.Errorf("update running capital for user %s: %w", user.ID, err)
	}

	now := e.clock.Now()
	if err := e.revenueRepo.Upsert(ctx, user.ID, now.Month().String(), now.Year(), result.BalanceAfter); err != nil {
		return domain.TradeResult{}, fmt.Errorf("upsert revenue for user %s: %w", user.ID, err)
	}

	return result, nil
}

// ExecuteWindow resolves the active trading window and executes every pending
// signal in it, across all users. Outside a window it is a no-op. One user's
// failure never aborts the batch.
func (e *TradeEngine) ExecuteWindow(ctx context.Context) (*WindowResult, error) {
	started := time.Now()
	res := utils.ResolveWindow(e.clock.Now(), e.strictBoundary)
	if !res.Active {
		e.log.Debug().Msg("not within a trading window, skipping batch run")
		return &WindowResult{}, nil
	}

	e.log.Info().Str("window", res.Window).Msg("processing signals for window")

	signals, err := e.signalRepo.GetPendingForWindow(ctx, res.Date, res.Label)
	if err != nil {
		return nil, fmt.Errorf("query pending signals for %s: %w", res.Window, err)
	}

	result := &WindowResult{Window: res.Window}
	if len(signals) == 0 {
		e.log.Info().Str("window", res.Window).Msg("no pending signals for window")
		return result, nil
	}

	for _, signal := range signals {
		if err := e.executeOne(ctx, signal); err != nil {
			result.Failed = append(result.Failed, ExecutionFailure{
				SignalID: signal.ID,
				UserID:   signal.UserID,
				Reason:   err.Error(),
			})
			if e.metrics != nil {
				e.metrics.RecordFailed(string(res.Label))
			}
			e.log.Error().Err(err).
				Str("signal_id", signal.ID.String()).
				Str("user_id", signal.UserID.String()).
				Msg("signal execution failed")
			continue
		}
		result.Processed++
		if e.metrics != nil {
			e.metrics.RecordProcessed(string(res.Label))
		}
	}

	if e.metrics != nil {
		e.metrics.ObserveBatchDuration(time.Since(started).Seconds())
	}
	e.log.Info().
		Str("window", res.Window).
		Int("processed", result.Processed).
		Int("failed", len(result.Failed)).
		Msg("window execution finished")

	return result, nil
}

func (e *TradeEngine) executeOne(ctx context.Context, signal *domain.Signal) error {
	user, err := e.userRepo.GetByID(ctx, signal.UserID)
	if err != nil {
		return fmt.Errorf("get user %s: %w", signal.UserID, err)
	}

	_, err = e.ExecuteSignal(ctx, signal, user)
	return err
}

// ExecuteForUser executes the caller's own pending signal for the currently
// active window. Returns ErrNotFound when no window is active or no pending
// signal exists for it.
func (e *TradeEngine) ExecuteForUser(ctx context.Context, userID uuid.UUID) (*domain.Signal, *domain.User, error) {
	res := utils.ResolveWindow(e.clock.Now(), e.strictBoundary)
	if !res.Active {
		return nil, nil, fmt.Errorf("no active trading window: %w", domain.ErrNotFound)
	}

	signal, err := e.signalRepo.GetPendingForUserWindow(ctx, userID, res.Date, res.Label)
	if err != nil {
		return nil, nil, fmt.Errorf("find pending signal for %s: %w", res.Window, err)
	}

	user, err := e.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("get user %s: %w", userID, err)
	}

	result, err := e.ExecuteSignal(ctx, signal, user)
	if err != nil {
		return nil, nil, err
	}

	signal.Status = domain.SignalCompleted
	signal.Traded = true
	signal.StartingCapital = user.RunningCapital
	signal.FinalCapital = result.BalanceAfter
	signal.Profit = result.Profit
	user.RunningCapital = result.BalanceAfter

	return signal, user, nil
}
