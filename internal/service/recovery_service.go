package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tradecap/internal/domain"
	"tradecap/internal/utils"
	"tradecap/pkg/metrics"
)

// RecoveryService replays signals left not-started after their window passed,
// bringing each user's capital chain back to a consistent state. Safe to
// re-run: the not-started filter is the idempotency boundary.
type RecoveryService struct {
	signalRepo domain.SignalRepository
	userRepo   domain.UserRepository
	clock      utils.Clock
	metrics    *metrics.Recorder
	log        zerolog.Logger
}

// NewRecoveryService creates a new RecoveryService.
func NewRecoveryService(
	signalRepo domain.SignalRepository,
	userRepo domain.UserRepository,
	clock utils.Clock,
	rec *metrics.Recorder,
	log zerolog.Logger,
) *RecoveryService {
	return &RecoveryService{
		signalRepo: signalRepo,
		userRepo:   userRepo,
		clock:      clock,
		metrics:    rec,
		log:        log,
	}
}

// RecoveryResult summarizes one recovery sweep.
type RecoveryResult struct {
	Processed int            `json:"processed"`
	PerUser   map[string]int `json:"per_user"`
	Errors    []string       `json:"errors"`
}

// RecoverMissed finds all signals dated on or before today that are still
// not-started and replays them per user in chronological order: ascending
// calendar date, morning before evening. A per-signal error is recorded and
// the sweep continues; nothing aborts globally.
func (s *RecoveryService) RecoverMissed(ctx context.Context) (*RecoveryResult, error) {
	today := utils.Midnight(s.clock.Now())

	signals, err := s.signalRepo.GetUnprocessedThrough(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("query unprocessed signals: %w", err)
	}

	result := &RecoveryResult{PerUser: map[string]int{}}
	if len(signals) == 0 {
		s.log.Info().Msg("no missed signals to recover")
		return result, nil
	}

	byUser := make(map[uuid.UUID][]*domain.Signal)
	for _, sig := range signals {
		// Future signals are not yet due.
		if sig.CalendarDate.After(today) {
			continue
		}
		byUser[sig.UserID] = append(byUser[sig.UserID], sig)
	}

	s.log.Info().Int("signals", len(signals)).Int("users", len(byUser)).Msg("recovering missed signals")

	for userID, group := range byUser {
		processed, err := s.recoverUser(ctx, userID, group, result)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("user %s: %v", userID, err))
			s.log.Error().Err(err).Str("user_id", userID.String()).Msg("recovery failed for user")
			continue
		}
		if processed > 0 {
			result.PerUser[userID.String()] = processed
			result.Processed += processed
		}
	}

	s.log.Info().
		Int("processed", result.Processed).
		Int("errors", len(result.Errors)).
		Msg("recovery sweep finished")

	return result, nil
}

// recoverUser replays one user's missed signals in chronological order and
// persists the final running capital once at the end.
func (s *RecoveryService) recoverUser(ctx context.Context, userID uuid.UUID, group []*domain.Signal, result *RecoveryResult) (int, error) {
	// Chronological replay is mandatory: sorting, not storage order,
	// determines the final capital.
	sort.Slice(group, func(i, j int) bool {
		if !group[i].CalendarDate.Equal(group[j].CalendarDate) {
			return group[i].CalendarDate.Before(group[j].CalendarDate)
		}
		return group[i].WindowLabel.Order() < group[j].WindowLabel.Order()
	})

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("get user: %w", err)
	}

	running := user.RunningCapital
	processed := 0

	for _, sig := range group {
		// A signal pre-seeded at creation time carries its own basis;
		// everything after it compounds from the computed chain.
		basis := running
		if sig.StartingCapital > 0 {
			basis = sig.StartingCapital
		}

		trade := domain.CalculateProfit(basis)

		err := s.signalRepo.MarkCompleted(ctx, sig.ID, basis, trade.BalanceAfter, trade.Profit)
		if errors.Is(err, domain.ErrAlreadyProcessed) {
			// Another sweep got here first; keep the chain moving.
			running = trade.BalanceAfter
			continue
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("signal %s: %v", sig.ID, err))
			continue
		}

		running = trade.BalanceAfter
		processed++
		if s.metrics != nil {
			s.metrics.RecordRecovered()
		}
	}

	if processed > 0 {
		if err := s.userRepo.UpdateRunningCapital(ctx, userID, running); err != nil {
			return processed, fmt.Errorf("persist recovered capital: %w", err)
		}
	}

	return processed, nil
}
