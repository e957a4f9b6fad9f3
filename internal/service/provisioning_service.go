package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tradecap/internal/domain"
	"tradecap/internal/utils"
)

// ProvisioningService creates the day's two signals for each user. Both
// windows are inserted together; the morning signal is pre-seeded with the
// user's running capital, the evening one compounds from the morning result
// and starts unseeded.
type ProvisioningService struct {
	signalRepo domain.SignalRepository
	userRepo   domain.UserRepository
	clock      utils.Clock
	log        zerolog.Logger
}

// NewProvisioningService creates a new ProvisioningService.
func NewProvisioningService(
	signalRepo domain.SignalRepository,
	userRepo domain.UserRepository,
	clock utils.Clock,
	log zerolog.Logger,
) *ProvisioningService {
	return &ProvisioningService{
		signalRepo: signalRepo,
		userRepo:   userRepo,
		clock:      clock,
		log:        log,
	}
}

// ProvisionDailyForUser creates today's signals for one user. Returns the
// created signals, or the existing ones when the day is already provisioned.
func (s *ProvisioningService) ProvisionDailyForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Signal, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}

	today := utils.Midnight(s.clock.Now())

	exists, err := s.signalRepo.ExistsForDay(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("check signals for %s: %w", today.Format("2006-01-02"), err)
	}
	if exists {
		return s.signalRepo.GetByUserAndDay(ctx, userID, today)
	}

	signals := buildDailySignals(user, today, s.clock.Now())
	if err := s.signalRepo.InsertMany(ctx, signals); err != nil {
		return nil, fmt.Errorf("insert daily signals: %w", err)
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Str("date", today.Format("2006-01-02")).
		Msg("provisioned daily signals")

	return signals, nil
}

// ProvisionDailyForAllUsers creates today's signals for every user that does
// not have them yet. One user's failure never stops the rest.
func (s *ProvisioningService) ProvisionDailyForAllUsers(ctx context.Context) (int, error) {
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	provisioned := 0
	for _, user := range users {
		if _, err := s.ProvisionDailyForUser(ctx, user.ID); err != nil {
			s.log.Error().Err(err).Str("user_id", user.ID.String()).Msg("daily provisioning failed")
			continue
		}
		provisioned++
	}

	return provisioned, nil
}

func buildDailySignals(user *domain.User, date time.Time, now time.Time) []*domain.Signal {
	return []*domain.Signal{
		{
			ID:           uuid.New(),
			UserID:       user.ID,
			Title:        "Signal 1",
			CalendarDate: date,
			WindowLabel:  domain.WindowMorning,
			Status:       domain.SignalNotStarted,
			// Pre-seeded so a delayed replay still opens the day from the
			// capital the user held when the day began.
			StartingCapital: user.RunningCapital,
			CreatedAt:       now,
		},
		{
			ID:           uuid.New(),
			UserID:       user.ID,
			Title:        "Signal 2",
			CalendarDate: date,
			WindowLabel:  domain.WindowEvening,
			Status:       domain.SignalNotStarted,
			CreatedAt:    now,
		},
	}
}
