package infra

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"tradecap/internal/service"
	"tradecap/internal/usecase"
)

// Scheduler is the external trigger driving the engine: window-boundary batch
// execution, daily signal provisioning, and a periodic recovery sweep. All
// entry points are idempotent, so a redundant firing is harmless.
type Scheduler struct {
	cron         *cron.Cron
	engine       *usecase.TradeEngine
	recovery     *service.RecoveryService
	provisioning *service.ProvisioningService
	log          zerolog.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(
	engine *usecase.TradeEngine,
	recovery *service.RecoveryService,
	provisioning *service.ProvisioningService,
	log zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		cron:         cron.New(),
		engine:       engine,
		recovery:     recovery,
		provisioning: provisioning,
		log:          log,
	}
}

// Start registers the cron jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	// Execute pending signals at the close of each trading window. The
	// engine re-checks the window itself, so a drifting trigger no-ops.
	if _, err := s.cron.AddFunc("30 14,19 * * *", func() {
		if _, err := s.engine.ExecuteWindow(context.Background()); err != nil {
			s.log.Error().Err(err).Msg("scheduled window execution failed")
		}
	}); err != nil {
		return err
	}

	// Provision the day's signals shortly after midnight.
	if _, err := s.cron.AddFunc("5 0 * * *", func() {
		n, err := s.provisioning.ProvisionDailyForAllUsers(context.Background())
		if err != nil {
			s.log.Error().Err(err).Msg("daily signal provisioning failed")
			return
		}
		s.log.Info().Int("users", n).Msg("daily signals provisioned")
	}); err != nil {
		return err
	}

	// Sweep for signals missed during downtime.
	if _, err := s.cron.AddFunc("0 */6 * * *", func() {
		if _, err := s.recovery.RecoverMissed(context.Background()); err != nil {
			s.log.Error().Err(err).Msg("scheduled recovery sweep failed")
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info().Msg("scheduler started")
	return nil
}

// RunWindowNow triggers a window execution immediately.
func (s *Scheduler) RunWindowNow(ctx context.Context) (*usecase.WindowResult, error) {
	return s.engine.ExecuteWindow(ctx)
}

// RunRecoveryNow triggers a recovery sweep immediately.
func (s *Scheduler) RunRecoveryNow(ctx context.Context) (*service.RecoveryResult, error) {
	return s.recovery.RecoverMissed(ctx)
}

// Stop stops the scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info().Msg("scheduler stopped")
}
