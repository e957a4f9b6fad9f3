package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"tradecap/internal/delivery/http/dto"
	"tradecap/internal/domain"
	"tradecap/internal/middleware"
	"tradecap/internal/service"
	"tradecap/internal/usecase"
	"tradecap/internal/utils"
)

// AccountHandler handles the authenticated user's signals, capital and
// transaction history
type AccountHandler struct {
	userRepo       domain.UserRepository
	signalRepo     domain.SignalRepository
	revenueRepo    domain.RevenueRepository
	depositRepo    domain.DepositRepository
	withdrawalRepo domain.WithdrawalRepository
	engine         *usecase.TradeEngine
	provisioning   *service.ProvisioningService
	clock          utils.Clock
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(
	userRepo domain.UserRepository,
	signalRepo domain.SignalRepository,
	revenueRepo domain.RevenueRepository,
	depositRepo domain.DepositRepository,
	withdrawalRepo domain.WithdrawalRepository,
	engine *usecase.TradeEngine,
	provisioning *service.ProvisioningService,
	clock utils.Clock,
) *AccountHandler {
	return &AccountHandler{
		userRepo:       userRepo,
		signalRepo:     signalRepo,
		revenueRepo:    revenueRepo,
		depositRepo:    depositRepo,
		withdrawalRepo: withdrawalRepo,
		engine:         engine,
		provisioning:   provisioning,
		clock:          clock,
	}
}

// GetMe returns the authenticated user's profile and capital
// GET /api/account/me
func (h *AccountHandler) GetMe(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Invalid session")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return NotFoundResponse(c, "User not found")
	}

	return SuccessResponse(c, userOutput(user))
}

// GetSignals returns the user's signals for a day. Without a date parameter it
// targets today and provisions the day's signals if they do not exist yet.
// GET /api/account/signals?date=YYYY-MM-DD
func (h *AccountHandler) GetSignals(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Invalid session")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var signals []*domain.Signal
	if dateParam := c.QueryParam("date"); dateParam != "" {
		day, err := time.Parse("2006-01-02", dateParam)
		if err != nil {
			return BadRequestResponse(c, "Invalid date, expected YYYY-MM-DD")
		}
		signals, err = h.signalRepo.GetByUserAndDay(ctx, userID, day)
		if err != nil {
			return InternalServerErrorResponse(c, "Failed to load signals", err)
		}
	} else {
		signals, err = h.provisioning.ProvisionDailyForUser(ctx, userID)
		if err != nil {
			return InternalServerErrorResponse(c, "Failed to load today's signals", err)
		}
	}

	out := make([]*dto.SignalOutput, 0, len(signals))
	for _, s := range signals {
		out = append(out, signalOutput(s))
	}
	return SuccessResponse(c, out)
}

// ExecuteSignal executes the user's own pending signal for the currently
// active trading window
// POST /api/account/signals/execute
func (h *AccountHandler) ExecuteSignal(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Invalid session")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	signal, user, err := h.engine.ExecuteForUser(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrAlreadyProcessed):
		return ConflictResponse(c, "Signal already processed")
	case errors.Is(err, domain.ErrNotFound):
		return NotFoundResponse(c, "No pending signal for the current window")
	case err != nil:
		return InternalServerErrorResponse(c, "Failed to execute signal", err)
	}

	return SuccessResponse(c, dto.ExecuteSignalResponse{
		Signal:         signalOutput(signal),
		RunningCapital: user.RunningCapital,
	})
}

// GetSignalStats summarizes the user's completed signals
// GET /api/account/signals/stats
func (h *AccountHandler) GetSignalStats(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Invalid session")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	signals, err := h.signalRepo.GetByUser(ctx, userID)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to load signals", err)
	}

	stats := dto.SignalStatsOutput{TotalSignals: len(signals)}
	for _, s := range signals {
		if s.Status != domain.SignalCompleted {
			continue
		}
		stats.CompletedSignals++
		stats.TotalProfit += s.Profit
	}
	if stats.CompletedSignals > 0 {
		stats.AverageProfit = stats.TotalProfit / float64(stats.CompletedSignals)
	}

	return SuccessResponse(c, stats)
}

// GetRevenue returns the user's monthly revenue aggregates
// GET /api/account/revenue
func (h *AccountHandler) GetRevenue(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Invalid session")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	revenues, err := h.revenueRepo.GetByUser(ctx, userID)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to load revenue", err)
	}

	out := make([]*dto.RevenueOutput, 0, len(revenues))
	for _, r := range revenues {
		out = append(out, &dto.RevenueOutput{
			Month:        r.Month,
			Year:         r.Year,
			TotalRevenue: r.TotalRevenue,
		})
	}
	return SuccessResponse(c, out)
}

// CreateDeposit records a deposit and credits the user's capital. A deposit
// made before the first trade on a Sunday also counts toward the weekly
// opening capital.
// POST /api/account/deposits
func (h *AccountHandler) CreateDeposit(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Invalid session")
	}

	var req dto.CreateDepositRequest
	if errs := BindAndValidate(c, &req); errs != nil {
		return ErrorResponse(c, http.StatusBadRequest, "Invalid deposit payload", errs)
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return BadRequestResponse(c, "Invalid date, expected YYYY-MM-DD")
	}
	timing := domain.TradeTiming(req.WhenDeposited)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return NotFoundResponse(c, "User not found")
	}

	delta := req.Amount + req.Bonus
	weeklyDelta := 0.0
	if utils.IsSunday(date) && timing == domain.TimingBeforeTrade {
		weeklyDelta = delta
	}

	deposit := &domain.Deposit{
		ID:            uuid.New(),
		UserID:        userID,
		Amount:        req.Amount,
		Bonus:         req.Bonus,
		Capital:       user.RunningCapital + delta,
		WhenDeposited: timing,
		Date:          date,
		CreatedAt:     h.clock.Now(),
	}

	if err := h.depositRepo.Create(ctx, deposit); err != nil {
		return InternalServerErrorResponse(c, "Failed to record deposit", err)
	}
	if err := h.userRepo.AdjustCapital(ctx, userID, delta, weeklyDelta); err != nil {
		return InternalServerErrorResponse(c, "Failed to credit capital", err)
	}

	return CreatedResponse(c, depositOutput(deposit))
}

// GetDeposits returns the user's deposit history
// GET /api/account/deposits
func (h *AccountHandler) GetDeposits(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Invalid session")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	deposits, err := h.depositRepo.GetByUser(ctx, userID)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to load deposits", err)
	}

	out := make([]*dto.DepositOutput, 0, len(deposits))
	for _, d := range deposits {
		out = append(out, depositOutput(d))
	}
	return SuccessResponse(c, out)
}

// DeleteDeposit removes a deposit and reverses its capital credit
// DELETE /api/account/deposits/:id
func (h *AccountHandler) DeleteDeposit(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Invalid session")
	}

	depositID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid deposit ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	deposit, err := h.depositRepo.Delete(ctx, depositID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return NotFoundResponse(c, "Deposit not found")
		}
		return InternalServerErrorResponse(c, "Failed to delete deposit", err)
	}

	delta := deposit.Amount + deposit.Bonus
	weeklyDelta := 0.0
	if utils.IsSunday(deposit.Date) && deposit.WhenDeposited == domain.TimingBeforeTrade {
		weeklyDelta = delta
	}
	if err := h.userRepo.AdjustCapital(ctx, userID, -delta, -weeklyDelta); err != nil {
		return InternalServerErrorResponse(c, "Failed to reverse capital credit", err)
	}

	return SuccessResponse(c, depositOutput(deposit))
}

// CreateWithdrawal records a withdrawal and debits the user's capital
// POST /api/account/withdrawals
func (h *AccountHandler) CreateWithdrawal(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Invalid session")
	}

	var req dto.CreateWithdrawalRequest
	if errs := BindAndValidate(c, &req); errs != nil {
		return ErrorResponse(c, http.StatusBadRequest, "Invalid withdrawal payload", errs)
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return BadRequestResponse(c, "Invalid date, expected YYYY-MM-DD")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return NotFoundResponse(c, "User not found")
	}
	if user.RunningCapital < req.Amount {
		return UnprocessableResponse(c, "Insufficient balance for withdrawal")
	}

	withdrawal := &domain.Withdrawal{
		ID:           uuid.New(),
		UserID:       userID,
		Amount:       req.Amount,
		WhenWithdraw: domain.TradeTiming(req.WhenWithdraw),
		Date:         date,
		CreatedAt:    h.clock.Now(),
	}

	if err := h.withdrawalRepo.Create(ctx, withdrawal); err != nil {
		return InternalServerErrorResponse(c, "Failed to record withdrawal", err)
	}
	if err := h.userRepo.AdjustCapital(ctx, userID, -req.Amount, 0); err != nil {
		return InternalServerErrorResponse(c, "Failed to debit capital", err)
	}

	return CreatedResponse(c, withdrawalOutput(withdrawal))
}

// GetWithdrawals returns the user's withdrawal history
// GET /api/account/withdrawals
func (h *AccountHandler) GetWithdrawals(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Invalid session")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	withdrawals, err := h.withdrawalRepo.GetByUser(ctx, userID)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to load withdrawals", err)
	}

	out := make([]*dto.WithdrawalOutput, 0, len(withdrawals))
	for _, w := range withdrawals {
		out = append(out, withdrawalOutput(w))
	}
	return SuccessResponse(c, out)
}

// DeleteWithdrawal removes a withdrawal and reverses its capital debit
// DELETE /api/account/withdrawals/:id
func (h *AccountHandler) DeleteWithdrawal(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Invalid session")
	}

	withdrawalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid withdrawal ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	withdrawal, err := h.withdrawalRepo.Delete(ctx, withdrawalID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return NotFoundResponse(c, "Withdrawal not found")
		}
		return InternalServerErrorResponse(c, "Failed to delete withdrawal", err)
	}

	if err := h.userRepo.AdjustCapital(ctx, userID, withdrawal.Amount, 0); err != nil {
		return InternalServerErrorResponse(c, "Failed to reverse capital debit", err)
	}

	return SuccessResponse(c, withdrawalOutput(withdrawal))
}

func signalOutput(s *domain.Signal) *dto.SignalOutput {
	return &dto.SignalOutput{
		ID:              s.ID.String(),
		Title:           s.Title,
		Date:            s.CalendarDate.Format("2006-01-02"),
		Window:          s.WindowString(),
		WindowLabel:     string(s.WindowLabel),
		Status:          s.Status,
		Traded:          s.Traded,
		StartingCapital: s.StartingCapital,
		FinalCapital:    s.FinalCapital,
		Profit:          s.Profit,
	}
}

func depositOutput(d *domain.Deposit) *dto.DepositOutput {
	return &dto.DepositOutput{
		ID:            d.ID.String(),
		Amount:        d.Amount,
		Bonus:         d.Bonus,
		Capital:       d.Capital,
		WhenDeposited: string(d.WhenDeposited),
		Date:          d.Date.Format("2006-01-02"),
	}
}

func withdrawalOutput(w *domain.Withdrawal) *dto.WithdrawalOutput {
	return &dto.WithdrawalOutput{
		ID:           w.ID.String(),
		Amount:       w.Amount,
		WhenWithdraw: string(w.WhenWithdraw),
		Date:         w.Date.Format("2006-01-02"),
	}
}
