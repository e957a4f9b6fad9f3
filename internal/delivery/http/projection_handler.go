package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"tradecap/internal/delivery/http/dto"
	"tradecap/internal/domain"
	"tradecap/internal/middleware"
	"tradecap/internal/service"
	"tradecap/internal/utils"
)

// ProjectionHandler handles forward capital simulations. Projections are
// planning artifacts and never touch the store.
type ProjectionHandler struct {
	projection *service.ProjectionService
	userRepo   domain.UserRepository
	signalRepo domain.SignalRepository
	clock      utils.Clock
}

// NewProjectionHandler creates a new ProjectionHandler
func NewProjectionHandler(
	projection *service.ProjectionService,
	userRepo domain.UserRepository,
	signalRepo domain.SignalRepository,
	clock utils.Clock,
) *ProjectionHandler {
	return &ProjectionHandler{
		projection: projection,
		userRepo:   userRepo,
		signalRepo: signalRepo,
		clock:      clock,
	}
}

// Generate builds a multi-day capital projection
// POST /api/projection
func (h *ProjectionHandler) Generate(c echo.Context) error {
	var req dto.ProjectionRequest
	if errs := BindAndValidate(c, &req); errs != nil {
		return ErrorResponse(c, http.StatusBadRequest, "Invalid projection payload", errs)
	}

	start := h.clock.Now()
	if req.StartDate != "" {
		parsed, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return BadRequestResponse(c, "Invalid start_date, expected YYYY-MM-DD")
		}
		start = parsed
	}

	deposits, withdrawals, err := parseScheduled(req.Deposits, req.Withdrawals)
	if err != nil {
		return BadRequestResponse(c, err.Error())
	}

	entries, err := h.projection.ProjectSchedule(req.StartingCapital, deposits, withdrawals, start, req.HorizonDays)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTiming) {
			return BadRequestResponse(c, err.Error())
		}
		return InternalServerErrorResponse(c, "Failed to build projection", err)
	}

	return SuccessResponse(c, entries)
}

// Withdraw regenerates a projection and inserts a withdrawal at one of its
// days, recomputing that day and everything after it
// POST /api/projection/withdraw
func (h *ProjectionHandler) Withdraw(c echo.Context) error {
	var req dto.ProjectionWithdrawRequest
	if errs := BindAndValidate(c, &req); errs != nil {
		return ErrorResponse(c, http.StatusBadRequest, "Invalid withdrawal payload", errs)
	}

	start := h.clock.Now()
	if req.StartDate != "" {
		parsed, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return BadRequestResponse(c, "Invalid start_date, expected YYYY-MM-DD")
		}
		start = parsed
	}

	deposits, _, err := parseScheduled(req.Deposits, nil)
	if err != nil {
		return BadRequestResponse(c, err.Error())
	}

	entries, err := h.projection.ProjectSchedule(req.StartingCapital, deposits, nil, start, req.HorizonDays)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to build projection", err)
	}

	err = h.projection.ScheduleWithdrawal(entries, req.Date, req.Amount, domain.TradeTiming(req.Timing))
	switch {
	case errors.Is(err, domain.ErrInsufficientBalance):
		return UnprocessableResponse(c, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return NotFoundResponse(c, err.Error())
	case errors.Is(err, domain.ErrInvalidTiming):
		return BadRequestResponse(c, err.Error())
	case err != nil:
		return InternalServerErrorResponse(c, "Failed to schedule withdrawal", err)
	}

	return SuccessResponse(c, entries)
}

// Weekly projects the current week's seven days from the user's weekly
// opening capital
// GET /api/projection/weekly
func (h *ProjectionHandler) Weekly(c echo.Context) error {
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

	capital := user.WeeklyCapital
	if capital <= 0 {
		capital = user.RunningCapital
	}

	entries, err := h.projection.WeeklyDetails(capital, nil, nil)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to build weekly projection", err)
	}

	return SuccessResponse(c, entries)
}

// DaysToProfit reports how many full trading days of compounding it takes to
// accumulate the target profit. The starting capital defaults to the user's
// running capital, adjusted for today's remaining signals.
// GET /api/projection/days-to-profit?target=500[&capital=2000]
func (h *ProjectionHandler) DaysToProfit(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Invalid session")
	}

	target, err := strconv.ParseFloat(c.QueryParam("target"), 64)
	if err != nil || target <= 0 {
		return BadRequestResponse(c, "target must be a positive number")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var capital float64
	if capParam := c.QueryParam("capital"); capParam != "" {
		capital, err = strconv.ParseFloat(capParam, 64)
		if err != nil || capital <= 0 {
			return BadRequestResponse(c, "capital must be a positive number")
		}
	} else {
		user, err := h.userRepo.GetByID(ctx, userID)
		if err != nil {
			return NotFoundResponse(c, "User not found")
		}

		completed := 0
		today := utils.Midnight(h.clock.Now())
		signals, err := h.signalRepo.GetByUserAndDay(ctx, userID, today)
		if err == nil {
			for _, s := range signals {
				if s.Status == domain.SignalCompleted {
					completed++
				}
			}
		}
		capital = service.SeedCapitalForToday(user.RunningCapital, completed)
	}

	return SuccessResponse(c, dto.DaysToProfitOutput{
		Capital:      capital,
		TargetProfit: target,
		Days:         service.DaysToReachProfit(capital, target),
	})
}

func parseScheduled(
	deps []dto.ScheduledDepositInput,
	wds []dto.ScheduledWithdrawalInput,
) ([]service.ScheduledDeposit, []service.ScheduledWithdrawal, error) {
	deposits := make([]service.ScheduledDeposit, 0, len(deps))
	for _, d := range deps {
		date, err := time.Parse("2006-01-02", d.Date)
		if err != nil {
			return nil, nil, errors.New("invalid deposit date, expected YYYY-MM-DD")
		}
		deposits = append(deposits, service.ScheduledDeposit{
			Amount: d.Amount,
			Bonus:  d.Bonus,
			Date:   date,
			Timing: domain.TradeTiming(d.Timing),
		})
	}

	withdrawals := make([]service.ScheduledWithdrawal, 0, len(wds))
	for _, w := range wds {
		date, err := time.Parse("2006-01-02", w.Date)
		if err != nil {
			return nil, nil, errors.New("invalid withdrawal date, expected YYYY-MM-DD")
		}
		withdrawals = append(withdrawals, service.ScheduledWithdrawal{
			Amount: w.Amount,
			Date:   date,
			Timing: domain.TradeTiming(w.Timing),
		})
	}

	return deposits, withdrawals, nil
}
