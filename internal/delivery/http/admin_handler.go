package http

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"tradecap/internal/domain"
	"tradecap/internal/infra"
	"tradecap/internal/service"
)

// AdminHandler handles operator triggers: manual window runs, recovery sweeps
// and provisioning. Every trigger delegates to an idempotent engine entry
// point, so a redundant click is harmless.
type AdminHandler struct {
	scheduler    *infra.Scheduler
	provisioning *service.ProvisioningService
	userRepo     domain.UserRepository
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	scheduler *infra.Scheduler,
	provisioning *service.ProvisioningService,
	userRepo domain.UserRepository,
) *AdminHandler {
	return &AdminHandler{
		scheduler:    scheduler,
		provisioning: provisioning,
		userRepo:     userRepo,
	}
}

// ExecuteWindow triggers a batch run for the currently active trading window
// POST /api/admin/windows/execute
func (h *AdminHandler) ExecuteWindow(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	result, err := h.scheduler.RunWindowNow(ctx)
	if err != nil {
		return InternalServerErrorResponse(c, "Window execution failed", err)
	}
	return SuccessResponse(c, result)
}

// RunRecovery triggers a sweep over unprocessed past signals
// POST /api/admin/recovery/run
func (h *AdminHandler) RunRecovery(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	result, err := h.scheduler.RunRecoveryNow(ctx)
	if err != nil {
		return InternalServerErrorResponse(c, "Recovery sweep failed", err)
	}
	return SuccessResponse(c, result)
}

// Provision creates today's signals for every user missing them
// POST /api/admin/provision
func (h *AdminHandler) Provision(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	provisioned, err := h.provisioning.ProvisionDailyForAllUsers(ctx)
	if err != nil {
		return InternalServerErrorResponse(c, "Provisioning failed", err)
	}
	return SuccessResponse(c, map[string]int{"provisioned": provisioned})
}

// GetUsers lists all users
// GET /api/admin/users
func (h *AdminHandler) GetUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.userRepo.GetAll(ctx)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to load users", err)
	}

	out := make([]interface{}, 0, len(users))
	for _, u := range users {
		out = append(out, userOutput(u))
	}
	return SuccessResponse(c, out)
}
