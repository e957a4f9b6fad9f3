package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	custommiddleware "tradecap/internal/middleware"
)

// RouterConfig holds all dependencies for routing
type RouterConfig struct {
	AuthHandler       *AuthHandler
	AccountHandler    *AccountHandler
	ProjectionHandler *ProjectionHandler
	AdminHandler      *AdminHandler
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(e *echo.Echo, config *RouterConfig) {
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())

	e.GET("/health", func(c echo.Context) error {
		return SuccessResponse(c, map[string]interface{}{
			"status":  "healthy",
			"service": "tradecap-api",
		})
	})

	api := e.Group("/api")

	// Auth routes (public)
	auth := api.Group("/auth")
	{
		auth.POST("/register", config.AuthHandler.Register)
		auth.POST("/login", config.AuthHandler.Login)
		auth.POST("/logout", config.AuthHandler.Logout)
	}

	// Account routes (protected with AuthMiddleware)
	account := api.Group("/account", custommiddleware.AuthMiddleware)
	{
		account.GET("/me", config.AccountHandler.GetMe)
		account.GET("/signals", config.AccountHandler.GetSignals)
		account.POST("/signals/execute", config.AccountHandler.ExecuteSignal)
		account.GET("/signals/stats", config.AccountHandler.GetSignalStats)
		account.GET("/revenue", config.AccountHandler.GetRevenue)
		account.POST("/deposits", config.AccountHandler.CreateDeposit)
		account.GET("/deposits", config.AccountHandler.GetDeposits)
		account.DELETE("/deposits/:id", config.AccountHandler.DeleteDeposit)
		account.POST("/withdrawals", config.AccountHandler.CreateWithdrawal)
		account.GET("/withdrawals", config.AccountHandler.GetWithdrawals)
		account.DELETE("/withdrawals/:id", config.AccountHandler.DeleteWithdrawal)
	}

	// Projection routes (protected with AuthMiddleware)
	projection := api.Group("/projection", custommiddleware.AuthMiddleware)
	{
		projection.POST("", config.ProjectionHandler.Generate)
		projection.POST("/withdraw", config.ProjectionHandler.Withdraw)
		projection.GET("/weekly", config.ProjectionHandler.Weekly)
		projection.GET("/days-to-profit", config.ProjectionHandler.DaysToProfit)
	}

	// Admin routes (protected with Auth + Admin middleware)
	admin := api.Group("/admin", custommiddleware.AuthMiddleware, custommiddleware.AdminMiddleware)
	{
		admin.POST("/windows/execute", config.AdminHandler.ExecuteWindow)
		admin.POST("/recovery/run", config.AdminHandler.RunRecovery)
		admin.POST("/provision", config.AdminHandler.Provision)
		admin.GET("/users", config.AdminHandler.GetUsers)
	}
}
