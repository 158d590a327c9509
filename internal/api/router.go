package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/carddemo/terminal/docs"
	"github.com/carddemo/terminal/internal/api/handler"
	"github.com/carddemo/terminal/internal/api/middleware"
	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/ports"
	"github.com/carddemo/terminal/internal/infrastructure/http/handlers"
	"github.com/carddemo/terminal/pkg/logger"
)

// Services is everything the dev API routes call into.
type Services struct {
	Auth         ports.AuthService
	Menu         ports.MenuService
	Accounts     ports.AccountService
	Cards        ports.CardService
	Transactions ports.TransactionService
	Users        ports.UserService
}

// Options carries the ambient wiring of the router.
type Options struct {
	Log zerolog.Logger
	// Registry receives the HTTP metrics; nil uses the default registry,
	// which also holds the custom metrics.
	Registry *prometheus.Registry
	Checkers []handlers.Checker
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Log)
	e.Validator = handler.NewValidator()

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if opts.Registry != nil {
		registerer, gatherer = opts.Registry, opts.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(logger.RequestLogger(opts.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "api",
		Registerer: registerer,
	}))

	// --- Operational routes (no auth required) ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(opts.Checkers...)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(svc.Auth)
	menuHandler := handler.NewMenuHandler(svc.Menu)
	accountHandler := handler.NewAccountHandler(svc.Accounts)
	cardHandler := handler.NewCardHandler(svc.Cards)
	transactionHandler := handler.NewTransactionHandler(svc.Transactions)
	userHandler := handler.NewUserHandler(svc.Users)

	authMiddleware := middleware.Auth(svc.Auth)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	api := e.Group("/api")

	// --- Auth routes ---
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/validate", authHandler.Validate)
	api.POST("/auth/logout", authHandler.Logout, authMiddleware)

	// --- Terminal routes ---
	secured := api.Group("", authMiddleware)
	secured.POST("/menu/validate", menuHandler.Validate)
	secured.GET("/menu/:type", menuHandler.Get)

	secured.GET("/accounts/:accountId", accountHandler.Get)
	secured.PUT("/accounts/:accountId", accountHandler.Update)
	secured.POST("/accounts/:accountId/payments", accountHandler.Pay)

	secured.GET("/cards", cardHandler.List)
	secured.POST("/cards", cardHandler.Create)
	secured.GET("/cards/:cardNumber", cardHandler.Get)
	secured.PUT("/cards/:cardNumber", cardHandler.Update)

	secured.GET("/transactions", transactionHandler.List)
	secured.POST("/transactions", transactionHandler.Create)
	secured.GET("/transactions/:transactionId", transactionHandler.Get)
	secured.GET("/reports/transactions", transactionHandler.Report)

	// --- Admin routes ---
	admin := secured.Group("/users", adminOnly)
	admin.GET("", userHandler.List)
	admin.POST("", userHandler.Create)
	admin.GET("/:userId", userHandler.Get)
	admin.PUT("/:userId", userHandler.Update)
	admin.DELETE("/:userId", userHandler.Delete)

	return e
}
