package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/ports"
	"github.com/carddemo/terminal/internal/core/screens"
	"github.com/carddemo/terminal/internal/core/session"
	"github.com/carddemo/terminal/internal/infrastructure/http/handlers"
	"github.com/carddemo/terminal/internal/infrastructure/http/middleware"
	"github.com/carddemo/terminal/pkg/logger"
)

// Deps is what the terminal router needs.
type Deps struct {
	Catalog *screens.Catalog
	Store   *session.Store
	Auth    ports.AuthGateway
	Log     zerolog.Logger
	// Registry receives the HTTP metrics; nil means the default registry.
	Registry      *prometheus.Registry
	Checkers      []handlers.Checker
	Cookie        middleware.CookieConfig
	RefreshWithin time.Duration
	// IdleTimeout evicts the screens of browsers idle for longer; zero keeps
	// them until logout.
	IdleTimeout time.Duration
}

// NewRouter builds the terminal server. Every catalog screen gets a view
// route plus /keys and /fields endpoints behind its page guard. The returned
// function releases the session subscription and stops eviction.
func NewRouter(d Deps) (*echo.Echo, func()) {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = errorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(logger.RequestLogger(d.Log))

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "web",
		Registerer: registerer,
	}))

	// --- Operational routes (no browser session) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Checkers...)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))

	// --- Terminal ---
	controllers, unsubscribe := handlers.NewControllers(d.Store)
	evictCtx, stopEviction := context.WithCancel(context.Background())
	if d.IdleTimeout > 0 {
		go controllers.RunEviction(evictCtx, d.IdleTimeout, d.Log)
	}
	screenHandler := handlers.NewScreenHandler(d.Store, d.Auth, controllers, d.Log)

	term := e.Group("",
		middleware.BrowserSession(d.Cookie),
		middleware.LoadSession(middleware.SessionConfig{
			Store:         d.Store,
			Refresher:     d.Auth,
			RefreshWithin: d.RefreshWithin,
			Log:           d.Log,
		}),
	)

	for _, def := range d.Catalog.All() {
		guarded := middleware.Guard(def.Access)
		for _, route := range def.Routes {
			term.GET(route, screenHandler.View(def), guarded)
			term.POST(route+"/keys", screenHandler.Key(def), guarded)
			term.POST(route+"/fields", screenHandler.Field(def), guarded)
		}
	}
	term.POST("/logout", screenHandler.Logout)
	term.GET("/", screenHandler.NotFound)
	term.RouteNotFound("/*", screenHandler.NotFound)

	d.Log.Debug().Int("screens", len(d.Catalog.All())).Str("login", domain.PathLogin).Msg("terminal routes registered")
	return e, func() {
		stopEviction()
		unsubscribe()
	}
}

// errorHandler logs server-side failures before echo renders them.
func errorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
		}
		if code >= http.StatusInternalServerError {
			log.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("terminal request failed")
		}
		c.Echo().DefaultHTTPErrorHandler(err, c)
	}
}
