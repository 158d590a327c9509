// Command carddemo-web serves the CardDemo terminal: the green-screen pages,
// their function keys and the browser sessions behind them.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/carddemo/terminal/internal/core/ports"
	"github.com/carddemo/terminal/internal/core/screens"
	"github.com/carddemo/terminal/internal/core/session"
	redisdb "github.com/carddemo/terminal/internal/infrastructure/db/redis"
	"github.com/carddemo/terminal/internal/infrastructure/gateway"
	webhttp "github.com/carddemo/terminal/internal/infrastructure/http"
	"github.com/carddemo/terminal/internal/infrastructure/http/handlers"
	"github.com/carddemo/terminal/internal/infrastructure/http/middleware"
	"github.com/carddemo/terminal/internal/pkg/config"
	"github.com/carddemo/terminal/pkg/logger"
)

func main() {
	cfg := config.MustLoad()
	log := logger.Init(logger.Options{Service: "carddemo-web", Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var gw ports.Gateway
	switch cfg.Gateway.Mode {
	case config.GatewayHTTP:
		gw = gateway.NewHTTP(cfg.Gateway.BaseURL, nil, cfg.Gateway.Timeout, log)
	default:
		gw = gateway.NewFixture()
	}
	log.Info().Str("mode", cfg.Gateway.Mode).Str("base_url", cfg.Gateway.BaseURL).Msg("gateway configured")

	var (
		repo     ports.SessionRepository = session.NewMemoryRepository()
		checkers []handlers.Checker
	)
	if cfg.Session.Store == config.SessionStoreRedis {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Timeout:  cfg.Redis.Timeout,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer rdb.Close()
		repo = redisdb.NewSessionRepository(rdb, cfg.Session.TTL)
		checkers = append(checkers, handlers.RedisChecker(rdb))
	}

	e, release := webhttp.NewRouter(webhttp.Deps{
		Catalog:  screens.NewCatalog(gw),
		Store:    session.NewStore(repo),
		Auth:     gw,
		Log:      log,
		Checkers: checkers,
		Cookie: middleware.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
			MaxAge: cfg.Session.TTL,
		},
		RefreshWithin: cfg.Session.RefreshWithin,
		IdleTimeout:   cfg.Session.TTL,
	})
	defer release()

	go func() {
		log.Info().Str("port", cfg.Server.WebPort).Str("session_store", cfg.Session.Store).Msg("carddemo terminal listening")
		if err := e.Start(":" + cfg.Server.WebPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
