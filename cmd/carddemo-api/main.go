// Command carddemo-api serves the CardDemo REST API the terminal talks to.
//
//	@title						CardDemo API
//	@version					1.0
//	@description				Back-office credit card API: sign-on, menus, accounts, cards, transactions, reports and users.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/carddemo/terminal/internal/api"
	"github.com/carddemo/terminal/internal/core/service"
	mongodb "github.com/carddemo/terminal/internal/infrastructure/db/mongo"
	redisdb "github.com/carddemo/terminal/internal/infrastructure/db/redis"
	"github.com/carddemo/terminal/internal/infrastructure/http/handlers"
	"github.com/carddemo/terminal/internal/infrastructure/queue"
	"github.com/carddemo/terminal/internal/pkg/config"
	"github.com/carddemo/terminal/pkg/logger"
)

func main() {
	cfg := config.MustLoad()
	log := logger.Init(logger.Options{Service: "carddemo-api", Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("mongo index creation failed")
	}

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

	users := mongodb.NewUserRepository(db)
	accounts := mongodb.NewAccountRepository(db)
	cards := mongodb.NewCardRepository(db)
	transactions := mongodb.NewTransactionRepository(db)

	auditService := service.NewAuditService(mongodb.NewAuditRepository(db), log)
	dispatcher := queue.NewDispatcher(cfg.Server.AuditWorkers, auditService, log)
	// Audit workers outlive the signal so requests finishing during shutdown
	// are still recorded.
	auditCtx, stopAudit := context.WithCancel(context.Background())
	defer stopAudit()
	dispatcher.Start(auditCtx)

	userService := service.NewUserService(users)
	svc := api.Services{
		Auth:         service.NewAuthService(users, redisdb.NewRefreshStore(rdb), dispatcher, cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL),
		Menu:         service.NewMenuService(),
		Accounts:     service.NewAccountService(accounts, cards, transactions, dispatcher, log),
		Cards:        service.NewCardService(cards, accounts, log),
		Transactions: service.NewTransactionService(transactions, cards, log),
		Users:        userService,
	}

	if cfg.SeedFixtures {
		if err := service.SeedUsers(ctx, userService); err != nil {
			log.Fatal().Err(err).Msg("seeding users failed")
		}
		if err := service.SeedAccounts(ctx, accounts, cards); err != nil {
			log.Fatal().Err(err).Msg("seeding accounts failed")
		}
		log.Info().Msg("fixtures seeded")
	}

	e := api.NewRouter(svc, api.Options{
		Log:      log,
		Checkers: []handlers.Checker{handlers.MongoChecker(db), handlers.RedisChecker(rdb)},
	})

	go func() {
		log.Info().Str("port", cfg.Server.APIPort).Str("env", cfg.Env).Msg("carddemo api listening")
		if err := e.Start(":" + cfg.Server.APIPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	stopAudit()
	dispatcher.Wait()
}
