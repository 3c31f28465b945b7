package main

import (
	"errors"
	"log"
	"net/http"

	"papertrade/src/api"
	"papertrade/src/clients/market"
	"papertrade/src/config"
	"papertrade/src/database"
	"papertrade/src/repositories"
	"papertrade/src/scheduler"
	"papertrade/src/services"
	"papertrade/src/utils"
	redis_utils "papertrade/src/utils/redis"
)

func main() {
	cfg, err := config.LoadConfig("./settings")
	if err != nil {
		log.Println(err, "Error while loading config")
		return
	}
	errC, err := run(cfg)
	if err != nil {
		log.Println(err, "Couldn't run")
		return
	}

	if err := <-errC; err != nil {
		log.Println(err, "Error while running")
	}
}

func run(cfg *config.Config) (<-chan error, error) {
	errC := make(chan error, 1)

	logger := utils.NewLogger(utils.ParseLogLevel(cfg.Service.LogLevel), false, "")

	db, err := database.SetupDB(cfg)
	if err != nil {
		return nil, err
	}

	// Redis is optional; quotes fall back to the in-process cache.
	var redisHandler *redis_utils.RedisHandler
	if cfg.Databases.Redis.Host != "" {
		redisHandler, err = redis_utils.NewRedisHandler(cfg)
		if err != nil {
			logger.WithError(err).Warn("redis unavailable, quote cache runs in-process")
			redisHandler = nil
		}
	}

	marketClient := market.NewClient(cfg, redisHandler)

	server, err := api.NewServer(cfg, db, marketClient)
	if err != nil {
		return nil, err
	}
	httpServer := api.NewHTTPServer(server, cfg.Service.Port)

	if cfg.Jobs.QuoteRefreshCron != "" {
		warmer := services.NewQuoteWarmer(repositories.NewPortfolioRepository(db), marketClient, logger)
		if _, err := scheduler.NewScheduledTask(cfg.Jobs.QuoteRefreshCron, warmer.Run); err != nil {
			return nil, err
		}
	}

	go func() {
		logger.WithField("addr", httpServer.Addr).Info("Starting server")

		// "ListenAndServe always returns a non-nil error. After Shutdown or Close, the returned error is
		// ErrServerClosed."
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("An error raised while setting up server")
			errC <- err
		}
	}()
	return errC, nil
}
