package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"saudagar/cache"
	"saudagar/config"
	"saudagar/controllers/bid"
	"saudagar/controllers/game"
	"saudagar/controllers/health"
	"saudagar/controllers/ledger"
	"saudagar/controllers/result"
	"saudagar/database"
	"saudagar/events"
	"saudagar/jobs"
	"saudagar/logger"
	"saudagar/routes"
	"saudagar/services"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	if envErr != nil {
		log.Debug("no .env file loaded, using process environment")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}

	var store cache.Cache = cache.NewMemory()
	if cfg.Redis.Addr != "" {
		r, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			log.WithError(err).Warn("redis unavailable, using in-memory cache")
		} else {
			store = r
		}
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.Rabbit.URL != "" {
		p, err := events.NewAMQPPublisher(cfg.Rabbit, log)
		if err != nil {
			log.WithError(err).Warn("rabbitmq unavailable, settlement events disabled")
		} else {
			publisher = p
		}
	}

	loc := cfg.Location()
	bids := services.NewBidService(db, store, log, loc, cfg.Redis.TTL)
	results := services.NewResultService(db, log, publisher, loc)
	khata := services.NewLedgerService(db, log, publisher, loc)
	games := services.NewGameService(db, log)

	app := fiber.New()
	routes.Setup(app, routes.Handlers{
		Games:   game.New(games),
		Results: result.New(results),
		Bids:    bid.New(bids),
		Ledger:  ledger.New(khata),
		Health:  health.New(db, store),
	}, cfg.JWTSecret)

	jobs.StartResultShellScheduler(ctx, results, cfg.Jobs.ResultShellInterval, log)

	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	log.WithField("addr", addr).Info("server running")

	go func() {
		if err := app.Listen(addr); err != nil {
			log.WithError(err).Panic("failed to start server")
		}
	}()

	<-ctx.Done()

	log.Info("gracefully shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	if err := publisher.Close(); err != nil {
		log.WithError(err).Warn("failed to close event publisher")
	}
	if err := store.Close(); err != nil {
		log.WithError(err).Warn("failed to close cache")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server exited cleanly")
}
