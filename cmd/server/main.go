package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/config"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/infra"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/notify"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/router"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"golang.org/x/sync/errgroup"
)

func main() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	app, err := router.NewApp(cfg, db, rdb)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build application")
	}

	days, err := cfg.InterestDaysOfMonth()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid INTEREST_DAYS")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	// Realtime fan-out: local hubs fed by the Redis relay.
	g.Go(func() error { return app.NotificationsHub.Run(gctx) })
	g.Go(func() error { return app.RegistrationsHub.Run(gctx) })
	g.Go(func() error {
		return notify.NewRelay(rdb, app.NotificationsHub, app.RegistrationsHub).Run(gctx)
	})

	// Async jobs
	pool := worker.NewPool(rdb, cfg.WorkerPoolSize)
	pool.Handle(worker.QueueEmail, worker.NewEmailWorker(app.Receipts, app.Mailer, cfg.PDFStoragePath))
	g.Go(func() error { return pool.Run(gctx) })

	cron := worker.NewInterestCron(worker.InterestCronConfig{
		Runner: app.Interests,
		Locker: worker.NewRedisLocker(rdb),
		Clock:  app.Clock,
		Days:   days,
		Hour:   cfg.InterestHour,
	})
	g.Go(func() error { return cron.Run(gctx) })

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router.New(app),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g.Go(func() error {
		log.Info().Msgf("garage backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	// Graceful shutdown on SIGINT / SIGTERM or when any goroutine fails.
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Stack().Err(err).Msg("server stopped with error")
	}
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close")
	}
	log.Info().Msg("server exited")
}
