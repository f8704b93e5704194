package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"washpos/internal/command"
	"washpos/internal/config"
	"washpos/internal/connectivity"
	"washpos/internal/gateway"
	"washpos/internal/infra"
	"washpos/internal/store"
	"washpos/internal/syncer"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	// The store opens before any command can run; there is no lazy init.
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open local store")
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The host UI feeds reachability transitions into the monitor; until the
	// first signal arrives we assume offline and let sync stay opportunistic.
	monitor := connectivity.NewMonitor(false)

	tokens := gateway.NewTokenStore(st)
	gw := gateway.NewClient(cfg.APIBaseURL, time.Duration(cfg.HTTPTimeoutSeconds)*time.Second, tokens)

	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{
		FailureThreshold: cfg.CBFailureThreshold,
		SuccessThreshold: cfg.CBSuccessThreshold,
		OpenTimeout:      time.Duration(cfg.CBOpenTimeoutSecs) * time.Second,
	})

	engine := syncer.New(st, gw, tokens, monitor, cb)
	go engine.Run(ctx)

	// The command service is what the UI host calls into alongside the engine.
	commands := command.New(st)
	if customers, err := commands.Customers(ctx); err == nil {
		log.Info().Int("customers", len(customers)).Msg("local store loaded")
	}

	// On start: report pending work, do not auto-drain.
	if pending, err := st.PendingCount(ctx); err == nil && pending > 0 {
		log.Info().Int64("pending", pending).Msg("unsynced mutations queued from a previous session")
	}

	log.Info().Str("db", cfg.DBPath).Str("api", cfg.APIBaseURL).Msg("washpos core ready")

	// Graceful shutdown on SIGINT / SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	cancel()
	if err := st.Close(); err != nil {
		log.Error().Err(err).Msg("store close failed")
	}
}
