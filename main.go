package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"sheet_ledger_bot/internal/app"
	"sheet_ledger_bot/internal/commands"

	"github.com/rs/zerolog/log"
)

func main() {
	app.SetupEnvironment()
	log.Debug().Msg("Starting application")

	cfg, err := app.LoadConfig(os.Getenv)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		serveMetrics(ctx, cfg.MetricsAddr)
	}

	source, closer := initializeSource(ctx, cfg)
	defer closer.Close()

	book := initializeBook(source, cfg)
	orchestrator := initializeOrchestrator(book, cfg)
	service := commands.NewService(book, orchestrator)
	bot := initializeBot(ctx, cfg, service)

	log.Info().
		Str("accounts", cfg.Tables.Accounts).
		Bool("prices", cfg.Tables.Prices != "").
		Bool("ops", cfg.Tables.Ops != "").
		Msg("Sheet ledger bot started")

	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("Bot stopped unexpectedly")
	}
	log.Info().Msg("Shutting down")
}
