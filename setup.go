package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"sheet_ledger_bot/internal/app"
	"sheet_ledger_bot/internal/commands"
	"sheet_ledger_bot/internal/config"
	"sheet_ledger_bot/internal/forms"
	"sheet_ledger_bot/internal/ledger"
	"sheet_ledger_bot/internal/metrics"
	"sheet_ledger_bot/internal/sheets"
	"sheet_ledger_bot/internal/telegram"
	"sheet_ledger_bot/internal/transfer"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// initializeSource builds the row source and its cache. The returned closer
// releases the cache backend.
func initializeSource(ctx context.Context, cfg *app.Config) (sheets.Source, io.Closer) {
	log.Debug().Str("source", cfg.SheetsSource).Msg("Initializing row source")

	var source sheets.Source
	switch cfg.SheetsSource {
	case app.SourceAPI:
		client, err := sheets.NewClient(ctx, cfg.CredentialsFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create sheets client")
		}
		source = sheets.NewAPISource(client, cfg.SpreadsheetID, cfg.RequestTimeout)
	default:
		source = sheets.NewCSVSource(cfg.SpreadsheetID, cfg.RequestTimeout)
	}

	if cfg.CacheTTL <= 0 {
		log.Info().Msg("Table cache disabled")
		return source, io.NopCloser(nil)
	}

	var store sheets.Store
	var closer io.Closer = io.NopCloser(nil)
	switch cfg.CacheBackend {
	case app.CacheRedis:
		client, err := sheets.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to redis")
		}
		store = sheets.NewRedisStore(client, cfg.CacheTTL)
		closer = client
	default:
		store = sheets.NewMemoryStore()
	}

	log.Info().
		Str("backend", cfg.CacheBackend).
		Dur("ttl", cfg.CacheTTL).
		Msg("Table cache enabled")
	return sheets.NewCachedSource(source, store, cfg.CacheTTL, time.Now), closer
}

// initializeBook loads the price aliases and builds the ledger.
func initializeBook(source sheets.Source, cfg *app.Config) *ledger.Book {
	aliases := ledger.DefaultAliases()
	if cfg.PriceAliasesFile != "" {
		loaded, err := ledger.LoadAliases(cfg.PriceAliasesFile)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.PriceAliasesFile).Msg("Failed to load price aliases")
		}
		aliases = loaded
		log.Info().Int("aliases", len(aliases)).Msg("Loaded price aliases")
	}
	return ledger.NewBook(source, cfg.Tables, aliases)
}

func initializeOrchestrator(book *ledger.Book, cfg *app.Config) *transfer.Orchestrator {
	formClient := forms.NewClient(cfg.FormURL, cfg.FormFields, cfg.RequestTimeout)

	policy := transfer.DefaultPolicy()
	policy.RejectSelfTransfer = !cfg.AllowSelfTransfer
	policy.Confirm.Attempts = cfg.ConfirmAttempts
	policy.Confirm.Delay = cfg.ConfirmDelay
	policy.Confirm.Timeout = cfg.RequestTimeout

	return transfer.NewOrchestrator(book, formClient, policy)
}

// connectTelegram authenticates the bot token; a rejected token is fatal at once.
func connectTelegram(ctx context.Context, token string) *tgbotapi.BotAPI {
	api, err := telegram.Connect(ctx, token, "", config.DefaultResilienceConfig.TelegramConnect)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Telegram")
	}
	log.Info().Str("bot", api.Self.UserName).Msg("Connected to Telegram")
	return api
}

func initializeBot(ctx context.Context, cfg *app.Config, service *commands.Service) *telegram.Bot {
	api := connectTelegram(ctx, cfg.BotToken)
	bot, err := telegram.NewBot(api, service, cfg.BotWorkers)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}
	return bot
}

// serveMetrics exposes /metrics until ctx is done.
func serveMetrics(ctx context.Context, addr string) {
	metrics.MustRegister()

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		log.Info().Str("addr", addr).Msg("Serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Metrics server stopped")
		}
	}()
}
