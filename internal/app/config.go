package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"sheet_ledger_bot/internal/config"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// SetupEnvironment loads .env file and configures zerolog output and log level.
func SetupEnvironment() {
	// Load .env file if it exists
	err := godotenv.Load()

	if os.Getenv("ENV") == "production" {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(os.Stderr)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	levelStr := strings.ToLower(os.Getenv("LOGLEVEL"))
	switch levelStr {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "disabled":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	case "":
		if os.Getenv("ENV") == "production" {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Warn().Msgf("Unknown LOGLEVEL '%s', defaulting to info.", levelStr)
	}

	// wait until now to report on the .env file so we have the chance to set up logging first
	if err == nil {
		log.Debug().Msg("Loaded environment variables from .env file.")
	} else {
		log.Debug().Msg("No .env file found or error loading .env file; proceeding with existing environment variables.")
	}
}

// env collects every problem found while reading variables so that a bad
// deployment reports them all at once.
type env struct {
	getenv func(string) string
	errs   []error
}

func (e *env) required(key string) string {
	value := strings.TrimSpace(e.getenv(key))
	if value == "" {
		e.errs = append(e.errs, fmt.Errorf("%s environment variable is required", key))
	}
	return value
}

func (e *env) withDefault(key, defaultValue string) string {
	value := strings.TrimSpace(e.getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func (e *env) duration(key string, defaultValue time.Duration) time.Duration {
	raw := e.withDefault(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		// bare numbers are seconds
		secs, numErr := strconv.ParseFloat(raw, 64)
		if numErr != nil || secs < 0 {
			e.errs = append(e.errs, fmt.Errorf("%s: invalid duration %q", key, raw))
			return defaultValue
		}
		d = time.Duration(secs * float64(time.Second))
	}
	if d < 0 {
		e.errs = append(e.errs, fmt.Errorf("%s: negative duration %q", key, raw))
		return defaultValue
	}
	return d
}

func (e *env) integer(key string, defaultValue, minValue int) int {
	raw := e.withDefault(key, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < minValue {
		e.errs = append(e.errs, fmt.Errorf("%s: expected an integer >= %d, got %q", key, minValue, raw))
		return defaultValue
	}
	return n
}

func (e *env) boolean(key string, defaultValue bool) bool {
	raw := e.withDefault(key, "")
	if raw == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: expected a boolean, got %q", key, raw))
		return defaultValue
	}
	return b
}

func (e *env) oneOf(key, defaultValue string, allowed ...string) string {
	value := strings.ToLower(e.withDefault(key, defaultValue))
	for _, a := range allowed {
		if value == a {
			return value
		}
	}
	e.errs = append(e.errs, fmt.Errorf("%s: expected one of %s, got %q", key, strings.Join(allowed, "|"), value))
	return defaultValue
}

// LoadConfig reads the configuration through getenv (os.Getenv in production).
// Every missing or malformed variable is reported in the returned error.
func LoadConfig(getenv func(string) string) (*Config, error) {
	e := &env{getenv: getenv}
	res := config.DefaultResilienceConfig

	cfg := &Config{
		BotToken:   e.required("BOT_TOKEN"),
		BotWorkers: e.integer("BOT_WORKERS", 4, 1),

		SpreadsheetID:   e.required("SHEET_ID"),
		SheetsSource:    e.oneOf("SHEETS_SOURCE", SourceCSV, SourceCSV, SourceAPI),
		CredentialsFile: e.withDefault("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
		RequestTimeout:  e.duration("REQUEST_TIMEOUT", res.SheetRequest),

		CacheTTL:      e.duration("CACHE_TTL", 30*time.Second),
		CacheBackend:  e.oneOf("CACHE_BACKEND", CacheMemory, CacheMemory, CacheRedis),
		RedisAddr:     e.withDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: e.getenv("REDIS_PASSWORD"),
		RedisDB:       e.integer("REDIS_DB", 0, 0),

		FormURL: e.required("FORM_URL"),

		AllowSelfTransfer: e.boolean("ALLOW_SELF_TRANSFER", false),
		ConfirmAttempts:   e.integer("CONFIRM_ATTEMPTS", res.Confirm.Attempts, 0),
		ConfirmDelay:      e.duration("CONFIRM_DELAY", res.Confirm.Delay),

		PriceAliasesFile: e.withDefault("PRICE_ALIASES_FILE", ""),
		MetricsAddr:      e.withDefault("METRICS_ADDR", ""),
	}
	cfg.Tables.Accounts = e.required("GID_ACCOUNTS")
	cfg.Tables.Prices = e.withDefault("GID_PRICES", "")
	cfg.Tables.Ops = e.withDefault("GID_OPS", "")

	cfg.FormFields.Sender = e.required("FORM_FIELD_SENDER")
	cfg.FormFields.Recipient = e.required("FORM_FIELD_RECIPIENT")
	cfg.FormFields.Amount = e.required("FORM_FIELD_AMOUNT")
	cfg.FormFields.Reference = e.withDefault("FORM_FIELD_REFERENCE", "")

	if len(e.errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(e.errs...))
	}

	log.Debug().
		Str("source", cfg.SheetsSource).
		Str("cache", cfg.CacheBackend).
		Dur("cache_ttl", cfg.CacheTTL).
		Str("accounts", cfg.Tables.Accounts).
		Str("prices", cfg.Tables.Prices).
		Str("ops", cfg.Tables.Ops).
		Msg("Configuration loaded")
	return cfg, nil
}
