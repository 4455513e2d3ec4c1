package app

import (
	"time"

	"sheet_ledger_bot/internal/forms"
	"sheet_ledger_bot/internal/ledger"
)

const (
	SourceCSV = "csv"
	SourceAPI = "api"

	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config is the deployment configuration read from the environment.
type Config struct {
	BotToken   string
	BotWorkers int

	SpreadsheetID   string
	Tables          ledger.Tables
	SheetsSource    string
	CredentialsFile string
	RequestTimeout  time.Duration

	CacheTTL      time.Duration
	CacheBackend  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	FormURL    string
	FormFields forms.FieldMap

	AllowSelfTransfer bool
	ConfirmAttempts   int
	ConfirmDelay      time.Duration

	PriceAliasesFile string
	MetricsAddr      string
}
