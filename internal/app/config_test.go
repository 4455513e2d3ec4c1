package app

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func mapEnv(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func minimalEnv() map[string]string {
	return map[string]string{
		"BOT_TOKEN":            "123:abc",
		"SHEET_ID":             "sheet",
		"GID_ACCOUNTS":         "0",
		"FORM_URL":             "https://docs.google.com/forms/d/e/x/formResponse",
		"FORM_FIELD_SENDER":    "entry.1",
		"FORM_FIELD_RECIPIENT": "entry.2",
		"FORM_FIELD_AMOUNT":    "entry.3",
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(mapEnv(minimalEnv()))
	if err != nil {
		t.Fatalf("LoadConfig: unexpected error: %v", err)
	}

	if cfg.SheetsSource != SourceCSV || cfg.CacheBackend != CacheMemory {
		t.Errorf("Unexpected backends: %s, %s", cfg.SheetsSource, cfg.CacheBackend)
	}
	if cfg.CacheTTL != 30*time.Second || cfg.RequestTimeout != 10*time.Second {
		t.Errorf("Unexpected durations: ttl=%v timeout=%v", cfg.CacheTTL, cfg.RequestTimeout)
	}
	if cfg.ConfirmAttempts != 6 || cfg.ConfirmDelay != 850*time.Millisecond {
		t.Errorf("Unexpected confirm policy: %d, %v", cfg.ConfirmAttempts, cfg.ConfirmDelay)
	}
	if cfg.AllowSelfTransfer {
		t.Error("Expected self transfers to be rejected by default")
	}
	if cfg.Tables.Accounts != "0" || cfg.Tables.Prices != "" || cfg.BotWorkers != 4 {
		t.Errorf("Unexpected config: %+v", cfg)
	}
	if cfg.FormFields.Amount != "entry.3" || cfg.FormFields.Reference != "" {
		t.Errorf("Unexpected form fields: %+v", cfg.FormFields)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	env := minimalEnv()
	env["SHEETS_SOURCE"] = "API"
	env["CACHE_BACKEND"] = "redis"
	env["REDIS_DB"] = "2"
	env["CACHE_TTL"] = "45"
	env["CONFIRM_DELAY"] = "1.5s"
	env["ALLOW_SELF_TRANSFER"] = "true"
	env["GID_PRICES"] = "Прайс"

	cfg, err := LoadConfig(mapEnv(env))
	if err != nil {
		t.Fatalf("LoadConfig: unexpected error: %v", err)
	}
	if cfg.SheetsSource != SourceAPI || cfg.CacheBackend != CacheRedis || cfg.RedisDB != 2 {
		t.Errorf("Unexpected backends: %+v", cfg)
	}
	if cfg.CacheTTL != 45*time.Second || cfg.ConfirmDelay != 1500*time.Millisecond {
		t.Errorf("Unexpected durations: %v, %v", cfg.CacheTTL, cfg.ConfirmDelay)
	}
	if !cfg.AllowSelfTransfer || cfg.Tables.Prices != "Прайс" {
		t.Errorf("Unexpected config: %+v", cfg)
	}
}

func TestLoadConfigReportsEveryProblem(t *testing.T) {
	env := minimalEnv()
	delete(env, "BOT_TOKEN")
	delete(env, "FORM_FIELD_AMOUNT")
	env["CACHE_TTL"] = "soon"
	env["SHEETS_SOURCE"] = "excel"

	_, err := LoadConfig(mapEnv(env))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Expected ErrInvalidConfig, got %v", err)
	}
	for _, key := range []string{"BOT_TOKEN", "FORM_FIELD_AMOUNT", "CACHE_TTL", "SHEETS_SOURCE"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("Expected error to mention %s: %v", key, err)
		}
	}
}
