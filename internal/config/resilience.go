package config

import (
	"time"

	"sheet_ledger_bot/internal/retry"
)

type ResilienceConfig struct {
	// TelegramConnect covers the getMe handshake at startup.
	TelegramConnect retry.Config
	// SheetRequest bounds a single table fetch or form submission.
	SheetRequest time.Duration
	// Confirm drives the post-submit settlement poll.
	Confirm retry.PollPolicy
}

var DefaultResilienceConfig = ResilienceConfig{
	TelegramConnect: retry.Config{
		MaxRetries: 5,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
		Timeout:    15 * time.Second,
	},
	SheetRequest: 10 * time.Second,
	Confirm: retry.PollPolicy{
		Attempts: 6,
		Delay:    850 * time.Millisecond,
		Timeout:  10 * time.Second,
	},
}
