package ledger

import "errors"

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrTableNotConfigured = errors.New("table not configured")
)
