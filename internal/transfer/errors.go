package transfer

import (
	"errors"
	"fmt"

	"sheet_ledger_bot/internal/forms"
	"sheet_ledger_bot/internal/ledger"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount     = ledger.ErrInvalidAmount
	ErrSubmitFailed      = forms.ErrSubmitFailed
	ErrSenderUnresolved  = errors.New("sender has no telegram username")
	ErrSelfTransfer      = errors.New("sender and recipient are the same account")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

type Role string

const (
	RoleSender    Role = "sender"
	RoleRecipient Role = "recipient"
)

// AccountError reports which side of a transfer could not be resolved.
type AccountError struct {
	Role     Role
	Username string
	Err      error
}

func (e *AccountError) Error() string {
	return fmt.Sprintf("%s @%s: %v", e.Role, e.Username, e.Err)
}

func (e *AccountError) Unwrap() error { return e.Err }

// FundsError carries the balance that failed the check.
type FundsError struct {
	Balance decimal.Decimal
	Amount  decimal.Decimal
}

func (e *FundsError) Error() string {
	return fmt.Sprintf("%v: balance %s, requested %s", ErrInsufficientFunds, e.Balance.StringFixed(2), e.Amount.StringFixed(2))
}

func (e *FundsError) Unwrap() error { return ErrInsufficientFunds }
