package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sheet_ledger_bot/internal/config"
	"sheet_ledger_bot/internal/forms"
	"sheet_ledger_bot/internal/ledger"
	"sheet_ledger_bot/internal/metrics"
	"sheet_ledger_bot/internal/resolution"
	"sheet_ledger_bot/internal/retry"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// AccountBook is the part of the ledger a transfer reads.
type AccountBook interface {
	Accounts(ctx context.Context) ([]ledger.AccountRecord, error)
	InvalidateAccounts(ctx context.Context) error
}

// Request is one /pay invocation after validation. It is never stored; the
// form submission is its only effect.
type Request struct {
	ID          uuid.UUID
	Sender      string
	Recipient   string
	Amount      decimal.Decimal
	SubmittedAt time.Time
}

// Result describes an accepted submission. After holds the last balance read
// while confirming; it equals Before when nothing newer was seen.
type Result struct {
	Request   Request
	Before    decimal.Decimal
	After     decimal.Decimal
	Confirmed bool
}

type Policy struct {
	RejectSelfTransfer bool
	Confirm            retry.PollPolicy
}

func DefaultPolicy() Policy {
	return Policy{
		RejectSelfTransfer: true,
		Confirm:            config.DefaultResilienceConfig.Confirm,
	}
}

type Orchestrator struct {
	book      AccountBook
	submitter forms.Submitter
	policy    Policy
	now       func() time.Time
}

func NewOrchestrator(book AccountBook, submitter forms.Submitter, policy Policy) *Orchestrator {
	return &Orchestrator{
		book:      book,
		submitter: submitter,
		policy:    policy,
		now:       time.Now,
	}
}

// Pay validates a transfer against one accounts snapshot, submits it once and
// then polls for the sender's balance to change. Validation failures stop
// before anything is submitted.
func (o *Orchestrator) Pay(ctx context.Context, sender, recipientArg, amountArg string) (*Result, error) {
	res, err := o.pay(ctx, sender, recipientArg, amountArg)
	metrics.IncTransfer(outcome(res, err))
	return res, err
}

func (o *Orchestrator) pay(ctx context.Context, sender, recipientArg, amountArg string) (*Result, error) {
	amount, err := ledger.ParseAmount(amountArg)
	if err != nil {
		return nil, err
	}

	if resolution.NormalizeKey(sender) == "" {
		return nil, ErrSenderUnresolved
	}

	records, err := o.book.Accounts(ctx)
	if err != nil {
		return nil, err
	}

	from, ok := ledger.FindAccount(records, sender)
	if !ok {
		return nil, &AccountError{Role: RoleSender, Username: trimAt(sender), Err: ledger.ErrAccountNotFound}
	}

	if o.policy.RejectSelfTransfer && resolution.SameKey(from.Username, recipientArg) {
		return nil, ErrSelfTransfer
	}

	to, ok := ledger.FindAccount(records, recipientArg)
	if !ok {
		return nil, &AccountError{Role: RoleRecipient, Username: trimAt(recipientArg), Err: ledger.ErrAccountNotFound}
	}

	if from.Balance.LessThan(amount) {
		return nil, &FundsError{Balance: from.Balance, Amount: amount}
	}

	req := Request{
		ID:          uuid.New(),
		Sender:      from.Username,
		Recipient:   to.Username,
		Amount:      amount,
		SubmittedAt: o.now(),
	}

	log.Info().
		Str("request_id", req.ID.String()).
		Str("sender", req.Sender).
		Str("recipient", req.Recipient).
		Str("amount", amount.StringFixed(2)).
		Msg("Submitting transfer")

	err = o.submitter.Submit(ctx, forms.Submission{
		Reference: req.ID.String(),
		Sender:    req.Sender,
		Recipient: req.Recipient,
		Amount:    ledger.FormatFormAmount(amount),
	})
	if err != nil {
		if !errors.Is(err, ErrSubmitFailed) {
			err = fmt.Errorf("%w: %w", ErrSubmitFailed, err)
		}
		return nil, err
	}

	after, confirmed := o.confirm(ctx, req, from.Balance)
	return &Result{Request: req, Before: from.Balance, After: after, Confirmed: confirmed}, nil
}

// confirm re-reads the accounts table, bypassing the cache, until the
// sender's balance differs from before. Failing to confirm is not an error.
func (o *Orchestrator) confirm(ctx context.Context, req Request, before decimal.Decimal) (decimal.Decimal, bool) {
	after, confirmed, err := retry.Poll(ctx, o.policy.Confirm, func(ctx context.Context, attempt int) (decimal.Decimal, bool, error) {
		if err := o.book.InvalidateAccounts(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to invalidate accounts cache")
		}
		records, err := o.book.Accounts(ctx)
		if err != nil {
			return before, false, err
		}
		acc, ok := ledger.FindAccount(records, req.Sender)
		if !ok {
			return before, false, fmt.Errorf("%w: %s", ledger.ErrAccountNotFound, req.Sender)
		}
		return acc.Balance, !acc.Balance.Equal(before), nil
	})
	if err != nil {
		log.Warn().Err(err).Str("request_id", req.ID.String()).Msg("Confirmation interrupted")
		return before, false
	}
	if !confirmed {
		log.Info().Str("request_id", req.ID.String()).Msg("Transfer submitted, balance not updated yet")
		return before, false
	}

	log.Info().
		Str("request_id", req.ID.String()).
		Str("before", before.StringFixed(2)).
		Str("after", after.StringFixed(2)).
		Msg("Transfer confirmed")
	return after, true
}

func outcome(res *Result, err error) string {
	var accErr *AccountError
	switch {
	case err == nil && res.Confirmed:
		return "confirmed"
	case err == nil:
		return "submitted"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrSenderUnresolved):
		return "sender_unresolved"
	case errors.As(err, &accErr):
		return string(accErr.Role) + "_not_found"
	case errors.Is(err, ErrSelfTransfer):
		return "self_transfer"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrSubmitFailed):
		return "submit_failed"
	default:
		return "source_error"
	}
}

func trimAt(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "@")
}
