package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"sheet_ledger_bot/internal/ledger"
	"sheet_ledger_bot/internal/resolution"
	"sheet_ledger_bot/internal/transfer"

	"github.com/rs/zerolog/log"
)

// Ledger is the read side used by the commands.
type Ledger interface {
	Account(ctx context.Context, username string) (ledger.AccountRecord, error)
	AccountByName(ctx context.Context, name string) (ledger.AccountRecord, error)
	Price(ctx context.Context, query string) (ledger.PriceMatch, error)
	RecentOps(ctx context.Context, username string, n int) ([]ledger.OpRecord, error)
}

type Payer interface {
	Pay(ctx context.Context, sender, recipientArg, amountArg string) (*transfer.Result, error)
}

// Invocation is one command call. Username is the caller's Telegram username
// without "@", empty when the user has none. Args is the text after the command.
type Invocation struct {
	Username string
	Args     string
}

// Service turns each invocation into exactly one reply.
type Service struct {
	ledger Ledger
	payer  Payer
}

func NewService(l Ledger, p Payer) *Service {
	return &Service{ledger: l, payer: p}
}

func (s *Service) Start(Invocation) string { return startText }

func (s *Service) Help(Invocation) string { return helpText }

func (s *Service) Unknown(Invocation) string { return unknownCommandText }

// Internal is the reply for a command whose handler failed unexpectedly.
func (s *Service) Internal() string { return internalErrorText }

func (s *Service) Balance(ctx context.Context, inv Invocation) string {
	name := strings.TrimSpace(inv.Args)
	if name != "" {
		acc, err := s.ledger.AccountByName(ctx, name)
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return fmt.Sprintf(nameNotFoundFmt, name)
		}
		if err != nil {
			return accessError(err)
		}
		return fmt.Sprintf(balanceFmt, acc.Name(), ledger.FormatAmount(acc.Balance))
	}

	if inv.Username == "" {
		return noUsernameText
	}
	acc, err := s.ledger.Account(ctx, inv.Username)
	if errors.Is(err, ledger.ErrAccountNotFound) {
		return fmt.Sprintf(userNotFoundFmt, inv.Username)
	}
	if err != nil {
		return accessError(err)
	}
	return fmt.Sprintf(balanceFmt, acc.Name(), ledger.FormatAmount(acc.Balance))
}

func (s *Service) Price(ctx context.Context, inv Invocation) string {
	query := strings.TrimSpace(inv.Args)
	if resolution.NormalizeKey(query) == "" {
		return priceUsageText
	}

	match, err := s.ledger.Price(ctx, query)
	if errors.Is(err, ledger.ErrTableNotConfigured) {
		return pricesOffText
	}
	if err != nil {
		return accessError(err)
	}
	if !match.Found() {
		return fmt.Sprintf(priceNotFoundFmt, query)
	}

	switch {
	case match.Stage == ledger.StageFuzzy:
		m := match.Matches[0]
		return fmt.Sprintf(priceFuzzyFmt, m.DisplayName, m.Price)
	case len(match.Matches) == 1:
		m := match.Matches[0]
		return fmt.Sprintf(priceLineFmt, m.DisplayName, m.Price)
	}

	var sb strings.Builder
	sb.WriteString(priceListHeader)
	for _, m := range match.Matches {
		sb.WriteString("\n• ")
		sb.WriteString(fmt.Sprintf(priceLineFmt, m.DisplayName, m.Price))
	}
	return sb.String()
}

func (s *Service) Pay(ctx context.Context, inv Invocation) string {
	fields := strings.Fields(inv.Args)
	if len(fields) < 2 {
		return payUsageText
	}
	recipient := fields[0]
	amount := strings.Join(fields[1:], "")

	res, err := s.payer.Pay(ctx, inv.Username, recipient, amount)
	if err != nil {
		return payError(err, inv, amount)
	}

	to := res.Request.Recipient
	sum := ledger.FormatAmount(res.Request.Amount)
	if res.Confirmed {
		return fmt.Sprintf(payConfirmedFmt, sum, to, ledger.FormatAmount(res.After))
	}
	return fmt.Sprintf(paySubmittedFmt, sum, to)
}

func payError(err error, inv Invocation, amount string) string {
	var accErr *transfer.AccountError
	var fundsErr *transfer.FundsError
	switch {
	case errors.Is(err, transfer.ErrInvalidAmount):
		return fmt.Sprintf(invalidAmountFmt, amount)
	case errors.Is(err, transfer.ErrSenderUnresolved):
		return noUsernameText
	case errors.As(err, &accErr) && accErr.Role == transfer.RoleSender:
		return fmt.Sprintf(userNotFoundFmt, accErr.Username)
	case errors.As(err, &accErr):
		return fmt.Sprintf(recipientMissFmt, accErr.Username)
	case errors.Is(err, transfer.ErrSelfTransfer):
		return selfTransferText
	case errors.As(err, &fundsErr):
		return fmt.Sprintf(insufficientFmt, ledger.FormatAmount(fundsErr.Balance), ledger.FormatAmount(fundsErr.Amount))
	case errors.Is(err, transfer.ErrSubmitFailed):
		log.Warn().Err(err).Str("username", inv.Username).Msg("Transfer submission failed")
		return submitFailedText
	default:
		return accessError(err)
	}
}

func (s *Service) Ops(ctx context.Context, inv Invocation) string {
	n := ledger.DefaultOpsCount
	if arg := strings.TrimSpace(inv.Args); arg != "" {
		v, err := strconv.Atoi(arg)
		if err != nil || v < 1 {
			return opsUsageText
		}
		n = min(v, ledger.MaxOpsCount)
	}
	if inv.Username == "" {
		return noUsernameText
	}

	ops, err := s.ledger.RecentOps(ctx, inv.Username, n)
	if errors.Is(err, ledger.ErrTableNotConfigured) {
		return opsOffText
	}
	if err != nil {
		return accessError(err)
	}
	if len(ops) == 0 {
		return opsEmptyText
	}

	var sb strings.Builder
	sb.WriteString(opsHeader)
	for _, op := range ops {
		sb.WriteString("\n")
		sb.WriteString(formatOp(op, inv.Username))
	}
	return sb.String()
}

func formatOp(op ledger.OpRecord, username string) string {
	var line string
	if op.Incoming(username) {
		line = fmt.Sprintf("+%s от @%s", ledger.FormatAmount(op.Amount), strings.TrimPrefix(op.From, "@"))
	} else {
		line = fmt.Sprintf("-%s → @%s", ledger.FormatAmount(op.Amount), strings.TrimPrefix(op.To, "@"))
	}
	if op.Date != "" {
		line = op.Date + " " + line
	}
	if op.Comment != "" {
		line += " (" + op.Comment + ")"
	}
	return line
}

func accessError(err error) string {
	log.Error().Err(err).Msg("Ledger request failed")
	return fmt.Sprintf(accessErrorFmt, err)
}
