package ledger

import (
	"context"
	"fmt"

	"sheet_ledger_bot/internal/sheets"

	"github.com/rs/zerolog/log"
)

// Tables holds the table identifiers of one deployment.
type Tables struct {
	Accounts string
	Prices   string
	Ops      string
}

// Book answers ledger queries against fresh (or cached) table snapshots.
type Book struct {
	source  sheets.Source
	tables  Tables
	aliases Aliases
}

func NewBook(source sheets.Source, tables Tables, aliases Aliases) *Book {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	return &Book{source: source, tables: tables, aliases: aliases}
}

// Accounts reads every account record.
func (b *Book) Accounts(ctx context.Context) ([]AccountRecord, error) {
	t, err := b.source.Fetch(ctx, b.tables.Accounts)
	if err != nil {
		return nil, err
	}
	return ParseAccounts(t)
}

// Account finds an account by Telegram username.
func (b *Book) Account(ctx context.Context, username string) (AccountRecord, error) {
	records, err := b.Accounts(ctx)
	if err != nil {
		return AccountRecord{}, err
	}
	acc, ok := FindAccount(records, username)
	if !ok {
		return AccountRecord{}, fmt.Errorf("%w: %s", ErrAccountNotFound, username)
	}
	return acc, nil
}

// AccountByName finds an account by display name or username.
func (b *Book) AccountByName(ctx context.Context, name string) (AccountRecord, error) {
	records, err := b.Accounts(ctx)
	if err != nil {
		return AccountRecord{}, err
	}
	acc, ok := FindAccountByName(records, name)
	if !ok {
		return AccountRecord{}, fmt.Errorf("%w: %s", ErrAccountNotFound, name)
	}
	return acc, nil
}

// InvalidateAccounts drops any cached accounts snapshot.
func (b *Book) InvalidateAccounts(ctx context.Context) error {
	return sheets.Invalidate(ctx, b.source, b.tables.Accounts)
}

// Price looks up an item in the price list.
func (b *Book) Price(ctx context.Context, query string) (PriceMatch, error) {
	if b.tables.Prices == "" {
		return PriceMatch{}, fmt.Errorf("%w: prices", ErrTableNotConfigured)
	}
	t, err := b.source.Fetch(ctx, b.tables.Prices)
	if err != nil {
		return PriceMatch{}, err
	}
	records, err := ParsePrices(t)
	if err != nil {
		return PriceMatch{}, err
	}
	match := LookupPrice(records, query, b.aliases)
	log.Debug().
		Str("query", query).
		Stringer("stage", match.Stage).
		Int("matches", len(match.Matches)).
		Msg("Price lookup finished")
	return match, nil
}

// RecentOps returns the latest n operations involving username.
func (b *Book) RecentOps(ctx context.Context, username string, n int) ([]OpRecord, error) {
	if b.tables.Ops == "" {
		return nil, fmt.Errorf("%w: ops", ErrTableNotConfigured)
	}
	t, err := b.source.Fetch(ctx, b.tables.Ops)
	if err != nil {
		return nil, err
	}
	records, err := ParseOps(t)
	if err != nil {
		return nil, err
	}
	return RecentOps(records, username, n), nil
}
