package ledger

import (
	"strings"

	"sheet_ledger_bot/internal/resolution"
	"sheet_ledger_bot/internal/sheets"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	colUsername = "username"
	colName     = "name"
	colBalance  = "balance"
)

var accountColumns = []resolution.Column{
	{Name: colUsername, Synonyms: []string{"Username", "юзернейм", "ник", "telegram", "логин"}, Required: true},
	{Name: colName, Synonyms: []string{"Имя", "display name", "ФИО"}},
	{Name: colBalance, Synonyms: []string{"Баланс", "balance", "остаток", "счет"}},
}

// AccountRecord is one row of the accounts sheet.
type AccountRecord struct {
	Username    string
	DisplayName string
	Balance     decimal.Decimal
	Row         int
}

// Key is the normalized username.
func (a AccountRecord) Key() string {
	return resolution.NormalizeKey(a.Username)
}

// Name is the display name, falling back to @username.
func (a AccountRecord) Name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return "@" + a.Username
}

// ParseAccounts maps an accounts table to records in row order. Rows without
// a username are skipped; a missing balance column reads as zero.
func ParseAccounts(t *sheets.Table) ([]AccountRecord, error) {
	m, err := resolution.MapColumns(t.Headers, accountColumns)
	if err != nil {
		return nil, err
	}

	records := make([]AccountRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		username := strings.TrimSpace(strings.TrimPrefix(m.Get(row.Values, colUsername), "@"))
		if resolution.NormalizeKey(username) == "" {
			continue
		}
		records = append(records, AccountRecord{
			Username:    username,
			DisplayName: m.Get(row.Values, colName),
			Balance:     ParseBalance(m.Get(row.Values, colBalance)),
			Row:         row.Number,
		})
	}

	log.Debug().
		Str("table", t.TableID).
		Int("rows", len(t.Rows)).
		Int("accounts", len(records)).
		Msg("Parsed accounts")
	return records, nil
}

// FindAccount returns the first record whose normalized username equals the
// normalized username argument.
func FindAccount(records []AccountRecord, username string) (AccountRecord, bool) {
	key := resolution.NormalizeKey(username)
	if key == "" {
		return AccountRecord{}, false
	}
	for _, r := range records {
		if r.Key() == key {
			return r, true
		}
	}
	return AccountRecord{}, false
}

// FindAccountByName matches a display name first and a username second.
func FindAccountByName(records []AccountRecord, name string) (AccountRecord, bool) {
	key := resolution.NormalizeKey(name)
	if key == "" {
		return AccountRecord{}, false
	}
	for _, r := range records {
		if resolution.NormalizeKey(r.DisplayName) == key {
			return r, true
		}
	}
	return FindAccount(records, name)
}
