package ledger

import (
	"sheet_ledger_bot/internal/resolution"
	"sheet_ledger_bot/internal/sheets"

	"github.com/shopspring/decimal"
)

const (
	colDate    = "date"
	colFrom    = "from"
	colTo      = "to"
	colAmount  = "amount"
	colComment = "comment"

	DefaultOpsCount = 5
	MaxOpsCount     = 20
)

var opsColumns = []resolution.Column{
	{Name: colDate, Synonyms: []string{"Дата", "Время", "date", "timestamp"}},
	{Name: colFrom, Synonyms: []string{"Отправитель", "От кого", "from", "sender"}, Required: true},
	{Name: colTo, Synonyms: []string{"Получатель", "Кому", "to", "recipient"}, Required: true},
	{Name: colAmount, Synonyms: []string{"Сумма", "amount"}},
	{Name: colComment, Synonyms: []string{"Комментарий", "Описание", "comment"}},
}

// OpRecord is one row of the operations log.
type OpRecord struct {
	Row     int
	Date    string
	From    string
	To      string
	Amount  decimal.Decimal
	Comment string
}

// ParseOps maps an operations table to records in row order, skipping rows
// with neither sender nor recipient.
func ParseOps(t *sheets.Table) ([]OpRecord, error) {
	m, err := resolution.MapColumns(t.Headers, opsColumns)
	if err != nil {
		return nil, err
	}
	records := make([]OpRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		op := OpRecord{
			Row:     row.Number,
			Date:    m.Get(row.Values, colDate),
			From:    m.Get(row.Values, colFrom),
			To:      m.Get(row.Values, colTo),
			Amount:  ParseBalance(m.Get(row.Values, colAmount)),
			Comment: m.Get(row.Values, colComment),
		}
		if op.From == "" && op.To == "" {
			continue
		}
		records = append(records, op)
	}
	return records, nil
}

// RecentOps returns up to n operations involving username, newest (lowest in
// the sheet) first.
func RecentOps(records []OpRecord, username string, n int) []OpRecord {
	key := resolution.NormalizeKey(username)
	if key == "" || n <= 0 {
		return nil
	}
	var out []OpRecord
	for i := len(records) - 1; i >= 0 && len(out) < n; i-- {
		op := records[i]
		if resolution.NormalizeKey(op.From) == key || resolution.NormalizeKey(op.To) == key {
			out = append(out, op)
		}
	}
	return out
}

// Incoming reports whether username received op.
func (op OpRecord) Incoming(username string) bool {
	return resolution.SameKey(op.To, username)
}
