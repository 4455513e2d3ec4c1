package sheets

import (
	"context"
	"errors"
	"time"

	"sheet_ledger_bot/internal/metrics"
)

var (
	ErrSourceUnavailable = errors.New("table source unavailable")
	ErrDecode            = errors.New("table payload could not be decoded")
)

// Record is one data row keyed by header string.
type Record struct {
	// Number is the 1-based spreadsheet row; the header is row 1.
	Number int               `json:"number"`
	Values map[string]string `json:"values"`
}

// Table is an ordered snapshot of one sheet. Tables may be shared through a
// cache and must be treated as read-only.
type Table struct {
	TableID string   `json:"table_id"`
	Headers []string `json:"headers"`
	Rows    []Record `json:"rows"`
}

// Source fetches a table snapshot by its identifier.
type Source interface {
	Fetch(ctx context.Context, tableID string) (*Table, error)
}

// Invalidator is implemented by sources that cache snapshots.
type Invalidator interface {
	Invalidate(ctx context.Context, tableID string) error
}

// Invalidate drops the cached snapshot of tableID when src caches; it is a
// no-op for uncached sources.
func Invalidate(ctx context.Context, src Source, tableID string) error {
	if inv, ok := src.(Invalidator); ok {
		return inv.Invalidate(ctx, tableID)
	}
	return nil
}

// newTable builds a Table from a header row and data rows. Short rows are
// padded with empty values; when headers repeat, the leftmost column wins.
func newTable(tableID string, header []string, rows [][]string) *Table {
	t := &Table{TableID: tableID, Headers: header, Rows: make([]Record, 0, len(rows))}
	for i, row := range rows {
		values := make(map[string]string, len(header))
		for col, name := range header {
			if _, seen := values[name]; seen {
				continue
			}
			if col < len(row) {
				values[name] = row[col]
			} else {
				values[name] = ""
			}
		}
		t.Rows = append(t.Rows, Record{Number: i + 2, Values: values})
	}
	return t
}

func observeFetch(tableID string, start time.Time, err error) {
	result := "ok"
	switch {
	case errors.Is(err, ErrDecode):
		result = "decode"
	case err != nil:
		result = "unavailable"
	}
	metrics.ObserveSheetFetch(tableID, result, time.Since(start))
}
