package sheets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type Client struct {
	service *sheets.Service
}

func NewClient(ctx context.Context, credentialsFile string) (*Client, error) {
	service, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{
		service: service,
	}, nil
}

func (c *Client) ReadSheet(ctx context.Context, spreadsheetID, range_ string) ([][]interface{}, error) {
	resp, err := c.service.Spreadsheets.Values.Get(spreadsheetID, range_).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}

	return resp.Values, nil
}

// valuesReader is the part of Client that APISource needs.
type valuesReader interface {
	ReadSheet(ctx context.Context, spreadsheetID, range_ string) ([][]interface{}, error)
}

// APISource reads tables through the authenticated Sheets API. The table
// identifier is the tab title; the whole tab is read.
type APISource struct {
	reader        valuesReader
	spreadsheetID string
	timeout       time.Duration
}

func NewAPISource(reader valuesReader, spreadsheetID string, timeout time.Duration) *APISource {
	return &APISource{reader: reader, spreadsheetID: spreadsheetID, timeout: timeout}
}

func (s *APISource) Fetch(ctx context.Context, tableID string) (table *Table, err error) {
	start := time.Now()
	defer func() { observeFetch(tableID, start, err) }()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	readRange := wholeTab(tableID)
	log.Debug().Str("table", tableID).Str("range", readRange).Msg("Reading sheet through API")

	values, err := s.reader.ReadSheet(ctx, s.spreadsheetID, readRange)
	if err != nil {
		return nil, fmt.Errorf("%w: table %s: %w", ErrSourceUnavailable, tableID, err)
	}

	table = TableFromValues(tableID, values)
	log.Debug().Str("table", tableID).Int("rows", len(table.Rows)).Msg("Retrieved sheet data")
	return table, nil
}

// wholeTab addresses every populated cell of a tab. The title is quoted so
// names with spaces or ones that look like cell references stay unambiguous.
func wholeTab(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// TableFromValues converts a Sheets API value grid into a Table. Trailing empty
// cells are omitted by the API, so short rows are padded.
func TableFromValues(tableID string, values [][]interface{}) *Table {
	if len(values) == 0 {
		return &Table{TableID: tableID}
	}
	header := stringifyRow(values[0])
	rows := make([][]string, 0, len(values)-1)
	for _, row := range values[1:] {
		rows = append(rows, stringifyRow(row))
	}
	return newTable(tableID, header, rows)
}

func stringifyRow(row []interface{}) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		if cell != nil {
			out[i] = fmt.Sprintf("%v", cell)
		}
	}
	return out
}
