package sheets

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultExportBaseURL = "https://docs.google.com/spreadsheets/d"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVSource reads tables from the unauthenticated CSV export of a published
// spreadsheet. The table identifier is the sheet gid.
type CSVSource struct {
	httpClient    *http.Client
	spreadsheetID string
	baseURL       string
}

func NewCSVSource(spreadsheetID string, timeout time.Duration) *CSVSource {
	return &CSVSource{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		spreadsheetID: spreadsheetID,
		baseURL:       DefaultExportBaseURL,
	}
}

// WithBaseURL points the source at a different export host.
func (s *CSVSource) WithBaseURL(baseURL string) *CSVSource {
	s.baseURL = baseURL
	return s
}

// ExportURL returns the CSV export address for a gid.
func (s *CSVSource) ExportURL(gid string) string {
	return fmt.Sprintf("%s/%s/export?format=csv&gid=%s", s.baseURL, url.PathEscape(s.spreadsheetID), url.QueryEscape(gid))
}

func (s *CSVSource) Fetch(ctx context.Context, tableID string) (table *Table, err error) {
	start := time.Now()
	defer func() { observeFetch(tableID, start, err) }()

	exportURL := s.ExportURL(tableID)
	log.Debug().Str("table", tableID).Str("url", exportURL).Msg("Fetching CSV export")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exportURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrSourceUnavailable, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: table %s: %w", ErrSourceUnavailable, tableID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: table %s: HTTP %d", ErrSourceUnavailable, tableID, resp.StatusCode)
	}

	// Unpublished sheets answer 200 with a sign-in page.
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		return nil, fmt.Errorf("%w: table %s: got HTML instead of CSV", ErrDecode, tableID)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: table %s: failed to read body: %w", ErrSourceUnavailable, tableID, err)
	}

	table, err = ParseCSV(tableID, body)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("table", tableID).
		Int("rows", len(table.Rows)).
		Int("bytes", len(body)).
		Msg("Fetched CSV export")
	return table, nil
}

// ParseCSV decodes a CSV payload whose first row is the header. An optional
// UTF-8 BOM is stripped and an empty payload yields an empty table.
func ParseCSV(tableID string, payload []byte) (*Table, error) {
	payload = bytes.TrimPrefix(payload, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(payload))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Table{TableID: tableID}, nil
		}
		return nil, fmt.Errorf("%w: table %s header: %w", ErrDecode, tableID, err)
	}

	var rows [][]string
	for {
		record, readErr := reader.Read()
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: table %s: %w", ErrDecode, tableID, readErr)
		}
		rows = append(rows, record)
	}

	return newTable(tableID, header, rows), nil
}
