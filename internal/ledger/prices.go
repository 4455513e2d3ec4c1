package ledger

import (
	"strings"

	"sheet_ledger_bot/internal/resolution"
	"sheet_ledger_bot/internal/sheets"

	"github.com/rs/zerolog/log"
)

const (
	colItem  = "item"
	colPrice = "price"

	// MaxSubstringMatches caps the disambiguation list.
	MaxSubstringMatches = 5
	// FuzzyCutoff is the minimum similarity accepted by the last lookup stage.
	FuzzyCutoff = 0.45
)

var priceColumns = []resolution.Column{
	{Name: colItem, Synonyms: []string{"Товар", "Предмет", "Название", "item", "name"}, Required: true},
	{Name: colPrice, Synonyms: []string{"Цена", "Стоимость", "price", "cost"}, Required: true},
}

// PriceRecord is one row of the price list. ItemName is normalized.
type PriceRecord struct {
	ItemName    string
	DisplayName string
	Price       string
	Row         int
}

// Stage tells which lookup stage produced a PriceMatch.
type Stage int

const (
	StageNone Stage = iota
	StageExact
	StageSubstring
	StageFuzzy
)

func (s Stage) String() string {
	switch s {
	case StageExact:
		return "exact"
	case StageSubstring:
		return "substring"
	case StageFuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

// PriceMatch is the outcome of LookupPrice. Substring matches may carry up to
// MaxSubstringMatches records; the other stages carry exactly one.
type PriceMatch struct {
	Query   string
	Aliased bool
	Stage   Stage
	Matches []PriceRecord
}

func (m PriceMatch) Found() bool { return m.Stage != StageNone && len(m.Matches) > 0 }

// ParsePrices maps a price table to records in row order, skipping rows
// without an item name.
func ParsePrices(t *sheets.Table) ([]PriceRecord, error) {
	m, err := resolution.MapColumns(t.Headers, priceColumns)
	if err != nil {
		return nil, err
	}

	records := make([]PriceRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		display := m.Get(row.Values, colItem)
		key := resolution.NormalizeKey(display)
		if key == "" {
			continue
		}
		records = append(records, PriceRecord{
			ItemName:    key,
			DisplayName: display,
			Price:       m.Get(row.Values, colPrice),
			Row:         row.Number,
		})
	}
	return records, nil
}

// LookupPrice runs alias substitution, then exact, substring (query inside the
// item name) and similarity matching, stopping at the first stage with a result.
func LookupPrice(records []PriceRecord, query string, aliases Aliases) PriceMatch {
	q := resolution.NormalizeKey(query)
	match := PriceMatch{Query: q}
	if q == "" {
		return match
	}

	if target, ok := aliases.Resolve(q); ok {
		log.Debug().Str("query", q).Str("alias", target).Msg("Applying price alias")
		q = target
		match.Query = target
		match.Aliased = true
	}

	for _, r := range records {
		if r.ItemName == q {
			match.Stage = StageExact
			match.Matches = []PriceRecord{r}
			return match
		}
	}

	for _, r := range records {
		if strings.Contains(r.ItemName, q) {
			match.Matches = append(match.Matches, r)
			if len(match.Matches) == MaxSubstringMatches {
				break
			}
		}
	}
	if len(match.Matches) > 0 {
		match.Stage = StageSubstring
		return match
	}

	bestScore := -1.0
	var best PriceRecord
	for _, r := range records {
		score := resolution.Similarity(q, r.ItemName)
		if score > bestScore {
			bestScore = score
			best = r
		}
	}
	if bestScore >= FuzzyCutoff {
		log.Debug().
			Str("query", q).
			Str("item", best.ItemName).
			Float64("score", bestScore).
			Msg("Fuzzy price match")
		match.Stage = StageFuzzy
		match.Matches = []PriceRecord{best}
	}
	return match
}
