package resolution

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
)

var ErrColumnNotFound = errors.New("column not found")

// headerSeparators are dropped entirely when normalizing a header, together
// with every unicode space (which covers the NBSP variants).
var headerSeparators = map[rune]bool{
	'_':      true,
	'-':      true,
	'\u2013': true, // en dash
	'\u2014': true, // em dash
	'\u00a0': true,
	'\u2007': true,
	'\u202f': true,
}

// NormalizeHeader folds case, treats "ё" as "е" and removes whitespace and
// separator characters, so "Остаток_на счёте" matches "остаток на счете".
func NormalizeHeader(s string) string {
	folded := foldCase(s)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r == 'ё':
			b.WriteRune('е')
		case headerSeparators[r], unicode.IsSpace(r):
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ResolveHeader returns the actual header matching one of the synonyms.
// Exact normalized matches win over substring matches; within a pass the
// earlier synonym wins, and for a given synonym the leftmost header wins.
func ResolveHeader(headers []string, synonyms []string) (string, bool) {
	normHeaders := make([]string, len(headers))
	for i, h := range headers {
		normHeaders[i] = NormalizeHeader(h)
	}
	normSyn := make([]string, len(synonyms))
	for i, s := range synonyms {
		normSyn[i] = NormalizeHeader(s)
	}

	for _, syn := range normSyn {
		if syn == "" {
			continue
		}
		for i, h := range normHeaders {
			if h == syn {
				return headers[i], true
			}
		}
	}

	for _, syn := range normSyn {
		if syn == "" {
			continue
		}
		for i, h := range normHeaders {
			if h == "" {
				continue
			}
			if strings.Contains(h, syn) || strings.Contains(syn, h) {
				return headers[i], true
			}
		}
	}

	return "", false
}

// Column describes a logical column and the header spellings it may appear under.
type Column struct {
	Name     string
	Synonyms []string
	Required bool
}

// Mapping maps logical column names to actual header strings of one table.
type Mapping map[string]string

// Get returns the cell of row under the logical column, or "" when the column
// was not resolved.
func (m Mapping) Get(row map[string]string, logical string) string {
	header, ok := m[logical]
	if !ok {
		return ""
	}
	return strings.TrimSpace(row[header])
}

// Has reports whether the logical column was resolved.
func (m Mapping) Has(logical string) bool {
	_, ok := m[logical]
	return ok
}

// MapColumns resolves every column against headers. A missing required column
// fails with ErrColumnNotFound; a missing optional column is logged and left out.
func MapColumns(headers []string, columns []Column) (Mapping, error) {
	m := make(Mapping, len(columns))
	for _, col := range columns {
		header, ok := ResolveHeader(headers, col.Synonyms)
		if ok {
			m[col.Name] = header
			continue
		}
		if col.Required {
			return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, col.Name)
		}
		log.Warn().
			Str("column", col.Name).
			Strs("headers", headers).
			Msg("Optional column not found, using defaults")
	}
	return m, nil
}
