package ledger

import (
	"fmt"
	"os"

	"sheet_ledger_bot/internal/resolution"

	"gopkg.in/yaml.v3"
)

// Aliases maps normalized colloquial item names to normalized price-list names.
type Aliases map[string]string

var defaultAliases = map[string]string{
	"эндер жемчуг": "жемчуг края",
	"эндер перл":   "жемчуг края",
	"ender pearl":  "жемчуг края",
	"перл":         "жемчуг края",
	"алмазы":       "алмаз",
	"изумруды":     "изумруд",
	"незерит":      "незеритовый слиток",
	"тотем":        "тотем бессмертия",
}

// NewAliases normalizes both sides of raw.
func NewAliases(raw map[string]string) Aliases {
	a := make(Aliases, len(raw))
	for from, to := range raw {
		k := resolution.NormalizeKey(from)
		v := resolution.NormalizeKey(to)
		if k == "" || v == "" {
			continue
		}
		a[k] = v
	}
	return a
}

// DefaultAliases returns the built-in alias table.
func DefaultAliases() Aliases {
	return NewAliases(defaultAliases)
}

// Resolve returns the alias target for a normalized query.
func (a Aliases) Resolve(normalized string) (string, bool) {
	target, ok := a[normalized]
	return target, ok
}

// LoadAliases reads a flat YAML "alias: target" mapping and layers it over
// the defaults.
func LoadAliases(path string) (Aliases, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read aliases: %w", err)
	}
	var raw map[string]string
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse aliases: %w", err)
	}

	merged := DefaultAliases()
	for k, v := range NewAliases(raw) {
		merged[k] = v
	}
	return merged, nil
}
