// Package cldr reads territory display names from the CLDR
// localenames JSON export (main/<locale>/territories.json).
package cldr

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tidwall/gjson"
)

// DefaultLocale is the locale the territories export is downloaded for.
const DefaultLocale = "en"

// TerritoryNames maps a territory code (alpha-2 or a UN M49 macro-region code
// such as "142") to its display name.
type TerritoryNames map[string]string

// Name returns the display name for code.
func (t TerritoryNames) Name(code string) (string, bool) {
	name, ok := t[code]
	return name, ok
}

// Parse extracts the territories mapping for the default locale.
func Parse(r io.Reader) (TerritoryNames, error) {
	return ParseLocale(r, DefaultLocale)
}

// ParseLocale extracts main.<locale>.localeDisplayNames.territories unchanged.
// A missing key anywhere along the path is an error.
func ParseLocale(r io.Reader, locale string) (TerritoryNames, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read territories: %w", err)
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("territories: invalid json")
	}

	path := "main." + locale + ".localeDisplayNames.territories"
	res := gjson.GetBytes(raw, path)
	if !res.Exists() {
		return nil, fmt.Errorf("territories: missing key %q", path)
	}
	if !res.IsObject() {
		return nil, fmt.Errorf("territories: %q is %s, want object", path, res.Type)
	}

	names := make(TerritoryNames)
	if err := json.Unmarshal([]byte(res.Raw), &names); err != nil {
		return nil, fmt.Errorf("decode territories: %w", err)
	}
	return names, nil
}
