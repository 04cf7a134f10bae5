// Package output writes the published JSON artifacts.
package output

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tidwall/pretty"

	"github.com/albapepper/countrydata/internal/country"
	"github.com/albapepper/countrydata/internal/source/cldr"
)

// Writer serializes artifacts into Dir. Files are overwritten in place.
type Writer struct {
	Dir    string
	Pretty bool
	Logger *slog.Logger
}

// Names are the file names of the three artifacts.
type Names struct {
	Territories string
	Countries   string
	Regions     string
}

// Paths holds where WriteAll put each artifact.
type Paths struct {
	Territories string
	Countries   string
	Regions     string
}

// WriteAll writes territory names, the country list and the region groups,
// in that order, stopping at the first failure.
func (w *Writer) WriteAll(
	names Names,
	territories cldr.TerritoryNames,
	countries []country.Record,
	regions map[string]country.RegionGroup,
) (Paths, error) {
	var p Paths
	var err error
	if p.Territories, err = w.Write(names.Territories, territories); err != nil {
		return Paths{}, err
	}
	if p.Countries, err = w.Write(names.Countries, countries); err != nil {
		return Paths{}, err
	}
	if p.Regions, err = w.Write(names.Regions, regions); err != nil {
		return Paths{}, err
	}
	return p, nil
}

// Write encodes v as JSON into Dir/name and returns the path.
func (w *Writer) Write(name string, v any) (string, error) {
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}

	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	if w.Pretty {
		b = pretty.Pretty(b)
	}

	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(w.Dir, name)
	logger.Info("Writing artifact", "file", name)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
