// Package pipeline runs a full build: stage sources, parse, join, write.
//
// Steps run strictly in sequence and the first error aborts the run. Nothing
// is written until every source parsed and joined cleanly.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/albapepper/countrydata/internal/config"
	"github.com/albapepper/countrydata/internal/country"
	"github.com/albapepper/countrydata/internal/fetch"
	"github.com/albapepper/countrydata/internal/output"
	"github.com/albapepper/countrydata/internal/source/cldr"
	"github.com/albapepper/countrydata/internal/source/geonames"
	"github.com/albapepper/countrydata/internal/source/iso3166"
	"github.com/albapepper/countrydata/internal/source/m49"
)

// Dataset is the joined, in-memory result of a build.
type Dataset struct {
	Territories cldr.TerritoryNames
	Countries   []country.Record
	Regions     map[string]country.RegionGroup
}

// Result tracks what a run produced.
type Result struct {
	Territories int
	Countries   int
	Regions     int
	Paths       output.Paths
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	return fmt.Sprintf("territories=%d countries=%d regions=%d", r.Territories, r.Countries, r.Regions)
}

// Run stages every configured resource, builds the dataset and writes the
// three artifacts.
func Run(ctx context.Context, cfg *config.Config, f *fetch.Fetcher, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	staged, err := f.FetchAll(ctx, cfg.Resources, cfg.Force)
	if err != nil {
		return Result{}, err
	}

	ds, err := Build(cfg, staged, logger)
	if err != nil {
		return Result{}, err
	}

	w := &output.Writer{Dir: cfg.OutputDir, Pretty: cfg.Pretty, Logger: logger}
	paths, err := w.WriteAll(output.Names{
		Territories: cfg.TerritoryNamesFile,
		Countries:   cfg.CountryListFile,
		Regions:     cfg.RegionsFile,
	}, ds.Territories, ds.Countries, ds.Regions)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Territories: len(ds.Territories),
		Countries:   len(ds.Countries),
		Regions:     len(ds.Regions),
		Paths:       paths,
	}, nil
}

// Build parses the staged sources (paths keyed by resource ID) plus the local
// M49 table and joins them.
func Build(cfg *config.Config, staged map[string]string, logger *slog.Logger) (*Dataset, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var territories cldr.TerritoryNames
	err := parseFile(staged, config.ResourceTerritories, func(f *os.File) (err error) {
		territories, err = cldr.ParseLocale(f, cfg.TerritoryLocale)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Parsed territory names", "count", len(territories))

	var rows []iso3166.Row
	err = parseFile(staged, config.ResourceISO3166, func(f *os.File) (err error) {
		rows, err = iso3166.Parse(f, cfg.ISO3166Count)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Parsed ISO 3166 table", "rows", len(rows))

	var info map[string]geonames.Info
	err = parseFile(staged, config.ResourceCountryInfo, func(f *os.File) (err error) {
		info, err = geonames.Parse(f)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Parsed country info", "count", len(info))

	regions, err := parseM49(cfg.M49Path, cfg.M49Delimiter)
	if err != nil {
		return nil, err
	}
	logger.Info("Parsed M49 regions", "count", len(regions))

	countries, err := country.Join(territories, rows, regions, info)
	if err != nil {
		return nil, fmt.Errorf("join countries: %w", err)
	}
	if cfg.SortByName {
		country.SortByName(countries)
	}

	groups, err := country.MakeRegions(countries, territories)
	if err != nil {
		return nil, fmt.Errorf("group regions: %w", err)
	}

	return &Dataset{Territories: territories, Countries: countries, Regions: groups}, nil
}

// parseFile opens the staged file for resource id and hands it to parse.
func parseFile(staged map[string]string, id string, parse func(*os.File) error) error {
	path, ok := staged[id]
	if !ok {
		return fmt.Errorf("resource %q was not staged", id)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", id, err)
	}
	defer f.Close()

	if err := parse(f); err != nil {
		return fmt.Errorf("parse %s: %w", id, err)
	}
	return nil
}

func parseM49(path string, delim rune) (map[string]m49.Region, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open m49 table: %w", err)
	}
	defer f.Close()

	regions, err := m49.Parse(f, m49.WithDelimiter(delim))
	if err != nil {
		return nil, fmt.Errorf("parse m49 table: %w", err)
	}
	return regions, nil
}

// StagedPaths returns the staging location of every configured resource
// without fetching; used when building from an already-populated cache.
func StagedPaths(cfg *config.Config) map[string]string {
	paths := make(map[string]string, len(cfg.Resources))
	for _, r := range cfg.Resources {
		paths[r.ID] = cfg.StagedPath(r)
	}
	return paths
}
