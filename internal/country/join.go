// Package country joins the parsed sources into the published country list
// and groups countries by UN M49 region.
package country

import (
	"fmt"
	"slices"
	"strings"

	"github.com/albapepper/countrydata/internal/sentinel"
	"github.com/albapepper/countrydata/internal/source/cldr"
	"github.com/albapepper/countrydata/internal/source/geonames"
	"github.com/albapepper/countrydata/internal/source/iso3166"
	"github.com/albapepper/countrydata/internal/source/m49"
)

// Record is one entry of country-list.json.
type Record struct {
	Alpha2        string   `json:"iso3166_alpha2"`
	Alpha3        string   `json:"iso3166_alpha3"`
	Numeric       string   `json:"iso3166_num"`
	ISOName       string   `json:"iso3166_name"`
	Name          string   `json:"name"`
	Languages     []string `json:"languages"`
	TLD           string   `json:"tld"`
	Capital       string   `json:"capital"`
	RegionCode    string   `json:"region_code"`
	SubRegionCode string   `json:"sub_region_code"`
}

// Join builds one Record per ISO 3166 row, in row order. Display name and
// country info are looked up by alpha-2, the region by alpha-3. Any missing
// key fails the whole join.
func Join(
	names cldr.TerritoryNames,
	rows []iso3166.Row,
	regions map[string]m49.Region,
	info map[string]geonames.Info,
) ([]Record, error) {
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		name, ok := names.Name(row.Alpha2)
		if !ok {
			return nil, fmt.Errorf("%w: no territory name for %q", sentinel.ErrLookup, row.Alpha2)
		}
		ci, ok := info[row.Alpha2]
		if !ok {
			return nil, fmt.Errorf("%w: no country info for %q", sentinel.ErrLookup, row.Alpha2)
		}
		region, ok := regions[row.Alpha3]
		if !ok {
			return nil, fmt.Errorf("%w: no m49 region for %q (%s)", sentinel.ErrLookup, row.Alpha3, row.Alpha2)
		}

		records = append(records, Record{
			Alpha2:        row.Alpha2,
			Alpha3:        row.Alpha3,
			Numeric:       row.Numeric,
			ISOName:       row.Name,
			Name:          name,
			Languages:     splitLanguages(ci.Languages),
			TLD:           ci.TLD,
			Capital:       ci.Capital,
			RegionCode:    region.RegionCode,
			SubRegionCode: region.SubRegionCode,
		})
	}
	return records, nil
}

// SortByName orders records by display name in place. Join never calls it;
// the published list keeps source-row order unless asked otherwise.
func SortByName(records []Record) {
	slices.SortStableFunc(records, func(a, b Record) int {
		return strings.Compare(a.Name, b.Name)
	})
}

// splitLanguages splits the geonames language field, keeping order. An empty
// field gives an empty, non-nil list so it encodes as [].
func splitLanguages(csv string) []string {
	if csv == "" {
		return []string{}
	}
	return strings.Split(csv, ",")
}
