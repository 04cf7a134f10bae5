package country

import (
	"fmt"

	"github.com/albapepper/countrydata/internal/sentinel"
	"github.com/albapepper/countrydata/internal/source/cldr"
)

const (
	// AntarcticaCode has no M49 region; it is grouped under its own code.
	AntarcticaCode = "AQ"
	antarcticaName = "Antarctica"
)

// RegionGroup is one entry of regions.json.
type RegionGroup struct {
	Name      string   `json:"name"`
	Countries []string `json:"countries"`
}

// MakeRegions groups records by region code. A region's display name is
// resolved the first time it is seen; countries are appended in record order
// and never sorted.
func MakeRegions(records []Record, names cldr.TerritoryNames) (map[string]RegionGroup, error) {
	groups := make(map[string]RegionGroup)
	for _, rec := range records {
		key := rec.RegionCode
		if rec.Alpha2 == AntarcticaCode {
			key = AntarcticaCode
		}

		group, seen := groups[key]
		if !seen {
			name, ok := names.Name(rec.RegionCode)
			if rec.Alpha2 == AntarcticaCode {
				name = antarcticaName
			} else if !ok {
				return nil, fmt.Errorf("%w: no territory name for region %q (%s)", sentinel.ErrLookup, rec.RegionCode, rec.Alpha2)
			}
			group = RegionGroup{Name: name, Countries: []string{}}
		}
		group.Countries = append(group.Countries, rec.Alpha2)
		groups[key] = group
	}
	return groups, nil
}
