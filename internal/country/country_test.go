package country

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/countrydata/internal/sentinel"
	"github.com/albapepper/countrydata/internal/source/cldr"
	"github.com/albapepper/countrydata/internal/source/geonames"
	"github.com/albapepper/countrydata/internal/source/iso3166"
	"github.com/albapepper/countrydata/internal/source/m49"
)

func fixtures() (cldr.TerritoryNames, []iso3166.Row, map[string]m49.Region, map[string]geonames.Info) {
	names := cldr.TerritoryNames{
		"142": "Asia",
		"150": "Europe",
		"AF":  "Afghanistan",
		"AX":  "Åland Islands",
		"AQ":  "Antarctica",
		"JP":  "Japan",
	}
	rows := []iso3166.Row{
		{Name: "Afghanistan", Alpha2: "AF", Alpha3: "AFG", Numeric: "004"},
		{Name: "Åland Islands", Alpha2: "AX", Alpha3: "ALA", Numeric: "248"},
		{Name: "Antarctica", Alpha2: "AQ", Alpha3: "ATA", Numeric: "010"},
		{Name: "Japan", Alpha2: "JP", Alpha3: "JPN", Numeric: "392"},
	}
	regions := map[string]m49.Region{
		"AFG": {RegionCode: "142", SubRegionCode: "034"},
		"ALA": {RegionCode: "150", SubRegionCode: "154"},
		"ATA": {},
		"JPN": {RegionCode: "142", SubRegionCode: "030"},
	}
	info := map[string]geonames.Info{
		"AF": {Capital: "Kabul", Continent: "AS", TLD: ".af", Languages: "fa-AF,ps,uz-AF,tk"},
		"AX": {Capital: "Mariehamn", Continent: "EU", TLD: ".ax", Languages: "sv-AX"},
		"AQ": {Continent: "AN", TLD: ".aq"},
		"JP": {Capital: "Tokyo", Continent: "AS", TLD: ".jp", Languages: "ja"},
	}
	return names, rows, regions, info
}

func TestJoin(t *testing.T) {
	names, rows, regions, info := fixtures()

	records, err := Join(names, rows, regions, info)
	require.NoError(t, err)
	require.Len(t, records, len(rows))

	assert.Equal(t, Record{
		Alpha2:        "AF",
		Alpha3:        "AFG",
		Numeric:       "004",
		ISOName:       "Afghanistan",
		Name:          "Afghanistan",
		Languages:     []string{"fa-AF", "ps", "uz-AF", "tk"},
		TLD:           ".af",
		Capital:       "Kabul",
		RegionCode:    "142",
		SubRegionCode: "034",
	}, records[0])

	for i, rec := range records {
		assert.Equal(t, rows[i].Alpha2, rec.Alpha2, "source row order is kept")
	}
	assert.Equal(t, []string{}, records[2].Languages)
	assert.Equal(t, "", records[2].RegionCode)
}

func TestJoinMissingKeys(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cldr.TerritoryNames, map[string]m49.Region, map[string]geonames.Info)
		wantErr string
	}{
		{
			name:    "territory name",
			mutate:  func(n cldr.TerritoryNames, _ map[string]m49.Region, _ map[string]geonames.Info) { delete(n, "AX") },
			wantErr: `no territory name for "AX"`,
		},
		{
			name:    "country info",
			mutate:  func(_ cldr.TerritoryNames, _ map[string]m49.Region, i map[string]geonames.Info) { delete(i, "JP") },
			wantErr: `no country info for "JP"`,
		},
		{
			name:    "region",
			mutate:  func(_ cldr.TerritoryNames, r map[string]m49.Region, _ map[string]geonames.Info) { delete(r, "ALA") },
			wantErr: `no m49 region for "ALA"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names, rows, regions, info := fixtures()
			tt.mutate(names, regions, info)

			records, err := Join(names, rows, regions, info)
			require.Error(t, err)
			assert.Nil(t, records)
			assert.ErrorIs(t, err, sentinel.ErrLookup)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSortByName(t *testing.T) {
	records := []Record{{Name: "Japan"}, {Name: "Afghanistan"}, {Name: "Åland Islands"}}
	SortByName(records)
	assert.Equal(t, "Afghanistan", records[0].Name)
	assert.Equal(t, "Japan", records[1].Name)
	assert.Equal(t, "Åland Islands", records[2].Name, "byte order, not collation")
}

func TestMakeRegions(t *testing.T) {
	names, rows, regions, info := fixtures()
	records, err := Join(names, rows, regions, info)
	require.NoError(t, err)

	groups, err := MakeRegions(records, names)
	require.NoError(t, err)

	assert.Equal(t, map[string]RegionGroup{
		"142": {Name: "Asia", Countries: []string{"AF", "JP"}},
		"150": {Name: "Europe", Countries: []string{"AX"}},
		"AQ":  {Name: "Antarctica", Countries: []string{"AQ"}},
	}, groups)
}

func TestMakeRegionsKeepsFirstSeenOrder(t *testing.T) {
	names := cldr.TerritoryNames{"142": "Asia"}
	records := []Record{
		{Alpha2: "JP", RegionCode: "142"},
		{Alpha2: "AF", RegionCode: "142"},
		{Alpha2: "CN", RegionCode: "142"},
	}

	groups, err := MakeRegions(records, names)
	require.NoError(t, err)
	assert.Equal(t, []string{"JP", "AF", "CN"}, groups["142"].Countries)
}

func TestMakeRegionsAntarcticaIgnoresRegionCode(t *testing.T) {
	// Even with a region code and no name for it, AQ lands in its own group.
	records := []Record{{Alpha2: "AQ", RegionCode: "999"}}

	groups, err := MakeRegions(records, cldr.TerritoryNames{})
	require.NoError(t, err)
	assert.Equal(t, map[string]RegionGroup{"AQ": {Name: "Antarctica", Countries: []string{"AQ"}}}, groups)
}

func TestMakeRegionsMissingRegionName(t *testing.T) {
	records := []Record{{Alpha2: "AF", RegionCode: "142"}}

	_, err := MakeRegions(records, cldr.TerritoryNames{})
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrLookup)
	assert.Contains(t, err.Error(), `region "142"`)
}
