// Package geonames parses the geonames countryInfo.txt dump.
package geonames

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/albapepper/countrydata/internal/sentinel"
)

// Column is a field position in countryInfo.txt.
type Column int

// Column schema of countryInfo.txt. Offsets match the upstream file; do not
// renumber.
const (
	ColISO Column = iota
	ColISO3
	ColISONumeric
	ColFips
	ColCountry
	ColCapital
	ColArea
	ColPopulation
	ColContinent
	ColTLD
	ColCurrencyCode
	ColCurrencyName
	ColPhone
	ColPostalCodeFormat
	ColPostalCodeRegex
	ColLanguages
	ColGeonameID
	ColNeighbours
	ColEquivalentFipsCode

	numColumns

	// minFields covers every column Info reads; trailing columns may be absent.
	minFields = int(ColLanguages) + 1
)

// columnNames are the header labels geonames prints on the "#ISO" comment line.
var columnNames = [numColumns]string{
	"ISO", "ISO3", "ISO-Numeric", "fips", "Country", "Capital", "Area(in sq km)",
	"Population", "Continent", "tld", "CurrencyCode", "CurrencyName", "Phone",
	"Postal Code Format", "Postal Code Regex", "Languages", "geonameid",
	"neighbours", "EquivalentFipsCode",
}

func (c Column) String() string {
	if c >= 0 && c < numColumns {
		return columnNames[c]
	}
	return fmt.Sprintf("column(%d)", int(c))
}

// Info is the per-country subset the country list needs.
type Info struct {
	Capital   string
	Continent string
	TLD       string
	Languages string // comma separated, e.g. "fa-AF,ps,uz-AF,tk"
}

// record is one tab-split data line.
type record []string

func (r record) get(c Column) string { return r[c] }

// Parse reads countryInfo.txt and returns Info keyed by ISO alpha-2 code.
//
// Comment lines (leading '#') and blank lines are skipped. If the file carries
// the "#ISO" header comment it must match the column schema. A duplicate
// alpha-2 key or a line that stops before the Languages column is an integrity
// error.
func Parse(r io.Reader) (map[string]Info, error) {
	out := make(map[string]Info)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		t := strings.TrimRight(scanner.Text(), "\r")
		if len(t) == 0 {
			continue
		}
		if t[0] == '#' {
			if strings.HasPrefix(t, "#ISO\t") {
				if err := checkHeader(strings.Split(t[1:], "\t")); err != nil {
					return nil, err
				}
			}
			continue
		}

		rec := record(strings.Split(t, "\t"))
		if len(rec) < minFields {
			return nil, fmt.Errorf("%w: country info line %d has %d fields, want at least %d",
				sentinel.ErrIntegrity, lineNo, len(rec), minFields)
		}

		iso := rec.get(ColISO)
		if _, dup := out[iso]; dup {
			return nil, fmt.Errorf("%w: duplicate country info for %q (line %d)", sentinel.ErrIntegrity, iso, lineNo)
		}
		out[iso] = Info{
			Capital:   rec.get(ColCapital),
			Continent: rec.get(ColContinent),
			TLD:       rec.get(ColTLD),
			Languages: rec.get(ColLanguages),
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read country info: %w", err)
	}
	return out, nil
}

func checkHeader(fields []string) error {
	if len(fields) < int(numColumns) {
		return fmt.Errorf("%w: country info header has %d columns, want %d",
			sentinel.ErrIntegrity, len(fields), numColumns)
	}
	for c := Column(0); c < numColumns; c++ {
		if strings.TrimSpace(fields[c]) != columnNames[c] {
			return fmt.Errorf("%w: country info column %d is %q, want %q",
				sentinel.ErrIntegrity, int(c), fields[c], columnNames[c])
		}
	}
	return nil
}
