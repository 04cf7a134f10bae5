// Package m49 parses the UN M49 standard country or area codes table
// ("overview" CSV export from unstats.un.org).
package m49

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/albapepper/countrydata/internal/sentinel"
)

// Column schema of the M49 overview export. Offsets match the upstream
// file; only the ones the region grouping needs are read.
const (
	ColGlobalCode             = 0
	ColGlobalName             = 1
	ColRegionCode             = 2
	ColRegionName             = 3
	ColSubRegionCode          = 4
	ColSubRegionName          = 5
	ColIntermediateRegionCode = 6
	ColIntermediateRegionName = 7
	ColCountryOrArea          = 8
	ColM49Code                = 9
	ColISOAlpha2              = 10
	ColISOAlpha3              = 11

	minColumns = ColISOAlpha3 + 1
)

// columnNames are the header labels of the columns up to ColISOAlpha3.
var columnNames = [minColumns]string{
	"Global Code", "Global Name", "Region Code", "Region Name",
	"Sub-region Code", "Sub-region Name", "Intermediate Region Code",
	"Intermediate Region Name", "Country or Area", "M49 Code",
	"ISO-alpha2 Code", "ISO-alpha3 Code",
}

// Region is the classification of one country or area.
type Region struct {
	RegionCode    string
	SubRegionCode string
}

// Override is an entry injected after parsing for a code the upstream table
// does not carry.
type Override struct {
	Alpha3 string
	Region Region
}

// DefaultOverride adds Taiwan, which M49 omits, under Asia / Eastern Asia.
var DefaultOverride = Override{
	Alpha3: "TWN",
	Region: Region{RegionCode: "142", SubRegionCode: "030"},
}

type options struct {
	delimiter rune
	override  Override
}

// Option configures Parse.
type Option func(*options)

// WithDelimiter sets the field separator. The UN site serves both ',' and ';'.
func WithDelimiter(d rune) Option {
	return func(o *options) {
		o.delimiter = d
	}
}

// WithOverride replaces the injected entry.
func WithOverride(ov Override) Option {
	return func(o *options) {
		o.override = ov
	}
}

// Parse reads the table and returns regions keyed by ISO alpha-3 code. The
// header row must match the column schema. A duplicate alpha-3 code is an integrity error. The
// override entry is always set last, replacing any parsed value.
func Parse(r io.Reader, opts ...Option) (map[string]Region, error) {
	o := options{delimiter: ',', override: DefaultOverride}
	for _, opt := range opts {
		opt(&o)
	}

	reader := csv.NewReader(r)
	reader.Comma = o.delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: m49 table is empty", sentinel.ErrIntegrity)
		}
		return nil, fmt.Errorf("read m49 header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	out := make(map[string]Region)
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read m49 row: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if len(rec) < minColumns {
			return nil, fmt.Errorf("%w: m49 line %d has %d fields, want at least %d",
				sentinel.ErrIntegrity, line, len(rec), minColumns)
		}

		alpha3 := strings.TrimSpace(rec[ColISOAlpha3])
		if _, dup := out[alpha3]; dup {
			return nil, fmt.Errorf("%w: duplicate m49 entry for %q (line %d)", sentinel.ErrIntegrity, alpha3, line)
		}
		out[alpha3] = Region{
			RegionCode:    strings.TrimSpace(rec[ColRegionCode]),
			SubRegionCode: strings.TrimSpace(rec[ColSubRegionCode]),
		}
	}

	out[o.override.Alpha3] = o.override.Region
	return out, nil
}

// checkHeader compares labels case-insensitively; the export may start with a
// UTF-8 byte order mark.
func checkHeader(fields []string) error {
	if len(fields) < minColumns {
		return fmt.Errorf("%w: m49 header has %d columns, want at least %d",
			sentinel.ErrIntegrity, len(fields), minColumns)
	}
	for i, want := range columnNames {
		got := strings.TrimSpace(strings.TrimPrefix(fields[i], "\ufeff"))
		if !strings.EqualFold(got, want) {
			return fmt.Errorf("%w: m49 column %d is %q, want %q", sentinel.ErrIntegrity, i, got, want)
		}
	}
	return nil
}
