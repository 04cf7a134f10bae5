package iso3166

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/countrydata/internal/sentinel"
)

// page wraps rows in a document shaped like the Wikipedia article: a decoy
// table first, then the code table with a header row and extra columns.
func page(rows ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body>
<table class="wikitable"><tr><th>Something else</th></tr><tr><td>a</td><td>b</td><td>c</td><td>d</td></tr></table>
<table class="wikitable sortable">
<tr><th>English short name (upper/lower case)</th><th>Alpha-2 code</th><th>Alpha-3 code</th><th>Numeric code</th><th>Link to ISO 3166-2</th><th>Independent</th></tr>
`)
	for _, r := range rows {
		b.WriteString(r)
		b.WriteString("\n")
	}
	b.WriteString("</table></body></html>")
	return b.String()
}

func row(name, a2, a3, num string) string {
	return fmt.Sprintf(`<tr><td><span class="flagicon"></span><a href="/wiki/%s">%s</a></td><td><span>%s</span></td><td>%s</td><td>%s</td><td><a>ISO 3166-2:%s</a></td><td>Yes</td></tr>`,
		name, name, a2, a3, num, a2)
}

func TestParseThreeRows(t *testing.T) {
	doc := page(
		row("Afghanistan", "AF", "AFG", "004"),
		row("Åland Islands", "AX", "ALA", "248"),
		row("Antarctica", "AQ", "ATA", "010"),
	)

	rows, err := Parse(strings.NewReader(doc), 3)
	require.NoError(t, err)

	assert.Equal(t, []Row{
		{Name: "Afghanistan", Alpha2: "AF", Alpha3: "AFG", Numeric: "004"},
		{Name: "Åland Islands", Alpha2: "AX", Alpha3: "ALA", Numeric: "248"},
		{Name: "Antarctica", Alpha2: "AQ", Alpha3: "ATA", Numeric: "010"},
	}, rows)
}

func TestParseExpectedCount(t *testing.T) {
	rows := make([]string, 0, 249)
	for i := 0; i < 249; i++ {
		rows = append(rows, row(fmt.Sprintf("Country %d", i), fmt.Sprintf("C%d", i), fmt.Sprintf("C%02d", i), fmt.Sprintf("%03d", i)))
	}

	got, err := Parse(strings.NewReader(page(rows...)), 249)
	require.NoError(t, err)
	require.Len(t, got, 249)
	assert.Equal(t, Row{Name: "Country 248", Alpha2: "C248", Alpha3: "C248", Numeric: "248"}, got[248])
}

func TestParseCountMismatch(t *testing.T) {
	doc := page(
		row("Afghanistan", "AF", "AFG", "004"),
		row("Åland Islands", "AX", "ALA", "248"),
	)

	_, err := Parse(strings.NewReader(doc), 249)
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrIntegrity)
	assert.Contains(t, err.Error(), "2 != expected 249")
}

func TestParseNoMatchingTable(t *testing.T) {
	doc := `<table><tr><th>English short name</th></tr><tr><td>x</td><td>y</td><td>z</td><td>w</td></tr></table>`

	_, err := Parse(strings.NewReader(doc), 1)
	assert.ErrorIs(t, err, sentinel.ErrIntegrity)
}

func TestParseShortRow(t *testing.T) {
	doc := page(`<tr><td>Nowhere</td><td>NW</td></tr>`)

	_, err := Parse(strings.NewReader(doc), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrIntegrity)
	assert.Contains(t, err.Error(), "2 cells")
}

func TestParseIgnoresNestedTables(t *testing.T) {
	nested := `<tr><td>Afghanistan<table><tr><td>1</td><td>2</td><td>3</td><td>4</td></tr></table></td><td>AF</td><td>AFG</td><td>004</td></tr>`

	rows, err := Parse(strings.NewReader(page(nested)), 1)
	require.NoError(t, err)
	assert.Equal(t, "AF", rows[0].Alpha2)
}
