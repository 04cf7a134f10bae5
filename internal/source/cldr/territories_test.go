package cldr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const territoriesJSON = `{
  "main": {
    "en": {
      "identity": {"language": "en"},
      "localeDisplayNames": {
        "territories": {
          "001": "world",
          "142": "Asia",
          "150": "Europe",
          "AF": "Afghanistan",
          "AX": "Åland Islands",
          "AQ": "Antarctica",
          "GB-alt-short": "UK"
        }
      }
    }
  }
}`

func TestParse(t *testing.T) {
	names, err := Parse(strings.NewReader(territoriesJSON))
	require.NoError(t, err)

	assert.Len(t, names, 7)
	assert.Equal(t, "Åland Islands", names["AX"])
	assert.Equal(t, "UK", names["GB-alt-short"])

	name, ok := names.Name("142")
	assert.True(t, ok)
	assert.Equal(t, "Asia", name)

	_, ok = names.Name("ZZ")
	assert.False(t, ok)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		locale  string
		wantErr string
	}{
		{
			name:    "invalid json",
			input:   `{"main":`,
			locale:  "en",
			wantErr: "invalid json",
		},
		{
			name:    "missing locale",
			input:   territoriesJSON,
			locale:  "fr",
			wantErr: "missing key",
		},
		{
			name:    "missing territories",
			input:   `{"main":{"en":{"localeDisplayNames":{}}}}`,
			locale:  "en",
			wantErr: "missing key",
		},
		{
			name:    "territories not an object",
			input:   `{"main":{"en":{"localeDisplayNames":{"territories":["AF"]}}}}`,
			locale:  "en",
			wantErr: "want object",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLocale(strings.NewReader(tt.input), tt.locale)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
