// Package config provides centralized configuration loaded from environment
// variables. Every value the fetcher, parsers and writer need lives here so
// those packages stay free of globals.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Resource registry
// --------------------------------------------------------------------------

// Resource identifies an upstream file and the name it is staged under.
type Resource struct {
	ID  string
	URL string
	Dst string
}

// StagedPath returns where the resource is staged under dir.
func (r Resource) StagedPath(dir, suffix string) string {
	return filepath.Join(dir, r.Dst+suffix)
}

const (
	ResourceTerritories = "cldr-territories"
	ResourceISO3166     = "wikipedia-iso3166"
	ResourceCountryInfo = "geonames-country-info"
)

const (
	DefaultLocale = "en"

	territoriesURLFormat = "https://raw.githubusercontent.com/unicode-cldr/cldr-localenames-full/master/main/%s/territories.json"
)

// TerritoriesURL returns the CLDR territories export for locale.
func TerritoriesURL(locale string) string {
	return fmt.Sprintf(territoriesURLFormat, locale)
}

// DefaultResources is the download list. Do not reorder, only append.
var DefaultResources = []Resource{
	{
		ID:  ResourceTerritories,
		URL: TerritoriesURL(DefaultLocale),
		Dst: "cldr-localenames-territories.json",
	},
	{
		ID:  ResourceISO3166,
		URL: "https://en.wikipedia.org/wiki/ISO_3166-1",
		Dst: "wikipedia-iso-3166.html",
	},
	{
		ID:  ResourceCountryInfo,
		URL: "http://download.geonames.org/export/dump/countryInfo.txt",
		Dst: "geonames-country-info.txt",
	},
}

// --------------------------------------------------------------------------
// Output and staging names
// --------------------------------------------------------------------------

const (
	TerritoryNamesFile = "territory-names.json"
	CountryListFile    = "country-list.json"
	RegionsFile        = "regions.json"

	DefaultStagingSuffix = ".tmp"
	DefaultISO3166Count  = 249
)

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Staging and outputs
	DataDir       string
	OutputDir     string
	StagingSuffix string
	Resources     []Resource

	TerritoryNamesFile string
	CountryListFile    string
	RegionsFile        string

	// Sources
	M49Path         string
	M49Delimiter    rune
	ISO3166Count    int
	TerritoryLocale string

	// HTTP
	HTTPTimeout       time.Duration
	RequestsPerMinute int

	// Behaviour toggles
	Force      bool
	Pretty     bool
	SortByName bool

	// Logging
	LogLevel slog.Level

	// Database (load command only)
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dataDir := envOr("COUNTRYDATA_DATA_DIR", "data")

	delim, err := envRune("COUNTRYDATA_M49_DELIMITER", ',')
	if err != nil {
		return nil, err
	}
	level, err := parseLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:       dataDir,
		OutputDir:     envOr("COUNTRYDATA_OUTPUT_DIR", dataDir),
		StagingSuffix: envOr("COUNTRYDATA_STAGING_SUFFIX", DefaultStagingSuffix),
		Resources:     append([]Resource(nil), DefaultResources...),

		TerritoryNamesFile: TerritoryNamesFile,
		CountryListFile:    CountryListFile,
		RegionsFile:        RegionsFile,

		M49Path:         envOr("COUNTRYDATA_M49_PATH", filepath.Join(dataDir, "un-m49.csv")),
		M49Delimiter:    delim,
		ISO3166Count:    envInt("COUNTRYDATA_ISO3166_COUNT", DefaultISO3166Count),
		TerritoryLocale: envOr("COUNTRYDATA_LOCALE", DefaultLocale),

		HTTPTimeout:       time.Duration(envInt("COUNTRYDATA_HTTP_TIMEOUT_SECONDS", 60)) * time.Second,
		RequestsPerMinute: envInt("COUNTRYDATA_REQUESTS_PER_MINUTE", 30),

		Pretty: envBool("COUNTRYDATA_PRETTY", false),

		LogLevel: level,

		DatabaseURL:    envOr("DATABASE_URL", ""),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 1),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 4),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,
	}

	if cfg.ISO3166Count <= 0 {
		return nil, fmt.Errorf("COUNTRYDATA_ISO3166_COUNT must be positive, got %d", cfg.ISO3166Count)
	}
	if !strings.HasPrefix(cfg.StagingSuffix, ".") {
		return nil, fmt.Errorf("COUNTRYDATA_STAGING_SUFFIX must start with '.', got %q", cfg.StagingSuffix)
	}

	// The download and the JSON path read from it must agree on the locale.
	for i := range cfg.Resources {
		if cfg.Resources[i].ID == ResourceTerritories {
			cfg.Resources[i].URL = TerritoriesURL(cfg.TerritoryLocale)
		}
	}
	return cfg, nil
}

// StagedPath returns where a resource is staged on disk.
func (c *Config) StagedPath(r Resource) string {
	return r.StagedPath(c.DataDir, c.StagingSuffix)
}

// OutputPaths returns the territory, country and region output paths.
func (c *Config) OutputPaths() (territories, countries, regions string) {
	return filepath.Join(c.OutputDir, c.TerritoryNamesFile),
		filepath.Join(c.OutputDir, c.CountryListFile),
		filepath.Join(c.OutputDir, c.RegionsFile)
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

// envRune reads a single-character value. "\t" and "tab" both mean a tab.
func envRune(key string, fallback rune) (rune, error) {
	v := os.Getenv(key)
	switch v {
	case "":
		return fallback, nil
	case `\t`, "tab":
		return '\t', nil
	}
	r := []rune(v)
	if len(r) != 1 {
		return 0, fmt.Errorf("%s must be a single character, got %q", key, v)
	}
	return r[0], nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}
