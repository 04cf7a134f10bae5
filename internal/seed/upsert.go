package seed

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/albapepper/countrydata/internal/country"
	"github.com/albapepper/countrydata/internal/db"
)

// DB is the subset of *pgxpool.Pool the loader uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS ` + db.CountriesTable + ` (
	alpha2          TEXT PRIMARY KEY,
	alpha3          TEXT NOT NULL,
	numeric_code    TEXT NOT NULL,
	iso_name        TEXT NOT NULL,
	name            TEXT NOT NULL,
	languages       TEXT[] NOT NULL DEFAULT '{}',
	tld             TEXT,
	capital         TEXT,
	region_code     TEXT,
	sub_region_code TEXT,
	position        INTEGER NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS ` + db.RegionsTable + ` (
	code       TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	countries  TEXT[] NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const upsertCountrySQL = `
INSERT INTO ` + db.CountriesTable + ` (
	alpha2, alpha3, numeric_code, iso_name, name, languages,
	tld, capital, region_code, sub_region_code, position
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (alpha2) DO UPDATE SET
	alpha3 = EXCLUDED.alpha3,
	numeric_code = EXCLUDED.numeric_code,
	iso_name = EXCLUDED.iso_name,
	name = EXCLUDED.name,
	languages = EXCLUDED.languages,
	tld = EXCLUDED.tld,
	capital = EXCLUDED.capital,
	region_code = EXCLUDED.region_code,
	sub_region_code = EXCLUDED.sub_region_code,
	position = EXCLUDED.position,
	updated_at = NOW()`

const upsertRegionSQL = `
INSERT INTO ` + db.RegionsTable + ` (code, name, countries)
VALUES ($1,$2,$3)
ON CONFLICT (code) DO UPDATE SET
	name = EXCLUDED.name,
	countries = EXCLUDED.countries,
	updated_at = NOW()`

// EnsureSchema creates the countries and regions tables if they are absent.
func EnsureSchema(ctx context.Context, conn DB) error {
	if _, err := conn.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// UpsertCountries writes every record in one batch. position keeps the
// published list order.
func UpsertCountries(ctx context.Context, conn DB, records []country.Record) Result {
	batch := &pgx.Batch{}
	for i, rec := range records {
		batch.Queue(upsertCountrySQL,
			rec.Alpha2, rec.Alpha3, rec.Numeric, rec.ISOName, rec.Name, rec.Languages,
			nilEmpty(rec.TLD), nilEmpty(rec.Capital), nilEmpty(rec.RegionCode),
			nilEmpty(rec.SubRegionCode), i,
		)
	}

	var result Result
	keys := make([]string, len(records))
	for i, rec := range records {
		keys[i] = rec.Alpha2
	}
	result.CountriesUpserted = drain(ctx, conn, batch, keys, "country", &result)
	return result
}

// UpsertRegions writes every region group in one batch, in code order.
func UpsertRegions(ctx context.Context, conn DB, regions map[string]country.RegionGroup) Result {
	codes := make([]string, 0, len(regions))
	for code := range regions {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	batch := &pgx.Batch{}
	for _, code := range codes {
		g := regions[code]
		batch.Queue(upsertRegionSQL, code, g.Name, g.Countries)
	}

	var result Result
	result.RegionsUpserted = drain(ctx, conn, batch, codes, "region", &result)
	return result
}

// Load ensures the schema and upserts countries then regions.
func Load(ctx context.Context, conn DB, records []country.Record, regions map[string]country.RegionGroup, logger *slog.Logger) Result {
	if logger == nil {
		logger = slog.Default()
	}
	var result Result

	if err := EnsureSchema(ctx, conn); err != nil {
		result.AddErrorf("%v", err)
		return result
	}

	logger.Info("Loading countries...", "count", len(records))
	result.Add(UpsertCountries(ctx, conn, records))
	logger.Info("Countries done", "count", result.CountriesUpserted)

	logger.Info("Loading regions...", "count", len(regions))
	result.Add(UpsertRegions(ctx, conn, regions))
	logger.Info("Regions done", "count", result.RegionsUpserted)

	return result
}

// drain sends the batch and reads one result per queued statement. The batch
// runs as one implicit transaction, so the first failure ends it.
func drain(ctx context.Context, conn DB, batch *pgx.Batch, keys []string, kind string, result *Result) int {
	if batch.Len() == 0 {
		return 0
	}
	br := conn.SendBatch(ctx, batch)
	defer br.Close()

	ok := 0
	for _, key := range keys {
		if _, err := br.Exec(); err != nil {
			result.AddErrorf("upsert %s %s: %v", kind, key, err)
			return 0
		}
		ok++
	}
	return ok
}

func nilEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
