// Package seed loads a built dataset into Postgres.
package seed

import "fmt"

// Result tracks counts and errors from a load.
type Result struct {
	CountriesUpserted int
	RegionsUpserted   int
	Errors            []string
}

// Add merges another Result into this one.
func (r *Result) Add(other Result) {
	r.CountriesUpserted += other.CountriesUpserted
	r.RegionsUpserted += other.RegionsUpserted
	r.Errors = append(r.Errors, other.Errors...)
}

// AddErrorf records a formatted error message.
func (r *Result) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the load.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"countries=%d regions=%d errors=%d",
		r.CountriesUpserted, r.RegionsUpserted, len(r.Errors),
	)
}
