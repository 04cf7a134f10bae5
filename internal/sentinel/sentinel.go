package sentinel

import "errors"

// Sentinel errors for the three failure classes of a build. Parsers, the joiner
// and the fetcher wrap these with context; callers match them with errors.Is.
//
// - ErrIntegrity: a source violates its own shape (row count, duplicate key, short row)
// - ErrLookup: a join key is absent from one of the auxiliary tables
// - ErrFetch: an upstream resource answered with something other than 200
//
// Network and filesystem errors are propagated as-is.
var (
	ErrIntegrity = errors.New("data integrity")
	ErrLookup    = errors.New("lookup")
	ErrFetch     = errors.New("fetch")
)
