// Package backend declares the capability set every edba engine adapter
// must satisfy: Connection, Statement and Result. It also carries the
// utilities an adapter author needs to implement that contract — the
// bind-by-name helper and the statement-statistics wrapper — so adapters
// never have to reimplement SQL placeholder rewriting or timing.
package backend

import "errors"

// Sentinel errors shared between the backend contract and the edba
// frontend. They live here (the lowest-level package in the module) so
// both layers can check them with errors.Is without an import cycle; the
// edba package re-exports them under its own names for callers who never
// import backend directly.
var (
	// ErrBadValueCast is returned when a fetched database value cannot be
	// represented by the requested destination type.
	ErrBadValueCast = errors.New("edba: value cannot be converted to requested type")

	// ErrNullValueFetch is returned by the get-style helpers (not Fetch)
	// when the column held SQL NULL.
	ErrNullValueFetch = errors.New("edba: attempt to fetch null column")

	// ErrEmptyRowAccess is returned when a row is read before the first
	// advance, or after the cursor has been exhausted.
	ErrEmptyRowAccess = errors.New("edba: attempt to access row before next() or past last row")

	// ErrInvalidColumn is returned for an out-of-range column index or an
	// unknown column name.
	ErrInvalidColumn = errors.New("edba: invalid column index or name")

	// ErrInvalidPlaceholder is returned for an unknown bind position or name.
	ErrInvalidPlaceholder = errors.New("edba: invalid bind placeholder")

	// ErrNotSupportedByBackend is returned when the active adapter does not
	// implement an optional capability (sequences, escape(), ...).
	ErrNotSupportedByBackend = errors.New("edba: operation not supported by backend")
)
