package edba

import (
	"errors"
	"fmt"

	"github.com/caohanyu/edba/backend"
)

// Error kinds re-exported from the backend package so callers never need
// to import edba/backend just to check an error with errors.Is.
var (
	ErrBadValueCast          = backend.ErrBadValueCast
	ErrNullValueFetch        = backend.ErrNullValueFetch
	ErrEmptyRowAccess        = backend.ErrEmptyRowAccess
	ErrInvalidColumn         = backend.ErrInvalidColumn
	ErrInvalidPlaceholder    = backend.ErrInvalidPlaceholder
	ErrNotSupportedByBackend = backend.ErrNotSupportedByBackend
)

// Frontend-only error kinds (spec §7).
var (
	ErrMultipleRowsQuery       = errors.New("edba: first_row matched more than one row")
	ErrMultipleRowsetTraverse  = errors.New("edba: rowset iterated more than once")
	ErrEmptyStringQuery        = errors.New("edba: attempted to execute an empty SQL string")
	ErrInvalidConnectionString = errors.New("edba: invalid connection string")
	ErrSQLVariantNotFound      = errors.New("edba: dialect selector found no matching variant")
	ErrPoolExhausted           = errors.New("edba: connection pool exhausted")
	ErrPoolClosed              = errors.New("edba: connection pool is closed")
	ErrResultSetMismatch       = errors.New("edba: statement returned a result set where none was expected, or none where one was expected")
)

// EdbaError wraps a backend-reported failure with the "edba" prefix
// spec §7 describes for the edba_error catch-all kind.
type EdbaError struct {
	Op    string // "exec on query", "query on statement", ...
	Cause error
}

func (e *EdbaError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("edba: %s: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("edba: %v", e.Cause)
}

func (e *EdbaError) Unwrap() error { return e.Cause }

func wrapBackendErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &EdbaError{Op: op, Cause: err}
}
