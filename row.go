package edba

import (
	"context"

	"github.com/caohanyu/edba/backend"
)

// Row is a materialized view over the current result row (spec §3).
// Column indices are 0-based. Fetch returns false (not an error) for a
// SQL NULL column and leaves dest unchanged; Get raises
// ErrNullValueFetch instead, for callers who want NULL treated as
// exceptional.
type Row struct {
	result  backend.Result
	valid   bool // true once next() has advanced onto a real row
	cursor  int  // auto-incrementing column index used by FetchNext
	byName  map[string]int
}

func newRow(result backend.Result) *Row {
	return &Row{result: result}
}

// Next advances to the next row, resetting the auto-column cursor.
// Returns false when the cursor is exhausted.
func (r *Row) Next(ctx context.Context) (bool, error) {
	ok, err := r.result.Next(ctx)
	if err != nil {
		return false, wrapBackendErr("row.next", err)
	}
	r.valid = ok
	r.cursor = 0
	return ok, nil
}

// ColumnCount returns the number of columns in the result.
func (r *Row) ColumnCount() int { return r.result.ColumnCount() }

// ColumnIndex converts a column name to its 0-based index, returning
// ErrInvalidColumn if no such column exists.
func (r *Row) ColumnIndex(name string) (int, error) {
	if r.byName == nil {
		r.byName = make(map[string]int, r.result.ColumnCount())
		for i := 0; i < r.result.ColumnCount(); i++ {
			n, err := r.result.ColumnName(i)
			if err != nil {
				return 0, wrapBackendErr("row.column_name", err)
			}
			r.byName[n] = i
		}
	}
	idx, ok := r.byName[name]
	if !ok {
		return 0, ErrInvalidColumn
	}
	return idx, nil
}

// RewindColumn resets the auto-incrementing column cursor used by
// FetchNext.
func (r *Row) RewindColumn() { r.cursor = 0 }

// Fetch reads column col (0-based) into dest, returning false without
// touching dest if the column is SQL NULL. If dest implements
// FetchConverter, conversion (including its own null handling) is
// delegated to it.
func (r *Row) Fetch(col int, dest interface{}) (bool, error) {
	if !r.valid {
		return false, ErrEmptyRowAccess
	}
	if col < 0 || col >= r.result.ColumnCount() {
		return false, ErrInvalidColumn
	}

	if fc, ok := dest.(FetchConverter); ok {
		if err := fc.FetchConvert(r, col); err != nil {
			return false, err
		}
		isNull, err := r.result.IsNull(col)
		if err != nil {
			return false, wrapBackendErr("row.is_null", err)
		}
		return !isNull, nil
	}

	isNull, err := r.result.IsNull(col)
	if err != nil {
		return false, wrapBackendErr("row.is_null", err)
	}
	if isNull {
		return false, nil
	}
	if err := r.result.Fetch(col, dest); err != nil {
		return false, wrapBackendErr("row.fetch", err)
	}
	return true, nil
}

// FetchName is Fetch by column name instead of index.
func (r *Row) FetchName(name string, dest interface{}) (bool, error) {
	idx, err := r.ColumnIndex(name)
	if err != nil {
		return false, err
	}
	return r.Fetch(idx, dest)
}

// FetchNext fetches the next column using the auto-incrementing cursor,
// advancing it regardless of outcome.
func (r *Row) FetchNext(dest interface{}) (bool, error) {
	ok, err := r.Fetch(r.cursor, dest)
	r.cursor++
	return ok, err
}

// Get is like Fetch but raises ErrNullValueFetch instead of returning
// false for a NULL column — the "get" helper from spec §7.
func (r *Row) Get(col int, dest interface{}) error {
	ok, err := r.Fetch(col, dest)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNullValueFetch
	}
	return nil
}

// Into destructures the current row into named destinations regardless
// of column order — the dynamic "first_row >> into(...)" scenario from
// spec §8. Each key must name a column present in the result.
func (r *Row) Into(dests map[string]interface{}) error {
	for name, dest := range dests {
		if _, err := r.FetchName(name, dest); err != nil {
			return err
		}
	}
	return nil
}
