package edba

import "context"

// Rowset is a one-shot forward range over a query's results (spec §4.5).
// Dereferencing the iterator for T != Row invokes fetchInto, which
// decomposes each row into a T; Rowset[Row] instead yields the same Row
// handle advanced in place, so copies taken mid-iteration go stale on
// the next advance rather than snapshotting.
type Rowset[T any] struct {
	ctx     context.Context
	row     *Row
	started bool
	err     error
}

func newRowset[T any](ctx context.Context, row *Row) *Rowset[T] {
	return &Rowset[T]{ctx: ctx, row: row}
}

// RowsetIterator is the live cursor produced by Rowset.Iterate.
type RowsetIterator[T any] struct {
	rs  *Rowset[T]
	cur T
}

// Iterate begins traversal, returning an iterator positioned before the
// first row. Calling Iterate a second time on the same Rowset raises
// ErrMultipleRowsetTraverse — the one-shot constraint from spec §4.5.
func (rs *Rowset[T]) Iterate() (*RowsetIterator[T], error) {
	if rs.started {
		return nil, ErrMultipleRowsetTraverse
	}
	rs.started = true
	return &RowsetIterator[T]{rs: rs}, nil
}

// Next advances to the next row and fetches it into the iterator's
// current value, returning false at end-of-rowset or on error; check
// Err to distinguish the two.
func (it *RowsetIterator[T]) Next() bool {
	ok, err := it.rs.row.Next(it.rs.ctx)
	if err != nil {
		it.rs.err = err
		return false
	}
	if !ok {
		return false
	}
	var v T
	if err := fetchInto(it.rs.row, &v); err != nil {
		it.rs.err = err
		return false
	}
	it.cur = v
	return true
}

// Value returns the value populated by the most recent successful Next.
func (it *RowsetIterator[T]) Value() T { return it.cur }

// Err returns the error, if any, that ended traversal.
func (it *RowsetIterator[T]) Err() error { return it.rs.err }

// Each drives the rowset to completion, invoking fn for every row. It is
// a convenience wrapper over Iterate for callers who don't need to hold
// the iterator themselves; it shares the same one-shot guard.
func (rs *Rowset[T]) Each(fn func(T) error) error {
	it, err := rs.Iterate()
	if err != nil {
		return err
	}
	for it.Next() {
		if err := fn(it.Value()); err != nil {
			return err
		}
	}
	return it.Err()
}

// All drains the rowset into a slice. Like Each, it consumes the
// one-shot traversal.
func (rs *Rowset[T]) All() ([]T, error) {
	var out []T
	err := rs.Each(func(v T) error {
		out = append(out, v)
		return nil
	})
	return out, err
}
