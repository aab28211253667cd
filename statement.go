package edba

import (
	"context"
	"time"

	"github.com/caohanyu/edba/backend"
)

// Statement is the frontend facade over a compiled backend.Statement
// (spec §4.4): bind by position or by name, run for effect or for rows,
// and recover exec metadata. An auto-bind cursor, starting at 1, serves
// Bind calls that omit an explicit position, mirroring the original's
// "bind(value)" overload.
type Statement struct {
	session *Session
	names   *backend.NameBinder
	raw     backend.Statement
	sql     string
	cursor  int // next auto position for Bind(v)
}

func newStatement(session *Session, raw backend.Statement, sql string, names *backend.NameBinder) *Statement {
	return &Statement{session: session, raw: raw, sql: sql, names: names, cursor: 1}
}

// BindAt binds v to the 1-based positional placeholder pos.
func (s *Statement) BindAt(pos int, v interface{}) error {
	bv, err := toBindValue(v)
	if err != nil {
		return err
	}
	if err := s.raw.Bind(pos, bv); err != nil {
		return wrapBackendErr("statement.bind", err)
	}
	if pos >= s.cursor {
		s.cursor = pos + 1
	}
	return nil
}

// BindName binds v to every occurrence of the named placeholder.
func (s *Statement) BindName(name string, v interface{}) error {
	if s.names == nil {
		return ErrInvalidPlaceholder
	}
	positions, err := s.names.IndicesFor(name)
	if err != nil {
		return err
	}
	bv, err := toBindValue(v)
	if err != nil {
		return err
	}
	for _, pos := range positions {
		if err := s.raw.Bind(pos, bv); err != nil {
			return wrapBackendErr("statement.bind", err)
		}
	}
	return nil
}

// Bind binds v at the auto-bind cursor — the auto-incrementing
// "bind(value)" overload. The cursor starts at 1 and moves to one past
// the highest position bound so far, so positions skipped by an earlier
// BindAt are not filled.
func (s *Statement) Bind(v interface{}) error {
	err := s.BindAt(s.cursor, v)
	return err
}

// Reset clears bound values and the auto-bind cursor, preserving the
// compiled form for reuse.
func (s *Statement) Reset() {
	s.raw.Reset()
	s.cursor = 1
}

// Exec runs the statement for effect. Per spec §4.4, a backend that
// returns a result set here (i.e. the caller should have called Query
// instead) is an edba_error "exec on query", not a silent success.
func (s *Statement) Exec(ctx context.Context) (*ExecResult, error) {
	start := time.Now()
	res, err := s.raw.Exec(ctx)
	s.session.addExecSeconds(time.Since(start).Seconds())
	if err != nil {
		return nil, wrapBackendErr("statement.exec", err)
	}
	defer res.Close()

	if res.ColumnCount() > 0 {
		return nil, wrapBackendErr("exec on query", ErrResultSetMismatch)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, wrapBackendErr("statement.rows_affected", err)
	}
	lastID, idErr := res.LastInsertID()
	return &ExecResult{affected: affected, lastInsertID: lastID, hasLastInsertID: idErr == nil}, nil
}

// Query runs the statement and returns a one-shot rowset of Row handles.
// Per spec §4.4, a backend that returns no result set here (i.e. the
// caller should have called Exec instead) is an edba_error
// "query on statement", not an empty rowset.
func (s *Statement) Query(ctx context.Context) (*Rowset[Row], error) {
	start := time.Now()
	res, err := s.raw.Query(ctx)
	s.session.addExecSeconds(time.Since(start).Seconds())
	if err != nil {
		return nil, wrapBackendErr("statement.query", err)
	}
	if res.ColumnCount() == 0 {
		res.Close()
		return nil, wrapBackendErr("query on statement", ErrResultSetMismatch)
	}
	return newRowset[Row](ctx, newRow(res)), nil
}

// QueryInto runs the statement and returns a one-shot rowset decomposing
// each row into a T, per spec §4.3's struct-tuple extension point.
func QueryInto[T any](ctx context.Context, s *Statement) (*Rowset[T], error) {
	start := time.Now()
	res, err := s.raw.Query(ctx)
	s.session.addExecSeconds(time.Since(start).Seconds())
	if err != nil {
		return nil, wrapBackendErr("statement.query", err)
	}
	if res.ColumnCount() == 0 {
		res.Close()
		return nil, wrapBackendErr("query on statement", ErrResultSetMismatch)
	}
	return newRowset[T](ctx, newRow(res)), nil
}

// FirstRow runs the query and returns its single row, failing with
// ErrEmptyRowAccess if there were none and ErrMultipleRowsQuery if there
// was more than one — the "exactly one" convenience from spec §4.4.
func (s *Statement) FirstRow(ctx context.Context) (*Row, error) {
	rs, err := s.Query(ctx)
	if err != nil {
		return nil, err
	}
	it, err := rs.Iterate()
	if err != nil {
		return nil, err
	}
	if !it.Next() {
		if err := it.Err(); err != nil {
			return nil, err
		}
		return nil, ErrEmptyRowAccess
	}
	row := it.Value()
	if it.Next() {
		return nil, ErrMultipleRowsQuery
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return &row, nil
}

// SequenceLast returns the current value of a named sequence, for
// engines (PostgreSQL, Oracle) that expose them instead of a single
// last-insert-id. An empty sequence name falls back to the session's
// "@sequence_last" connection-string default. Returns
// ErrNotSupportedByBackend if the connection doesn't implement
// backend.SequenceProvider.
func (s *Statement) SequenceLast(ctx context.Context, sequence string) (int64, error) {
	if sequence == "" {
		sequence = s.session.defaultSequence
	}
	sp, ok := s.session.conn.(backend.SequenceProvider)
	if !ok {
		return 0, ErrNotSupportedByBackend
	}
	v, err := sp.SequenceLast(ctx, sequence)
	if err != nil {
		return 0, wrapBackendErr("statement.sequence_last", err)
	}
	return v, nil
}

// Close releases the statement's backend resources.
func (s *Statement) Close() error { return s.raw.Close() }

// ExecResult carries the exec-only metadata from spec §4.4: affected row
// count, and the last insert id when the backend supports it.
type ExecResult struct {
	affected        uint64
	lastInsertID    int64
	hasLastInsertID bool
}

// Affected returns the number of rows the statement touched.
func (r *ExecResult) Affected() uint64 { return r.affected }

// LastInsertID returns the backend-assigned id from the most recent
// insert, or ErrNotSupportedByBackend if the backend doesn't expose one
// (e.g. multi-column sequences, or engines requiring an explicit
// sequence name — see Statement.SequenceLast).
func (r *ExecResult) LastInsertID() (int64, error) {
	if !r.hasLastInsertID {
		return 0, ErrNotSupportedByBackend
	}
	return r.lastInsertID, nil
}
