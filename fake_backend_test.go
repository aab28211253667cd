package edba

import (
	"context"

	"github.com/caohanyu/edba/backend"
)

// fakeResult is an in-memory backend.Result over a fixed table, used by
// frontend tests that don't need a live engine.
type fakeResult struct {
	columns []string
	rows    [][]interface{} // nil entry means SQL NULL
	cursor  int

	affected     uint64
	lastInsertID int64
}

func (r *fakeResult) Next(context.Context) (bool, error) {
	if r.cursor >= len(r.rows) {
		return false, nil
	}
	r.cursor++
	return true, nil
}

func (r *fakeResult) ColumnCount() int { return len(r.columns) }

func (r *fakeResult) ColumnName(col int) (string, error) {
	if col < 0 || col >= len(r.columns) {
		return "", backend.ErrInvalidColumn
	}
	return r.columns[col], nil
}

func (r *fakeResult) current() []interface{} {
	return r.rows[r.cursor-1]
}

func (r *fakeResult) IsNull(col int) (bool, error) {
	if col < 0 || col >= len(r.columns) {
		return false, backend.ErrInvalidColumn
	}
	return r.current()[col] == nil, nil
}

func (r *fakeResult) Fetch(col int, dest interface{}) error {
	v := r.current()[col]
	switch d := dest.(type) {
	case *string:
		*d = v.(string)
	case *int64:
		*d = v.(int64)
	case *float64:
		*d = v.(float64)
	default:
		return backend.ErrBadValueCast
	}
	return nil
}

func (r *fakeResult) RowsAffected() (uint64, error) { return r.affected, nil }
func (r *fakeResult) LastInsertID() (int64, error)  { return r.lastInsertID, nil }
func (r *fakeResult) Close() error                  { return nil }

// fakeStatement always returns the same *fakeResult from both Exec and
// Query (tests populate whichever fields matter) and records every Bind
// call for assertions.
type fakeStatement struct {
	result *fakeResult
	bound  map[int]backend.BindValue
	closed bool
}

func newFakeStatement(result *fakeResult) *fakeStatement {
	return &fakeStatement{result: result, bound: make(map[int]backend.BindValue)}
}

func (s *fakeStatement) Bind(pos int, v backend.BindValue) error {
	s.bound[pos] = v
	return nil
}

func (s *fakeStatement) Exec(context.Context) (backend.Result, error) {
	s.result.cursor = 0
	return s.result, nil
}

func (s *fakeStatement) Query(context.Context) (backend.Result, error) {
	s.result.cursor = 0
	return s.result, nil
}

func (s *fakeStatement) Reset() { s.bound = make(map[int]backend.BindValue) }
func (s *fakeStatement) Close() error {
	s.closed = true
	return nil
}

// fakeConnection is a minimal backend.Connection over a single canned
// fakeStatement, enough to drive Session/Statement/Row through their
// paces without a live engine.
type fakeConnection struct {
	engine      string
	backendName string
	major, minor int

	stmt *fakeStatement

	txActive bool
	commits  int
	rollback int

	specific interface{}
	closed   bool
}

func newFakeConnection(engine string, major, minor int, stmt *fakeStatement) *fakeConnection {
	return &fakeConnection{engine: engine, backendName: engine, major: major, minor: minor, stmt: stmt}
}

func (c *fakeConnection) PrepareStatement(context.Context, string) (backend.Statement, error) {
	return c.stmt, nil
}

func (c *fakeConnection) CreateStatement(context.Context, string) (backend.Statement, error) {
	return c.stmt, nil
}

func (c *fakeConnection) ExecBatch(context.Context, string) error { return nil }

func (c *fakeConnection) Begin(context.Context) error {
	c.txActive = true
	return nil
}

func (c *fakeConnection) Commit(context.Context) error {
	c.txActive = false
	c.commits++
	return nil
}

func (c *fakeConnection) Rollback(context.Context) error {
	c.txActive = false
	c.rollback++
	return nil
}

func (c *fakeConnection) Escape(text string) (string, error) { return "'" + text + "'", nil }

func (c *fakeConnection) Engine() string      { return c.engine }
func (c *fakeConnection) BackendName() string { return c.backendName }
func (c *fakeConnection) Version() (int, int) { return c.major, c.minor }
func (c *fakeConnection) Description() string { return c.engine + " fake" }

func (c *fakeConnection) SetSpecific(v interface{}) { c.specific = v }
func (c *fakeConnection) Specific() interface{}     { return c.specific }

func (c *fakeConnection) Close() error {
	c.closed = true
	return nil
}
