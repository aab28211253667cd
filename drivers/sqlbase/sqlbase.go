// Package sqlbase is the shared database/sql-backed implementation of
// the backend.Connection/Statement/Result contract. Every concrete
// driver in this tree (sqlite, mysql, postgres, mssql) is a thin Config
// over this package, the same shape queen's drivers/base package uses to
// share migration logic across its Postgres/MySQL/SQLite/ClickHouse
// drivers: one shared Driver type, customized per engine by a handful of
// strategy funcs rather than by duplicating the *sql.DB plumbing.
package sqlbase

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/caohanyu/edba/backend"
)

// Config holds the per-engine strategies a concrete driver supplies.
type Config struct {
	// Engine is the value reported by Connection.Engine(), used by
	// dialect selection ("mysql", "postgresql", "sqlite3", "odbc").
	Engine string

	// BackendName is a human-readable adapter name, e.g. "SQLite3 (mattn)".
	BackendName string

	// Placeholder renders the n-th (1-based) positional marker.
	Placeholder backend.PlaceholderFunc

	// EscapeString escapes a string literal for inline interpolation.
	// Nil means the engine offers no safe inline-escape and
	// Connection.Escape always returns ErrNotSupportedByBackend.
	EscapeString func(string) string

	// DetectVersion queries db for the server's (major, minor) version.
	// Called once, lazily, the first time Version is read.
	DetectVersion func(ctx context.Context, db *sql.DB) (major, minor int, err error)
}

// Connection adapts a *sql.DB into backend.Connection.
type Connection struct {
	db     *sql.DB
	cfg    Config
	descr  string
	mu     sync.Mutex
	tx     *sql.Tx
	verMu  sync.Once
	verMaj int
	verMin int

	specMu sync.Mutex
	spec   interface{}
}

// Open wraps an already-opened *sql.DB. Concrete drivers call this after
// running sql.Open with their own driver name and DSN.
func Open(db *sql.DB, cfg Config, description string) *Connection {
	return &Connection{db: db, cfg: cfg, descr: description}
}

func (c *Connection) PrepareStatement(ctx context.Context, query string) (backend.Statement, error) {
	stmt, err := c.activeExecutor().PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return newStatement(stmt, c), nil
}

func (c *Connection) CreateStatement(ctx context.Context, query string) (backend.Statement, error) {
	return c.PrepareStatement(ctx, query)
}

func (c *Connection) ExecBatch(ctx context.Context, query string) error {
	_, err := c.db.ExecContext(ctx, query)
	return err
}

func (c *Connection) Begin(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tx != nil {
		return fmt.Errorf("edba/sqlbase: transaction already in progress")
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	c.tx = tx
	return nil
}

func (c *Connection) Commit(ctx context.Context) error {
	c.mu.Lock()
	tx := c.tx
	c.tx = nil
	c.mu.Unlock()
	if tx == nil {
		return fmt.Errorf("edba/sqlbase: no transaction in progress")
	}
	return tx.Commit()
}

func (c *Connection) Rollback(ctx context.Context) error {
	c.mu.Lock()
	tx := c.tx
	c.tx = nil
	c.mu.Unlock()
	if tx == nil {
		return fmt.Errorf("edba/sqlbase: no transaction in progress")
	}
	return tx.Rollback()
}

func (c *Connection) Escape(text string) (string, error) {
	if c.cfg.EscapeString == nil {
		return "", backend.ErrNotSupportedByBackend
	}
	return c.cfg.EscapeString(text), nil
}

func (c *Connection) Engine() string      { return c.cfg.Engine }
func (c *Connection) BackendName() string { return c.cfg.BackendName }

func (c *Connection) Version() (major, minor int) {
	c.verMu.Do(func() {
		if c.cfg.DetectVersion == nil {
			return
		}
		maj, min, err := c.cfg.DetectVersion(context.Background(), c.db)
		if err == nil {
			c.verMaj, c.verMin = maj, min
		}
	})
	return c.verMaj, c.verMin
}

func (c *Connection) Description() string { return c.descr }

func (c *Connection) SetSpecific(v interface{}) {
	c.specMu.Lock()
	c.spec = v
	c.specMu.Unlock()
}

func (c *Connection) Specific() interface{} {
	c.specMu.Lock()
	defer c.specMu.Unlock()
	return c.spec
}

func (c *Connection) Close() error { return c.db.Close() }

// activeExecutor returns the in-progress transaction if one was begun,
// otherwise the pooled *sql.DB itself — mirroring gdb's Link indirection
// over "the thing context.Context queries currently run against".
func (c *Connection) activeExecutor() interface {
	PrepareContext(context.Context, string) (*sql.Stmt, error)
} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tx != nil {
		return c.tx
	}
	return c.db
}

type statement struct {
	stmt  *sql.Stmt
	conn  *Connection
	bound map[int]backend.BindValue
}

func newStatement(stmt *sql.Stmt, conn *Connection) *statement {
	return &statement{stmt: stmt, conn: conn, bound: make(map[int]backend.BindValue)}
}

// Bind records v as-is. The bind value is not converted to its
// database/sql-native form until args() runs at Exec/Query time, so a
// blob's io.Reader is not drained here — re-Bind-ing after Reset
// supplies a fresh stream rather than replaying an already-consumed one.
func (s *statement) Bind(pos int, v backend.BindValue) error {
	s.bound[pos] = v
	return nil
}

// args converts every bound value to its database/sql-native form,
// draining any blob streams at this point rather than at Bind time.
func (s *statement) args() ([]interface{}, error) {
	n := 0
	for pos := range s.bound {
		if pos > n {
			n = pos
		}
	}
	out := make([]interface{}, n)
	for pos, v := range s.bound {
		native, err := v.Native()
		if err != nil {
			return nil, err
		}
		out[pos-1] = native
	}
	return out, nil
}

func (s *statement) Exec(ctx context.Context) (backend.Result, error) {
	args, err := s.args()
	if err != nil {
		return nil, err
	}
	res, err := s.stmt.ExecContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	return &execResult{res: res}, nil
}

func (s *statement) Query(ctx context.Context) (backend.Result, error) {
	args, err := s.args()
	if err != nil {
		return nil, err
	}
	rows, err := s.stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, err
	}
	return &rowsResult{rows: rows, columns: cols}, nil
}

func (s *statement) Reset() { s.bound = make(map[int]backend.BindValue) }

func (s *statement) Close() error { return s.stmt.Close() }

// execResult adapts sql.Result (no row cursor) into backend.Result.
type execResult struct{ res sql.Result }

func (r *execResult) Next(context.Context) (bool, error)     { return false, nil }
func (r *execResult) ColumnCount() int                       { return 0 }
func (r *execResult) ColumnName(int) (string, error)         { return "", backend.ErrInvalidColumn }
func (r *execResult) IsNull(int) (bool, error)               { return false, backend.ErrInvalidColumn }
func (r *execResult) Fetch(int, interface{}) error           { return backend.ErrInvalidColumn }
func (r *execResult) RowsAffected() (uint64, error) {
	n, err := r.res.RowsAffected()
	return uint64(n), err
}
func (r *execResult) LastInsertID() (int64, error) { return r.res.LastInsertId() }
func (r *execResult) Close() error                 { return nil }

// rowsResult adapts *sql.Rows into backend.Result, scanning every column
// of the current row into interface{} holders up front so IsNull/Fetch
// can be served from memory without re-scanning.
type rowsResult struct {
	rows    *sql.Rows
	columns []string
	current []interface{}
}

func (r *rowsResult) Next(ctx context.Context) (bool, error) {
	if !r.rows.Next() {
		return false, r.rows.Err()
	}
	dest := make([]interface{}, len(r.columns))
	holders := make([]interface{}, len(r.columns))
	for i := range dest {
		holders[i] = &dest[i]
	}
	if err := r.rows.Scan(holders...); err != nil {
		return false, err
	}
	r.current = dest
	return true, nil
}

func (r *rowsResult) ColumnCount() int { return len(r.columns) }

func (r *rowsResult) ColumnName(col int) (string, error) {
	if col < 0 || col >= len(r.columns) {
		return "", backend.ErrInvalidColumn
	}
	return r.columns[col], nil
}

func (r *rowsResult) IsNull(col int) (bool, error) {
	if col < 0 || col >= len(r.current) {
		return false, backend.ErrInvalidColumn
	}
	return r.current[col] == nil, nil
}

func (r *rowsResult) Fetch(col int, dest interface{}) error {
	if col < 0 || col >= len(r.current) {
		return backend.ErrInvalidColumn
	}
	return scanInto(r.current[col], dest)
}

func (r *rowsResult) RowsAffected() (uint64, error) { return 0, backend.ErrNotSupportedByBackend }
func (r *rowsResult) LastInsertID() (int64, error)  { return 0, backend.ErrNotSupportedByBackend }
func (r *rowsResult) Close() error                  { return r.rows.Close() }

// scanInto coerces a driver-native value (as returned by database/sql's
// default scanning: int64, float64, bool, []byte, string, time.Time) into
// dest's concrete type. It is the backend-adapter half of the
// lossless-coercion contract Result.Fetch documents.
func scanInto(src interface{}, dest interface{}) error {
	switch d := dest.(type) {
	case *string:
		switch s := src.(type) {
		case string:
			*d = s
		case []byte:
			*d = string(s)
		default:
			*d = fmt.Sprint(s)
		}
		return nil
	case *int64:
		switch s := src.(type) {
		case int64:
			*d = s
		case []byte:
			return scanNumeric(string(s), d)
		default:
			return backend.ErrBadValueCast
		}
		return nil
	case *uint64:
		switch s := src.(type) {
		case int64:
			if s < 0 {
				return backend.ErrBadValueCast
			}
			*d = uint64(s)
		default:
			return backend.ErrBadValueCast
		}
		return nil
	case *float64:
		switch s := src.(type) {
		case float64:
			*d = s
		case int64:
			*d = float64(s)
		case []byte:
			return scanFloat(string(s), d)
		default:
			return backend.ErrBadValueCast
		}
		return nil
	case *bool:
		switch s := src.(type) {
		case bool:
			*d = s
		case int64:
			*d = s != 0
		default:
			return backend.ErrBadValueCast
		}
		return nil
	case *time.Time:
		switch s := src.(type) {
		case time.Time:
			*d = s
		case string:
			parsed, err := parseTimeLike(s)
			if err != nil {
				return err
			}
			*d = parsed
		case []byte:
			parsed, err := parseTimeLike(string(s))
			if err != nil {
				return err
			}
			*d = parsed
		default:
			return backend.ErrBadValueCast
		}
		return nil
	case *[]byte:
		switch s := src.(type) {
		case []byte:
			*d = s
		case string:
			*d = []byte(s)
		default:
			return backend.ErrBadValueCast
		}
		return nil
	default:
		return backend.ErrBadValueCast
	}
}

func scanNumeric(s string, out *int64) error {
	var v int64
	_, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &v)
	if err != nil {
		return backend.ErrBadValueCast
	}
	*out = v
	return nil
}

func scanFloat(s string, out *float64) error {
	var v float64
	_, err := fmt.Sscanf(strings.TrimSpace(s), "%g", &v)
	if err != nil {
		return backend.ErrBadValueCast
	}
	*out = v
	return nil
}

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
}

func parseTimeLike(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, backend.ErrBadValueCast
}
