package backend

import (
	"context"
	"io"
)

// Connection is the capability every engine adapter provides to the edba
// frontend. It is the Go analogue of edba::backend::connection_iface in
// the original design: an abstract role rather than a base class, so any
// type satisfying this interface — statically linked or loaded through a
// plugin — plugs straight into a Session.
type Connection interface {
	// PrepareStatement compiles sql (already dialect-selected and
	// name→position rewritten by the frontend) into a cacheable Statement.
	PrepareStatement(ctx context.Context, sql string) (Statement, error)

	// CreateStatement compiles sql into an uncached, one-shot Statement.
	CreateStatement(ctx context.Context, sql string) (Statement, error)

	// ExecBatch runs a semicolon-separated batch of statements that
	// produce no result set.
	ExecBatch(ctx context.Context, sql string) error

	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	// Escape quotes/escapes text for safe inline interpolation. Adapters
	// that cannot support this return ErrNotSupportedByBackend.
	Escape(text string) (string, error)

	Engine() string
	BackendName() string
	Version() (major, minor int)
	Description() string

	// SetSpecific/Specific hold one application-defined value per
	// connection ("specific data" in spec §3).
	SetSpecific(v interface{})
	Specific() interface{}

	Close() error
}

// Statement is a compiled, bindable unit of SQL. Placeholders are 1-based
// to match spec §3 ("Statement... per-placeholder binding table
// (positional)... Placeholders are 1-based").
type Statement interface {
	// Bind binds v to the 1-based positional placeholder pos.
	Bind(pos int, v BindValue) error

	// Exec runs the statement for effect and returns rows-affected and,
	// if the backend supports it, the last insert id.
	Exec(ctx context.Context) (Result, error)

	// Query runs the statement and returns a forward cursor over the
	// result set.
	Query(ctx context.Context) (Result, error)

	// Reset clears bound values but preserves the compiled form.
	Reset()

	Close() error
}

// Result is a forward-only cursor over a statement's rows, and also
// carries exec-only metadata (affected row count, last insert id) for
// statements that ran via Exec instead of Query.
type Result interface {
	// Next advances to the next row, returning false when exhausted.
	Next(ctx context.Context) (bool, error)

	ColumnCount() int
	ColumnName(col int) (string, error)

	// IsNull reports whether the current row's column col is SQL NULL.
	IsNull(col int) (bool, error)

	// Fetch reads column col of the current row into dest, performing
	// lossless coercion into dest's concrete type. Returns
	// ErrBadValueCast if the value does not fit.
	Fetch(col int, dest interface{}) error

	RowsAffected() (uint64, error)
	LastInsertID() (int64, error)

	Close() error
}

// SequenceProvider is an optional capability a Connection may implement
// for engines with named sequences (PostgreSQL, Oracle): Statement's
// SequenceLast asserts for it and returns ErrNotSupportedByBackend when
// absent, the Go rendering of edba::statement::sequence_last.
type SequenceProvider interface {
	SequenceLast(ctx context.Context, sequence string) (int64, error)
}

// DriverFactory constructs a backend Connection for a parsed connection
// descriptor. Implementations are registered with edba.Register and
// looked up by driver name (the prefix of the connection URI before the
// first ':').
//
// ConnInfo and Monitor are passed as opaque interfaces here (rather than
// the concrete edba types) to keep this package import-free of edba and
// avoid a cycle; edba.Register adapts its own types down to these at the
// registration boundary.
type DriverFactory func(ci ConnInfoView, monitor Monitor) (Connection, error)

// ConnInfoView is the read-only subset of edba.ConnInfo a driver factory
// needs: driver-agnostic option lookup.
type ConnInfoView interface {
	DriverName() string
	Has(key string) bool
	String(key, def string) string
	Int(key string, def int) int
	Bool(key string, def bool) bool
	ConnString() string
}

// Monitor is the session-monitor sink (spec §4.7): five notifications,
// no control-flow participation. A nil Monitor is valid and means "no
// observability wired up".
type Monitor interface {
	StatementExecuted(sql, bindings string, ok bool, seconds float64)
	QueryExecuted(sql, bindings string, ok bool, seconds float64)
	TransactionStarted()
	TransactionCommitted()
	TransactionReverted()
}

// DrainBlob is a small helper adapters use when a BindValue carries a
// blob stream that must be read exactly once.
func DrainBlob(v BindValue) ([]byte, error) {
	r, ok := v.BlobReader()
	if !ok {
		return nil, nil
	}
	return readAll(r)
}

func readAll(r io.Reader) ([]byte, error) {
	buf := make([]byte, 0, 512)
	tmp := make([]byte, 512)
	for {
		n, err := r.Read(tmp)
		if n > 0 {
			buf = append(buf, tmp[:n]...)
		}
		if err == io.EOF {
			return buf, nil
		}
		if err != nil {
			return buf, err
		}
	}
}
