package edba

import (
	"context"
	"sync"
	"time"

	"github.com/caohanyu/edba/backend"
)

// Session is the frontend facade over a single backend connection (spec
// §4.2): dialect selection, name→position rewriting, a prepared-statement
// cache keyed by the post-selection SQL text, and the total-execution-time
// accumulator a Monitor-less caller can still read.
type Session struct {
	conn    backend.Connection
	monitor backend.Monitor
	logger  Logger
	place   backend.PlaceholderFunc

	expandConditionals bool
	defaultSequence    string

	mu        sync.Mutex
	cache     map[string]*cachedStmt
	totalSecs float64

	onClose func() // returns the connection to its pool, if any
}

type cachedStmt struct {
	raw   backend.Statement
	names *backend.NameBinder
}

// newSession wires up a Session for conn. ci may be nil (tests wrapping
// a bare backend.Connection without going through Open/Pool); a nil ci
// leaves dialect selection and the sequence default at their defaults.
func newSession(conn backend.Connection, ci backend.ConnInfoView, monitor backend.Monitor, logger Logger, onClose func()) *Session {
	place := backend.QuestionMarker
	switch conn.Engine() {
	case "postgresql", "postgres", "pgsql":
		place = backend.DollarMarker
	}
	if logger == nil {
		logger = defaultLogger()
	}
	s := &Session{
		conn:               conn,
		monitor:            monitor,
		logger:             logger,
		place:              place,
		expandConditionals: true,
		cache:              make(map[string]*cachedStmt),
		onClose:            onClose,
	}
	if ci != nil {
		s.expandConditionals = ci.Bool("@expand_conditionals", true)
		s.defaultSequence = ci.String("@sequence_last", "")
	}
	return s
}

// selectAndBind applies dialect selection (unless @expand_conditionals
// was turned off) then name→position rewriting, returning the
// backend-ready SQL and the name table used to bind it.
func (s *Session) selectAndBind(sql string) (string, *backend.NameBinder, error) {
	variant := sql
	if s.expandConditionals {
		major, minor := s.conn.Version()
		v, err := SelectVariant(sql, s.conn.Engine(), major, minor)
		if err != nil {
			return "", nil, err
		}
		variant = v
	}
	binder := backend.NewNameBinder(variant, s.place)
	return binder.PatchedQuery(), binder, nil
}

// Prepare compiles sql into a cached Statement: a second Prepare call
// with dialect-equivalent SQL reuses the same backend handle, per spec
// §4.6.
func (s *Session) Prepare(ctx context.Context, sql string) (*Statement, error) {
	if sql == "" {
		return nil, ErrEmptyStringQuery
	}
	patched, binder, err := s.selectAndBind(sql)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	entry, ok := s.cache[patched]
	s.mu.Unlock()
	if ok {
		entry.raw.Reset()
		return newStatement(s, entry.raw, patched, entry.names), nil
	}

	raw, err := s.conn.PrepareStatement(ctx, patched)
	if err != nil {
		return nil, wrapBackendErr("session.prepare", err)
	}
	if s.monitor != nil {
		raw = backend.NewStatsWrapper(raw, sql, s.monitor)
	}

	s.mu.Lock()
	s.cache[patched] = &cachedStmt{raw: raw, names: binder}
	s.mu.Unlock()

	return newStatement(s, raw, patched, binder), nil
}

// CreateStatement compiles sql into an uncached, one-shot Statement.
func (s *Session) CreateStatement(ctx context.Context, sql string) (*Statement, error) {
	if sql == "" {
		return nil, ErrEmptyStringQuery
	}
	patched, binder, err := s.selectAndBind(sql)
	if err != nil {
		return nil, err
	}
	raw, err := s.conn.CreateStatement(ctx, patched)
	if err != nil {
		return nil, wrapBackendErr("session.create_statement", err)
	}
	if s.monitor != nil {
		raw = backend.NewStatsWrapper(raw, sql, s.monitor)
	}
	return newStatement(s, raw, patched, binder), nil
}

// ExecBatch compiles and runs a dialect-selected, semicolon-separated
// batch of statements that produce no result set (spec §4.2).
func (s *Session) ExecBatch(ctx context.Context, sql string) error {
	batch := sql
	if s.expandConditionals {
		major, minor := s.conn.Version()
		selected, err := SelectBatch(sql, s.conn.Engine(), major, minor)
		if err != nil {
			return err
		}
		batch = selected
	}
	start := time.Now()
	err := s.conn.ExecBatch(ctx, batch)
	s.addExecSeconds(time.Since(start).Seconds())
	if s.monitor != nil {
		s.monitor.StatementExecuted(sql, "", err == nil, time.Since(start).Seconds())
	}
	if err != nil {
		return wrapBackendErr("session.exec_batch", err)
	}
	return nil
}

// addExecSeconds folds seconds into the session's running execution-time
// total, independent of whether a Monitor is attached (spec §4.7: "total
// execution time is a running sum maintained per connection regardless
// of monitor attachment"). Statement.Exec/Query call this directly so
// TotalExecSeconds reflects every execution, not just the ones a
// backend.StatsWrapper happens to be timing for a Monitor's benefit.
func (s *Session) addExecSeconds(seconds float64) {
	s.mu.Lock()
	s.totalSecs += seconds
	s.mu.Unlock()
}

// Begin opens a transaction scope on the connection. Prefer Transaction
// for the scoped, commit-or-rollback-on-exit usage.
func (s *Session) Begin(ctx context.Context) (*Transaction, error) {
	if err := s.conn.Begin(ctx); err != nil {
		return nil, wrapBackendErr("session.begin", err)
	}
	if s.monitor != nil {
		s.monitor.TransactionStarted()
	}
	return newTransaction(s), nil
}

// Transaction runs fn inside a transaction scope, committing if fn
// returns nil and rolling back (then propagating fn's error) otherwise.
func (s *Session) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Close(ctx)

	if err := fn(ctx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Escape quotes text for safe inline interpolation, where the backend
// supports it.
func (s *Session) Escape(text string) (string, error) {
	out, err := s.conn.Escape(text)
	if err != nil {
		return "", wrapBackendErr("session.escape", err)
	}
	return out, nil
}

// Engine is the backend's engine family name ("sqlite3", "mysql",
// "postgresql", "oracle", "odbc").
func (s *Session) Engine() string { return s.conn.Engine() }

// BackendName is the concrete adapter's name, which may differ from
// Engine for generic transports (e.g. an ODBC connection to SQL Server
// reports engine "odbc" and backend name "Microsoft SQL Server").
func (s *Session) BackendName() string { return s.conn.BackendName() }

// Version reports the backend's (major, minor) server version, as used
// by dialect selection.
func (s *Session) Version() (major, minor int) { return s.conn.Version() }

// Description is a human-readable identification string for logging.
func (s *Session) Description() string { return s.conn.Description() }

// SetSpecific/Specific hold one application-defined value per connection
// (spec §3's "specific data" escape hatch for engine-specific tuning).
func (s *Session) SetSpecific(v interface{}) { s.conn.SetSpecific(v) }
func (s *Session) Specific() interface{}     { return s.conn.Specific() }

// TotalExecSeconds is the cumulative wall time spent in ExecBatch and in
// Statement Exec/Query calls on this session, readable even without a
// Monitor attached.
func (s *Session) TotalExecSeconds() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalSecs
}

// Close releases the session's cached statements and the underlying
// connection (or, if the session came from a Pool, returns it instead).
func (s *Session) Close() error {
	s.mu.Lock()
	for k, entry := range s.cache {
		if err := entry.raw.Close(); err != nil {
			s.logger.WarnContext(context.Background(), "edba: closing cached statement", "sql", k, "error", err)
		}
		delete(s.cache, k)
	}
	s.mu.Unlock()

	if s.onClose != nil {
		// Run the release once; a repeated Close of a pooled session is a
		// no-op instead of returning the connection to the pool twice.
		release := s.onClose
		s.onClose = func() {}
		release()
		return nil
	}
	return s.conn.Close()
}
