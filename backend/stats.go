package backend

import (
	"context"
	"time"
)

// StatsWrapper decorates a Statement with timing and monitor reporting,
// the Go rendering of edba::backend::statistics_statement /
// gdb.Stmt.doStmtCommit: measure wall time around Exec/Query, serialize
// the bound values only when a monitor is attached, and forward
// (sql, bindings, ok, seconds) to the monitor. The affected-row count is
// not reported to the monitor.
//
// It never participates in control flow: a panic inside Monitor
// callbacks is not recovered here, matching spec §4.7's "never mutate
// the statement/result" contract — reporting failures are the caller's
// problem, not the statement's.
type StatsWrapper struct {
	Statement
	SQL     string
	Monitor Monitor
	bound   []BindValue
}

// NewStatsWrapper wraps stmt so Exec/Query report to monitor. monitor may
// be nil, in which case bindings are never serialized.
func NewStatsWrapper(stmt Statement, sql string, monitor Monitor) *StatsWrapper {
	return &StatsWrapper{Statement: stmt, SQL: sql, Monitor: monitor}
}

// Bind records the value (for serialization, only if a monitor is
// attached) and forwards to the wrapped statement.
func (w *StatsWrapper) Bind(pos int, v BindValue) error {
	if w.Monitor != nil {
		for len(w.bound) < pos {
			w.bound = append(w.bound, Null())
		}
		w.bound[pos-1] = v
	}
	return w.Statement.Bind(pos, v)
}

func (w *StatsWrapper) Reset() {
	w.bound = w.bound[:0]
	w.Statement.Reset()
}

func (w *StatsWrapper) serializeBindings() string {
	if w.Monitor == nil {
		return ""
	}
	s := make([]byte, 0, 16*len(w.bound))
	for i, v := range w.bound {
		if i > 0 {
			s = append(s, ',', ' ')
		}
		s = append(s, v.Serialize()...)
	}
	return string(s)
}

func (w *StatsWrapper) Exec(ctx context.Context) (Result, error) {
	start := time.Now()
	res, err := w.Statement.Exec(ctx)
	if w.Monitor != nil {
		w.Monitor.StatementExecuted(w.SQL, w.serializeBindings(), err == nil, time.Since(start).Seconds())
	}
	return res, err
}

func (w *StatsWrapper) Query(ctx context.Context) (Result, error) {
	start := time.Now()
	res, err := w.Statement.Query(ctx)
	if w.Monitor != nil {
		w.Monitor.QueryExecuted(w.SQL, w.serializeBindings(), err == nil, time.Since(start).Seconds())
	}
	return res, err
}
