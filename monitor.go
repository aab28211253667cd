package edba

import "github.com/caohanyu/edba/backend"

// Monitor is the session-monitor sink (spec §4.7): an optional
// observability consumer that never participates in control flow.
// Callbacks fire in the order begin -> bindings -> {StatementExecuted |
// QueryExecuted}. Transaction.Close calls TransactionReverted after the
// rollback; the callback returns nothing, so it cannot replace the
// rollback's error (a panic inside it is not recovered).
type Monitor = backend.Monitor

// NoopMonitor discards every notification. It is never installed
// implicitly — a nil Monitor already means "no observability" throughout
// this package — but it is useful for tests that want an explicit,
// inspectable no-op.
type NoopMonitor struct{}

func (NoopMonitor) StatementExecuted(string, string, bool, float64) {}
func (NoopMonitor) QueryExecuted(string, string, bool, float64)     {}
func (NoopMonitor) TransactionStarted()                             {}
func (NoopMonitor) TransactionCommitted()                           {}
func (NoopMonitor) TransactionReverted()                            {}
