package edba

import "context"

// Transaction is a scoped transaction guard (spec §4.2): it opens on
// construction (via Session.Begin, which already issued BEGIN) and rolls
// back on Close unless Commit was called first — the Go idiom for the
// original's RAII "rollback on scope exit unless committed".
type Transaction struct {
	session *Session
	done    bool
}

func newTransaction(session *Session) *Transaction {
	return &Transaction{session: session}
}

// Commit commits the transaction. Calling Commit more than once, or
// after Close has already rolled back, is a no-op returning nil.
func (t *Transaction) Commit(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	if err := t.session.conn.Commit(ctx); err != nil {
		return wrapBackendErr("transaction.commit", err)
	}
	if t.session.monitor != nil {
		t.session.monitor.TransactionCommitted()
	}
	return nil
}

// Close rolls back the transaction if it has not already been committed.
// It is safe to call unconditionally at scope exit (via defer), matching
// the pattern Session.Transaction uses internally. A monitor's
// TransactionReverted notification is best-effort: its outcome never
// overrides the rollback's own result.
func (t *Transaction) Close(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	err := t.session.conn.Rollback(ctx)
	if t.session.monitor != nil {
		t.session.monitor.TransactionReverted()
	}
	if err != nil {
		return wrapBackendErr("transaction.rollback", err)
	}
	return nil
}
