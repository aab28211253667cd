package edba

import (
	"context"
	"testing"
)

func TestTransactionCommitThenCloseIsNoop(t *testing.T) {
	fs := newFakeStatement(&fakeResult{})
	sess, conn := newTestSession(fs, "sqlite3")

	tx, err := sess.Begin(context.Background())
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := tx.Commit(context.Background()); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := tx.Close(context.Background()); err != nil {
		t.Fatalf("Close after Commit: %v", err)
	}
	if conn.commits != 1 || conn.rollback != 0 {
		t.Errorf("commits=%d rollback=%d, want 1, 0 (Close after Commit must not roll back)", conn.commits, conn.rollback)
	}
}

func TestTransactionCloseWithoutCommitRollsBack(t *testing.T) {
	fs := newFakeStatement(&fakeResult{})
	sess, conn := newTestSession(fs, "sqlite3")

	tx, err := sess.Begin(context.Background())
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := tx.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if conn.rollback != 1 || conn.commits != 0 {
		t.Errorf("commits=%d rollback=%d, want 0, 1", conn.commits, conn.rollback)
	}
}

func TestTransactionDoubleCommitIsNoop(t *testing.T) {
	fs := newFakeStatement(&fakeResult{})
	sess, conn := newTestSession(fs, "sqlite3")

	tx, _ := sess.Begin(context.Background())
	if err := tx.Commit(context.Background()); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := tx.Commit(context.Background()); err != nil {
		t.Fatalf("second Commit: %v", err)
	}
	if conn.commits != 1 {
		t.Errorf("commits = %d, want 1 (second Commit must be a no-op)", conn.commits)
	}
}
