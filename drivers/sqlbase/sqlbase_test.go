package sqlbase

import (
	"context"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/caohanyu/edba/backend"
)

func testConfig() Config {
	return Config{
		Engine:      "mockdb",
		BackendName: "mockdb (sqlmock)",
		Placeholder: backend.QuestionMarker,
	}
}

func TestConnectionExecAndQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectPrepare("insert into widgets").
		ExpectExec().
		WithArgs("gizmo").
		WillReturnResult(sqlmock.NewResult(9, 1))

	conn := Open(db, testConfig(), "mockdb:test")
	stmt, err := conn.PrepareStatement(context.Background(), "insert into widgets(name) values(?)")
	if err != nil {
		t.Fatalf("PrepareStatement: %v", err)
	}
	if err := stmt.Bind(1, backend.String("gizmo")); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	res, err := stmt.Exec(context.Background())
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		t.Errorf("RowsAffected() = %d, want 1", n)
	}
	if id, _ := res.LastInsertID(); id != 9 {
		t.Errorf("LastInsertID() = %d, want 9", id)
	}

	rows := sqlmock.NewRows([]string{"id", "name"}).
		AddRow(int64(1), "gizmo").
		AddRow(int64(2), nil)
	mock.ExpectPrepare("select id, name from widgets").ExpectQuery().WillReturnRows(rows)

	qstmt, err := conn.PrepareStatement(context.Background(), "select id, name from widgets")
	if err != nil {
		t.Fatalf("PrepareStatement (query): %v", err)
	}
	result, err := qstmt.Query(context.Background())
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	defer result.Close()

	ok, err := result.Next(context.Background())
	if err != nil || !ok {
		t.Fatalf("Next() = %v, %v", ok, err)
	}
	var id int64
	if err := result.Fetch(0, &id); err != nil || id != 1 {
		t.Fatalf("Fetch(id) = %d, %v, want 1", id, err)
	}

	ok, err = result.Next(context.Background())
	if err != nil || !ok {
		t.Fatalf("Next() (row 2) = %v, %v", ok, err)
	}
	isNull, err := result.IsNull(1)
	if err != nil || !isNull {
		t.Errorf("IsNull(name) = %v, %v, want true", isNull, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestConnectionTransactionLifecycle(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	conn := Open(db, testConfig(), "mockdb:test")
	if err := conn.Begin(context.Background()); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := conn.Begin(context.Background()); err == nil {
		t.Error("expected a second Begin to fail while a transaction is in progress")
	}
	if err := conn.Commit(context.Background()); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := conn.Commit(context.Background()); err == nil {
		t.Error("expected a second Commit with no transaction in progress to fail")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestConnectionEscapeRequiresConfig(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	conn := Open(db, testConfig(), "mockdb:test")
	if _, err := conn.Escape("x"); err != backend.ErrNotSupportedByBackend {
		t.Fatalf("Escape() = %v, want ErrNotSupportedByBackend", err)
	}

	cfg := testConfig()
	cfg.EscapeString = func(s string) string { return "'" + s + "'" }
	conn2 := Open(db, cfg, "mockdb:test")
	got, err := conn2.Escape("it's")
	if err != nil || got != "'it's'" {
		t.Errorf("Escape() = %q, %v", got, err)
	}
}

func TestStatementBindDefersBlobRead(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectPrepare("insert into blobs").
		ExpectExec().
		WithArgs([]byte("first")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("insert into blobs").
		WithArgs([]byte("second")).
		WillReturnResult(sqlmock.NewResult(2, 1))

	conn := Open(db, testConfig(), "mockdb:test")
	stmt, err := conn.PrepareStatement(context.Background(), "insert into blobs(data) values(?)")
	if err != nil {
		t.Fatalf("PrepareStatement: %v", err)
	}

	first := strings.NewReader("first")
	if err := stmt.Bind(1, backend.Blob(first)); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	// Binding a blob must not drain its reader eagerly: a fresh reader
	// bound again before Exec should still be readable.
	if first.Len() == 0 {
		t.Fatalf("blob reader was drained before Exec")
	}
	if _, err := stmt.Exec(context.Background()); err != nil {
		t.Fatalf("Exec: %v", err)
	}

	stmt.Reset()
	if err := stmt.Bind(1, backend.Blob(strings.NewReader("second"))); err != nil {
		t.Fatalf("Bind (after reset): %v", err)
	}
	if _, err := stmt.Exec(context.Background()); err != nil {
		t.Fatalf("Exec (after reset): %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestConnectionSpecificDataRoundTrip(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	conn := Open(db, testConfig(), "mockdb:test")
	conn.SetSpecific(42)
	if conn.Specific() != 42 {
		t.Errorf("Specific() = %v, want 42", conn.Specific())
	}
}
