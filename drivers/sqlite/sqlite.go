// Package sqlite registers the "sqlite3" edba driver, backed by
// mattn/go-sqlite3 through database/sql. Importing this package for its
// side effect (as callers do with database/sql drivers) makes
// "sqlite3:..." connection strings resolvable by edba.Open.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/caohanyu/edba"
	"github.com/caohanyu/edba/backend"
	"github.com/caohanyu/edba/drivers/sqlbase"
)

func init() {
	edba.Register("sqlite3", GetConnection)
}

// GetConnection is the backend.DriverFactory for "sqlite3:" connection
// strings. It also serves as the symbol a plugin build of this package
// would export as Edba_sqlite3_GetConnection for dynamic loading.
func GetConnection(ci backend.ConnInfoView, monitor backend.Monitor) (backend.Connection, error) {
	path := ci.String("db", ci.String("dbname", ":memory:"))
	dsn := path
	if ci.Has("mode") {
		dsn = fmt.Sprintf("file:%s?mode=%s", path, ci.String("mode", "rwc"))
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // sqlite3 serializes writers; one physical connection avoids SQLITE_BUSY churn

	cfg := sqlbase.Config{
		Engine:      "sqlite3",
		BackendName: "SQLite3 (mattn/go-sqlite3)",
		Placeholder: backend.QuestionMarker,
		EscapeString: func(s string) string {
			return strings.ReplaceAll(s, "'", "''")
		},
		DetectVersion: detectVersion,
	}
	return sqlbase.Open(db, cfg, "sqlite3:"+path), nil
}

func detectVersion(ctx context.Context, db *sql.DB) (major, minor int, err error) {
	var ver string
	if err := db.QueryRowContext(ctx, "select sqlite_version()").Scan(&ver); err != nil {
		return 0, 0, err
	}
	parts := strings.SplitN(ver, ".", 3)
	if len(parts) > 0 {
		major, _ = strconv.Atoi(parts[0])
	}
	if len(parts) > 1 {
		minor, _ = strconv.Atoi(parts[1])
	}
	return major, minor, nil
}
