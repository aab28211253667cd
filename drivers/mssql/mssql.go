// Package mssql registers the "odbc" edba driver for SQL Server, backed
// by microsoft/go-mssqldb through database/sql. It reports engine
// "odbc" with backend name "Microsoft SQL Server". Dialect selection
// matches headers against the engine name only, so variants must be
// written under an "odbc" header; a "Microsoft SQL Server" header does
// not match.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"github.com/caohanyu/edba"
	"github.com/caohanyu/edba/backend"
	"github.com/caohanyu/edba/drivers/sqlbase"
)

func init() {
	edba.Register("odbc", GetConnection)
}

// GetConnection is the backend.DriverFactory for "odbc:" connection
// strings targeting SQL Server.
func GetConnection(ci backend.ConnInfoView, monitor backend.Monitor) (backend.Connection, error) {
	dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s",
		ci.String("user", "sa"),
		ci.String("password", ""),
		ci.String("host", "127.0.0.1"),
		ci.Int("port", 1433),
		ci.String("dbname", ""),
	)

	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, err
	}

	cfg := sqlbase.Config{
		Engine:      "odbc",
		BackendName: "Microsoft SQL Server",
		Placeholder: func(pos int) string { return fmt.Sprintf("@p%d", pos) },
		EscapeString: func(s string) string {
			return strings.ReplaceAll(s, "'", "''")
		},
		DetectVersion: detectVersion,
	}
	return sqlbase.Open(db, cfg, "odbc:"+ci.String("host", "127.0.0.1")), nil
}

func detectVersion(ctx context.Context, db *sql.DB) (major, minor int, err error) {
	var ver string
	if err := db.QueryRowContext(ctx, "select cast(serverproperty('ProductVersion') as varchar(32))").Scan(&ver); err != nil {
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
