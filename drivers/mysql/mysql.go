// Package mysql registers the "mysql" edba driver, backed by
// go-sql-driver/mysql through database/sql.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/caohanyu/edba"
	"github.com/caohanyu/edba/backend"
	"github.com/caohanyu/edba/drivers/sqlbase"
)

func init() {
	edba.Register("mysql", GetConnection)
}

// GetConnection is the backend.DriverFactory for "mysql:" connection
// strings: host, port, user, password, dbname.
func GetConnection(ci backend.ConnInfoView, monitor backend.Monitor) (backend.Connection, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		ci.String("user", "root"),
		ci.String("password", ""),
		ci.String("host", "127.0.0.1"),
		ci.Int("port", 3306),
		ci.String("dbname", ""),
	)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	cfg := sqlbase.Config{
		Engine:      "mysql",
		BackendName: "MySQL (go-sql-driver)",
		Placeholder: backend.QuestionMarker,
		EscapeString: func(s string) string {
			r := strings.NewReplacer(`\`, `\\`, "'", `\'`, `"`, `\"`)
			return r.Replace(s)
		},
		DetectVersion: detectVersion,
	}
	return sqlbase.Open(db, cfg, fmt.Sprintf("mysql:%s@%s:%d/%s", ci.String("user", "root"), ci.String("host", "127.0.0.1"), ci.Int("port", 3306), ci.String("dbname", ""))), nil
}

func detectVersion(ctx context.Context, db *sql.DB) (major, minor int, err error) {
	var ver string
	if err := db.QueryRowContext(ctx, "select version()").Scan(&ver); err != nil {
		return 0, 0, err
	}
	// "8.0.36-0ubuntu0.22.04.1" -> major=8 minor=0
	ver = strings.SplitN(ver, "-", 2)[0]
	parts := strings.SplitN(ver, ".", 3)
	if len(parts) > 0 {
		major, _ = strconv.Atoi(parts[0])
	}
	if len(parts) > 1 {
		minor, _ = strconv.Atoi(parts[1])
	}
	return major, minor, nil
}
