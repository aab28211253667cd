// Package postgres registers the "postgresql" edba driver, backed by
// jackc/pgx's database/sql stdlib adapter.
package postgres

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/caohanyu/edba"
	"github.com/caohanyu/edba/backend"
	"github.com/caohanyu/edba/drivers/sqlbase"
)

func init() {
	edba.Register("postgresql", GetConnection)
}

// GetConnection is the backend.DriverFactory for "postgresql:" connection
// strings, rendered through ConnInfo's libpq-style quoting.
func GetConnection(ci backend.ConnInfoView, monitor backend.Monitor) (backend.Connection, error) {
	conninfo := ci.ConnString()
	if withPg, ok := ci.(pgConnStringer); ok {
		conninfo = withPg.PgConnString()
	}

	db, err := sql.Open("pgx", conninfo)
	if err != nil {
		return nil, err
	}

	cfg := sqlbase.Config{
		Engine:      "postgresql",
		BackendName: "PostgreSQL (jackc/pgx)",
		Placeholder: backend.DollarMarker,
		EscapeString: func(s string) string {
			return strings.ReplaceAll(s, "'", "''")
		},
		DetectVersion: detectVersion,
	}
	return sqlbase.Open(db, cfg, "postgresql:"+ci.String("dbname", "")), nil
}

// pgConnStringer is satisfied by *edba.ConnInfo; checked via interface
// assertion rather than importing the concrete type, so this factory
// keeps working against any ConnInfoView implementation a test supplies.
type pgConnStringer interface {
	PgConnString() string
}

func detectVersion(ctx context.Context, db *sql.DB) (major, minor int, err error) {
	var ver int
	if err := db.QueryRowContext(ctx, "show server_version_num").Scan(&ver); err != nil {
		return 0, 0, err
	}
	// server_version_num is MMmmpp, e.g. 160003 -> 16.00
	major = ver / 10000
	minor = (ver / 100) % 100
	return major, minor, nil
}
