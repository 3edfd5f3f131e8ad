package export

import (
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	driverHooks["sqlite3"] = func(dsn string) (string, func(*sql.DB), error) {
		// Each connection to ":memory:" is its own database.
		return dsn, func(db *sql.DB) { db.SetMaxOpenConns(1) }, nil
	}

	driverHooks["mysql"] = func(dsn string) (string, func(*sql.DB), error) {
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return "", nil, fmt.Errorf("parse mysql dsn: %w", err)
		}

		cfg.ParseTime = true
		if cfg.Params == nil {
			cfg.Params = map[string]string{}
		}
		cfg.Params["charset"] = "utf8mb4"

		return cfg.FormatDSN(), nil, nil
	}
}
