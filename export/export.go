// Package export loads result records into a SQL database. Only mysql and
// sqlite3 are supported.
package export

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/weiihann/sheetbench/results"
)

// DB is a SQL database holding a Records table.
type DB struct {
	sql    *sql.DB
	insert *sql.Stmt
}

// driverHooks adjust the DSN and the pool for one driver before use.
var driverHooks = map[string]func(dsn string) (string, func(*sql.DB), error){}

// OpenSQL opens the database and creates the Records table if missing.
// The parameters are the same as the parameters for sql.Open.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	hook, ok := driverHooks[driverName]
	if !ok {
		return nil, fmt.Errorf("unsupported driver %q (expected sqlite3 or mysql)", driverName)
	}

	dsn, configure, err := hook(dataSourceName)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	if configure != nil {
		configure(db)
	}

	d := &DB{sql: db}

	if err := d.createTables(driverName); err != nil {
		db.Close()

		return nil, err
	}

	d.insert, err = db.Prepare(`INSERT INTO Records(
	RunID, Timestamp, Mode, Library, RowCount, ColCount, InputPath, OutputPath,
	OriginWriter, CacheMode, OK, ElapsedMs, PeakMemoryMb, ReadRowCount, ReadCellCount,
	ErrorKind, ErrorMessage, Content
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()

		return nil, fmt.Errorf("prepare insert: %w", err)
	}

	return d, nil
}

// createTmpl is evaluated with . as a map containing one entry whose key
// is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Records (
	RecordID {{if .sqlite3}}INTEGER PRIMARY KEY AUTOINCREMENT{{else}}BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT{{end}},
	RunID VARCHAR(64),
	Timestamp VARCHAR(64),
	Mode VARCHAR(16),
	Library VARCHAR(64),
	RowCount INTEGER,
	ColCount INTEGER,
	InputPath VARCHAR(1024),
	OutputPath VARCHAR(1024),
	OriginWriter VARCHAR(64),
	CacheMode VARCHAR(16),
	OK BOOLEAN,
	ElapsedMs BIGINT,
	PeakMemoryMb DOUBLE,
	ReadRowCount BIGINT NULL,
	ReadCellCount BIGINT NULL,
	ErrorKind VARCHAR(64),
	ErrorMessage TEXT,
	Content {{if .sqlite3}}BLOB{{else}}MEDIUMBLOB{{end}}
{{if not .sqlite3}}
	, INDEX (RunID), INDEX (Mode, Library)
{{end}}
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS RecordsRunID ON Records(RunID);
CREATE INDEX IF NOT EXISTS RecordsModeLibrary ON Records(Mode, Library);
{{end}}
`))

func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}

	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}

		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	return nil
}

// Insert stores recs in one transaction and returns how many were written.
func (db *DB) Insert(ctx context.Context, recs []results.Record) (int, error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	stmt := tx.StmtContext(ctx, db.insert)

	for i := range recs {
		rec := &recs[i]

		content, err := results.Marshal(*rec)
		if err != nil {
			tx.Rollback()

			return 0, err
		}

		_, err = stmt.ExecContext(ctx,
			rec.RunID, rec.Timestamp.UTC().Format(time.RFC3339Nano), string(rec.Mode), rec.Library,
			rec.RowCount, rec.ColCount, rec.InputPath, rec.OutputPath,
			rec.OriginWriter, rec.CacheMode, rec.OK, rec.ElapsedMs, rec.PeakMemoryMb,
			nullInt(rec.ReadRowCount), nullInt(rec.ReadCellCount),
			string(rec.ErrorKind), rec.ErrorMessage, bytes.TrimSpace(content),
		)
		if err != nil {
			tx.Rollback()

			return 0, fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return len(recs), nil
}

// Count returns the number of stored records.
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int

	err := db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM Records").Scan(&n)

	return n, err
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.insert != nil {
		db.insert.Close()
	}

	return db.sql.Close()
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}

	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
