package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"canvasboard/internal/domain"
)

// dialect captures the few places where the SQL backends disagree.
type dialect struct {
	driverName string
	numbered   bool   // $1, $2 placeholders instead of ?
	longText   string // column type for unbounded strings
}

var dialects = map[domain.StoreDriver]dialect{
	domain.StoreDriverSQLite:   {driverName: "sqlite", longText: "TEXT"},
	domain.StoreDriverPostgres: {driverName: "postgres", numbered: true, longText: "TEXT"},
	domain.StoreDriverPgx:      {driverName: "pgx", numbered: true, longText: "TEXT"},
	domain.StoreDriverMySQL:    {driverName: "mysql", longText: "MEDIUMTEXT"},
}

// DB wraps a database/sql connection to one of the SQL backends.
type DB struct {
	conn    *sql.DB
	dialect dialect
}

// OpenDB opens (or creates) the database and runs migrations. For sqlite
// the dsn is a file path.
func OpenDB(driver domain.StoreDriver, dsn string) (*DB, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported sql driver: %s", driver)
	}
	if dsn == "" {
		return nil, fmt.Errorf("%s: dsn required", driver)
	}

	source := dsn
	if driver == domain.StoreDriverSQLite {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		source = dsn + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	conn, err := sql.Open(d.driverName, source)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == domain.StoreDriverSQLite {
		// SQLite only supports one writer; a single connection avoids SQLITE_BUSY
		conn.SetMaxOpenConns(1)
	}

	db := &DB{conn: conn, dialect: d}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// rebind rewrites ? placeholders for drivers that number them.
func (db *DB) rebind(query string) string {
	if !db.dialect.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (db *DB) migrate() error {
	text := db.dialect.longText
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS canvas_workspace (
			id VARCHAR(64) PRIMARY KEY,
			version INTEGER NOT NULL DEFAULT 1,
			zoom DOUBLE PRECISION NOT NULL DEFAULT 1,
			pan_x DOUBLE PRECISION NOT NULL DEFAULT 0,
			pan_y DOUBLE PRECISION NOT NULL DEFAULT 0,
			saved_at VARCHAR(40) NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS canvas_groups (
			id VARCHAR(64) PRIMARY KEY,
			title ` + text + ` NOT NULL,
			width INTEGER NOT NULL DEFAULT 1,
			x DOUBLE PRECISION NOT NULL DEFAULT 0,
			y DOUBLE PRECISION NOT NULL DEFAULT 0,
			z INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS canvas_items (
			id VARCHAR(64) PRIMARY KEY,
			group_id VARCHAR(64) NOT NULL,
			position INTEGER NOT NULL DEFAULT 0,
			url ` + text + ` NOT NULL,
			title ` + text + ` NOT NULL,
			image ` + text + ` NOT NULL,
			favicon ` + text + ` NOT NULL,
			created_at VARCHAR(40) NOT NULL DEFAULT ''
		)`,
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %s: %w", m[:40], err)
		}
	}
	return nil
}
