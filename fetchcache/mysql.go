package fetchcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// MySQLConfig configures the MySQL-backed store.
type MySQLConfig struct {
	// User and Password authenticate against the server.
	User     string
	Password string

	// Database is the schema holding the data table.
	Database string

	// Host is the server address, with an optional port; "localhost"
	// when empty.
	Host string

	// Size is how many records survive a Trim. When zero, DefaultSize
	// is used.
	Size int
}

// MySQL is a Store backed by a MySQL server, sharing the table layout
// and trim semantics of the SQLite store.
type MySQL struct {
	db   *sql.DB
	size int
}

// NewMySQL connects to the server, creates the data table if needed,
// and trims it.
func NewMySQL(cfg MySQLConfig) (*MySQL, error) {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	if !strings.Contains(host, ":") {
		host += ":3306"
	}
	size := cfg.Size
	if size <= 0 {
		size = DefaultSize
	}

	dsnCfg := mysql.NewConfig()
	dsnCfg.User = cfg.User
	dsnCfg.Passwd = cfg.Password
	dsnCfg.DBName = cfg.Database
	dsnCfg.Net = "tcp"
	dsnCfg.Addr = host

	db, err := sql.Open("mysql", dsnCfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("fetchcache: open mysql: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS data (url VARCHAR(255) NOT NULL PRIMARY KEY, code INT, msg TEXT, headers TEXT, data BLOB, timestamp INT)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("fetchcache: create table: %w", err)
	}

	m := &MySQL{db: db, size: size}
	if err := m.Trim(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return m, nil
}

// Get returns the record for url, or ErrNotFound.
func (m *MySQL) Get(ctx context.Context, url string) (*Record, error) {
	rec := &Record{}
	err := m.db.QueryRowContext(ctx,
		`SELECT code, msg, headers, data, timestamp FROM data WHERE url=?`, url).
		Scan(&rec.Code, &rec.Status, &rec.Header, &rec.Body, &rec.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetchcache: mysql get: %w", err)
	}
	return rec, nil
}

// Set upserts the record for url.
func (m *MySQL) Set(ctx context.Context, url string, rec *Record) error {
	_, err := m.db.ExecContext(ctx,
		`INSERT INTO data (url, code, msg, headers, data, timestamp) VALUES (?,?,?,?,?,?)
		 ON DUPLICATE KEY UPDATE code=VALUES(code), msg=VALUES(msg), headers=VALUES(headers), data=VALUES(data), timestamp=VALUES(timestamp)`,
		url, rec.Code, rec.Status, rec.Header, rec.Body, rec.Timestamp)
	if err != nil {
		return fmt.Errorf("fetchcache: mysql set: %w", err)
	}
	return nil
}

// Trim deletes every row whose timestamp is not among the newest
// configured size.
func (m *MySQL) Trim(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, trimQuery, m.size); err != nil {
		return fmt.Errorf("fetchcache: mysql trim: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (m *MySQL) Close() error {
	return m.db.Close()
}
