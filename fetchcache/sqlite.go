package fetchcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// trimQuery keeps the newest rows: everything at or below the
// timestamp of the (size+1)-th newest row goes. With fewer rows than
// the cap the subquery is empty and nothing is deleted.
const trimQuery = `DELETE FROM data WHERE timestamp <= ( SELECT timestamp FROM ( SELECT timestamp FROM data ORDER BY timestamp DESC LIMIT 1 OFFSET ? ) AS tail )`

// SQLiteConfig configures the embedded SQLite store.
type SQLiteConfig struct {
	// Path is the database file. When empty an in-memory database is
	// used.
	Path string

	// Size is how many records survive a Trim. When zero, DefaultSize
	// is used.
	Size int
}

// SQLite is a Store backed by an embedded SQLite database in WAL mode.
// A single shared connection serves all goroutines.
type SQLite struct {
	db   *sql.DB
	size int
}

// NewSQLite opens (and if necessary creates) the database, switches it
// to WAL journaling, and trims it.
func NewSQLite(cfg SQLiteConfig) (*SQLite, error) {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	size := cfg.Size
	if size <= 0 {
		size = DefaultSize
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("fetchcache: open sqlite: %w", err)
	}
	// One shared connection: keeps WAL writers serialised and makes the
	// in-memory database visible to every goroutine.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS data (url TEXT PRIMARY KEY, code INT, msg TEXT, headers TEXT, data BLOB, timestamp INT)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("fetchcache: create table: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("fetchcache: enable wal: %w", err)
	}

	s := &SQLite{db: db, size: size}
	if err := s.Trim(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Get returns the record for url, or ErrNotFound.
func (s *SQLite) Get(ctx context.Context, url string) (*Record, error) {
	rec := &Record{}
	err := s.db.QueryRowContext(ctx,
		`SELECT code, msg, headers, data, timestamp FROM data WHERE url=?`, url).
		Scan(&rec.Code, &rec.Status, &rec.Header, &rec.Body, &rec.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetchcache: sqlite get: %w", err)
	}
	return rec, nil
}

// Set upserts the record for url.
func (s *SQLite) Set(ctx context.Context, url string, rec *Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO data (url, code, msg, headers, data, timestamp) VALUES (?,?,?,?,?,?)
		 ON CONFLICT(url) DO UPDATE SET code=excluded.code, msg=excluded.msg, headers=excluded.headers, data=excluded.data, timestamp=excluded.timestamp`,
		url, rec.Code, rec.Status, rec.Header, rec.Body, rec.Timestamp)
	if err != nil {
		return fmt.Errorf("fetchcache: sqlite set: %w", err)
	}
	return nil
}

// Trim deletes every row whose timestamp is not among the newest
// configured size.
func (s *SQLite) Trim(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, trimQuery, s.size); err != nil {
		return fmt.Errorf("fetchcache: sqlite trim: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
