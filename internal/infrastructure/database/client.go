package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Drivers understood by New.
const (
	DriverLibSQL = "libsql"
	DriverSQLite = "sqlite"
)

// Client wraps a SQL database connection with Turso-specific retry logic.
type Client struct {
	*sql.DB
	Driver string
}

// Options configures the database client behavior.
type Options struct {
	Driver    string
	URL       string
	AuthToken string
	Ping      bool
}

// New opens a connection according to opts.
//
// The libsql driver talks to a remote Turso database or a local file:
// URL. The sqlite driver opens a local file or :memory: database through
// the pure-Go driver and needs no cgo.
func New(opts Options) (*Client, error) {
	var (
		db  *sql.DB
		err error
	)

	switch opts.Driver {
	case "", DriverLibSQL:
		connStr := opts.URL
		if opts.AuthToken != "" {
			connStr += "?authToken=" + opts.AuthToken
		}
		db, err = sql.Open(DriverLibSQL, connStr)
		if err != nil {
			return nil, err
		}

		// Turso aggressively closes idle Hrana streams, so stale idle
		// connections fail with "stream not found".
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(0)
		db.SetConnMaxLifetime(5 * time.Minute)
		db.SetConnMaxIdleTime(0)
		opts.Driver = DriverLibSQL

	case DriverSQLite:
		db, err = sql.Open(DriverSQLite, sqliteDSN(opts.URL))
		if err != nil {
			return nil, err
		}
		// SQLite has a single writer.
		db.SetMaxOpenConns(1)

	default:
		return nil, fmt.Errorf("unknown database driver %q", opts.Driver)
	}

	if opts.Ping {
		if err := db.Ping(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return &Client{DB: db, Driver: opts.Driver}, nil
}

func sqliteDSN(url string) string {
	url = strings.TrimPrefix(url, "file:")
	if url == "" {
		url = ":memory:"
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// IsStreamError checks if an error is a Turso "stream not found" error.
func IsStreamError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "stream not found")
}

// WithRetry executes a function with retry logic for Turso stream errors.
// It retries up to maxRetries times when encountering "stream not found" errors.
func WithRetry[T any](ctx context.Context, maxRetries int, fn func() (T, error)) (T, error) {
	var result T
	var err error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		result, err = fn()
		if err == nil {
			return result, nil
		}

		if !IsStreamError(err) || attempt == maxRetries {
			return result, err
		}

		// Brief pause before retry to allow connection pool to refresh
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}

	return result, err
}
