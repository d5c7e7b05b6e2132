// Package store is the query execution adapter over the relational ERP store.
//
// DB owns the connection pool. Every round trip runs under a bounded timeout
// and closes its cursor on every exit path; callers only see rows as
// column-keyed maps.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"agenticerp/internal/logging"
	"agenticerp/internal/types"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// DefaultQueryTimeout bounds a single round trip when none is configured.
const DefaultQueryTimeout = 10 * time.Second

// Options configures Open.
type Options struct {
	Driver       string // sqlite, postgres
	Path         string // sqlite file or ":memory:"
	DSN          string // postgres connection string
	QueryTimeout time.Duration
	MaxOpenConns int
}

// DB implements types.Executor over database/sql.
type DB struct {
	db      *sql.DB
	dialect Dialect
	timeout time.Duration
}

var _ types.Executor = (*DB)(nil)

// Open connects to the configured backend and verifies the connection.
// The schema is not touched; call EnsureSchema for that.
func Open(ctx context.Context, opts Options) (*DB, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Open")
	defer timer.Stop()

	dialect, err := DialectFor(opts.Driver)
	if err != nil {
		return nil, err
	}

	dsn := opts.DSN
	if dialect.Name() == "sqlite" {
		if opts.Path != "" && opts.Path != ":memory:" {
			dir := filepath.Dir(opts.Path)
			if err := os.MkdirAll(dir, 0755); err != nil {
				logging.StoreError("Failed to create directory %s: %v", dir, err)
				return nil, fmt.Errorf("failed to create directory: %w", err)
			}
		}
		dsn = sqliteDSN(opts.Path)
	}
	if dsn == "" {
		return nil, fmt.Errorf("no %s connection configured", dialect.Name())
	}

	logging.Store("Opening %s store", dialect.Name())

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		logging.StoreError("Failed to open %s database: %v", dialect.Name(), err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Each connection to ":memory:" is its own database
	if dialect.Name() == "sqlite" && opts.Path == ":memory:" {
		db.SetMaxOpenConns(1)
	} else if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}

	s := New(db, dialect, opts.QueryTimeout)

	pingCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		logging.StoreError("Failed to reach %s database: %v", dialect.Name(), err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return s, nil
}

// sqliteDSN enables foreign keys on every pooled connection.
func sqliteDSN(path string) string {
	if path == "" {
		return ""
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)"
}

// NewSQLite opens (or creates) a SQLite store at path with default settings.
func NewSQLite(path string) (*DB, error) {
	return Open(context.Background(), Options{Driver: "sqlite", Path: path})
}

// New wraps an existing pool. A non-positive timeout uses DefaultQueryTimeout.
func New(db *sql.DB, dialect Dialect, timeout time.Duration) *DB {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	if dialect == nil {
		dialect = SQLite{}
	}
	return &DB{db: db, dialect: dialect, timeout: timeout}
}

// Dialect returns the backend dialect.
func (s *DB) Dialect() Dialect { return s.dialect }

// Close releases the pool.
func (s *DB) Close() error {
	return s.db.Close()
}

func (s *DB) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// wrapErr marks failures caused by the per-call deadline so callers can
// tell them apart with errors.Is(err, context.DeadlineExceeded).
func (s *DB) wrapErr(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s timed out after %v: %w (%v)", op, s.timeout, context.DeadlineExceeded, err)
	}
	return fmt.Errorf("%s failed: %w", op, err)
}

// Query runs a parameterised read and returns every row.
func (s *DB) Query(ctx context.Context, query string, args ...any) ([]types.Row, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		logging.StoreError("Query failed: %v", err)
		return nil, s.wrapErr(ctx, "query", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, s.wrapErr(ctx, "read columns", err)
	}

	out := make([]types.Row, 0)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, s.wrapErr(ctx, "scan", err)
		}
		row := make(types.Row, len(cols))
		for i, c := range cols {
			row[c] = normalize(vals[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		logging.StoreError("Row iteration failed: %v", err)
		return nil, s.wrapErr(ctx, "iterate rows", err)
	}

	logging.StoreDebug("Query returned %d rows", len(out))
	return out, nil
}

// Exec runs a parameterised write.
func (s *DB) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		logging.StoreError("Exec failed: %v", err)
		return nil, s.wrapErr(ctx, "exec", err)
	}
	return res, nil
}

// ListTables returns the user tables, sorted by name.
func (s *DB) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.Query(ctx, s.dialect.ListTablesQuery())
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.String("name"))
	}
	return names, nil
}

// normalize converts driver values into the types Row accessors expect.
func normalize(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	default:
		return v
	}
}
