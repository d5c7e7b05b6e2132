package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Dialect captures the SQL differences between the supported backends.
// Statements are written once with '?' placeholders and SQLite-compatible
// syntax; the dialect rewrites what differs.
type Dialect interface {
	Name() string
	// DriverName is the database/sql driver to open.
	DriverName() string
	// Rebind rewrites '?' placeholders into the backend's native form.
	Rebind(query string) string
	// MonthBucket returns an expression formatting a timestamp column as YYYY-MM.
	MonthBucket(column string) string
	// TimeArg converts a day-boundary time into a value comparable with created_at columns.
	TimeArg(t time.Time) any
	ListTablesQuery() string
	Schema() []string
	// SupportsReturning is true when INSERT ... RETURNING id is used instead of LastInsertId.
	SupportsReturning() bool
}

// DialectFor returns the dialect for a driver name.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "", "sqlite", "sqlite3":
		return SQLite{}, nil
	case "postgres", "postgresql", "pgx":
		return Postgres{}, nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %q", driver)
	}
}

// SQLite is the modernc.org/sqlite dialect.
type SQLite struct{}

func (SQLite) Name() string               { return "sqlite" }
func (SQLite) DriverName() string         { return "sqlite" }
func (SQLite) Rebind(query string) string { return query }
func (SQLite) SupportsReturning() bool    { return false }

func (SQLite) MonthBucket(column string) string {
	return fmt.Sprintf("strftime('%%Y-%%m', %s)", column)
}

// TimeArg binds the UTC day of t. A bare date sorts at or below every text
// timestamp of that day ("2025-01-01", "2025-01-01 00:00:00", "2025-01-01T08:00:00Z"),
// so cutoffs must fall on a day boundary.
func (SQLite) TimeArg(t time.Time) any {
	return t.UTC().Format("2006-01-02")
}

func (SQLite) ListTablesQuery() string {
	return `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`
}

func (SQLite) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS customers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT,
			phone TEXT,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_id INTEGER NOT NULL REFERENCES customers(id),
			total REAL,
			status TEXT,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT,
			cost REAL,
			price REAL,
			stock_quantity INTEGER NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0)
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			order_id INTEGER NOT NULL REFERENCES orders(id),
			product_id INTEGER NOT NULL REFERENCES products(id),
			quantity INTEGER NOT NULL CHECK (quantity >= 0),
			unit_price REAL,
			cost REAL
		)`,
		`CREATE TABLE IF NOT EXISTS leads (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			contact_email TEXT,
			status TEXT,
			score REAL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS reviews (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			product_id INTEGER NOT NULL REFERENCES products(id),
			rating REAL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_product ON reviews(product_id)`,
	}
}

// Postgres is the jackc/pgx/v5 stdlib dialect.
type Postgres struct{}

func (Postgres) Name() string            { return "postgres" }
func (Postgres) DriverName() string      { return "pgx" }
func (Postgres) SupportsReturning() bool { return true }

// Rebind numbers placeholders ($1, $2, ...), leaving quoted literals alone.
func (Postgres) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func (Postgres) MonthBucket(column string) string {
	return fmt.Sprintf("to_char(%s, 'YYYY-MM')", column)
}

func (Postgres) TimeArg(t time.Time) any { return t.UTC() }

func (Postgres) ListTablesQuery() string {
	return `SELECT table_name AS name FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
		ORDER BY table_name`
}

func (Postgres) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS customers (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT,
			phone TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id SERIAL PRIMARY KEY,
			customer_id INTEGER NOT NULL REFERENCES customers(id),
			total NUMERIC(14,2),
			status TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id SERIAL PRIMARY KEY,
			name TEXT,
			cost NUMERIC(14,2),
			price NUMERIC(14,2),
			stock_quantity INTEGER NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0)
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id SERIAL PRIMARY KEY,
			order_id INTEGER NOT NULL REFERENCES orders(id),
			product_id INTEGER NOT NULL REFERENCES products(id),
			quantity INTEGER NOT NULL CHECK (quantity >= 0),
			unit_price NUMERIC(14,2),
			cost NUMERIC(14,2)
		)`,
		`CREATE TABLE IF NOT EXISTS leads (
			id SERIAL PRIMARY KEY,
			contact_email TEXT,
			status TEXT,
			score DOUBLE PRECISION,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS reviews (
			id SERIAL PRIMARY KEY,
			product_id INTEGER NOT NULL REFERENCES products(id),
			rating DOUBLE PRECISION,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_product ON reviews(product_id)`,
	}
}
