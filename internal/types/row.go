package types

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Row is one result row keyed by column name.
//
// Drivers disagree on the Go types they hand back for the same SQL type
// (SQLite gives int64/float64, Postgres NUMERIC arrives as a string), so
// readers go through the accessors below rather than asserting directly.
// A missing or NULL column reads as the zero value.
type Row map[string]any

// String returns the column as text.
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return v.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Int64 returns the column as an integer. Non-numeric text reads as 0.
func (r Row) Int64(col string) int64 {
	switch v := r[col].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		return parseInt(v)
	case []byte:
		return parseInt(string(v))
	default:
		return 0
	}
}

// Float64 returns the column as a float. NULL reads as 0.
func (r Row) Float64(col string) float64 {
	if f := r.Float64Ptr(col); f != nil {
		return *f
	}
	return 0
}

// Float64Ptr returns the column as a float, or nil when it is NULL.
func (r Row) Float64Ptr(col string) *float64 {
	var f float64
	switch v := r[col].(type) {
	case nil:
		return nil
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int64:
		f = float64(v)
	case int:
		f = float64(v)
	case string:
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil
		}
		f = p
	case []byte:
		p, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return nil
		}
		f = p
	default:
		return nil
	}
	return &f
}

// Decimal returns the column as a decimal. NULL and unparseable text read as zero.
func (r Row) Decimal(col string) decimal.Decimal {
	switch v := r[col].(type) {
	case int64:
		return decimal.NewFromInt(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case float64:
		return decimal.NewFromFloat(v)
	case string:
		return parseDecimal(v)
	case []byte:
		return parseDecimal(string(v))
	default:
		return decimal.Zero
	}
}

func parseInt(s string) int64 {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
