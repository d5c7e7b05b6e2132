package reports

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind selects a canned analytics bundle.
type Kind string

const (
	KindSales     Kind = "sales"
	KindCustomer  Kind = "customer"
	KindProduct   Kind = "product"
	KindFinancial Kind = "financial"
)

// Kinds returns every report kind in display order.
func Kinds() []Kind {
	return []Kind{KindSales, KindCustomer, KindProduct, KindFinancial}
}

// ErrUnknownKind is returned by ParseKind for an unrecognised name.
var ErrUnknownKind = errors.New("unknown report kind")

// ParseKind parses a report kind, case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// ErrorKind classifies a failed build.
type ErrorKind string

const (
	ErrorStore       ErrorKind = "store"
	ErrorTimeout     ErrorKind = "timeout"
	ErrorUnknownKind ErrorKind = "unknown_kind"
)

// Error is the failure variant of a Result.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Result is the outcome of building one report: either Data and Report, or Err.
type Result struct {
	Kind Kind
	// Data is one of *SalesReport, *CustomerReport, *ProductReport, *FinancialSummary.
	Data   any
	Report string
	Err    *Error
}

// OK reports whether the build succeeded.
func (r Result) OK() bool { return r.Err == nil }

// MarshalJSON encodes a failure as {"error": "..."}.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{r.Err.Message})
	}
	return json.Marshal(struct {
		Kind   Kind   `json:"kind"`
		Data   any    `json:"data"`
		Report string `json:"report"`
	}{r.Kind, r.Data, r.Report})
}
