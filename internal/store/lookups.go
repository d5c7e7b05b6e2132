package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agenticerp/internal/logging"
	"agenticerp/internal/types"

	"github.com/shopspring/decimal"
)

// ErrEmptyInput is returned when a required field is blank.
var ErrEmptyInput = errors.New("required field is empty")

// Customer is a row of the customers table.
type Customer struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	CreatedAt string `json:"created_at"`
}

// Order is a row of the orders table.
type Order struct {
	ID         int64           `json:"id"`
	CustomerID int64           `json:"customer_id"`
	Total      decimal.Decimal `json:"total"`
	Status     string          `json:"status"`
	CreatedAt  string          `json:"created_at"`
}

// Lead is a row of the leads table. Score is nil when unscored.
type Lead struct {
	ID           int64    `json:"id"`
	ContactEmail string   `json:"contact_email"`
	Status       string   `json:"status"`
	Score        *float64 `json:"score"`
	CreatedAt    string   `json:"created_at"`
}

// CustomerFilter narrows Customers. Zero fields are ignored; text fields match as substrings.
type CustomerFilter struct {
	ID    int64
	Name  string
	Email string
	Phone string
}

// OrderFilter narrows Orders. Zero fields are ignored.
type OrderFilter struct {
	ID         int64
	CustomerID int64
}

// LeadFilter narrows Leads. Email matches as a substring, Status exactly.
type LeadFilter struct {
	ID     int64
	Email  string
	Status string
}

// where accumulates AND-ed conditions with their bound values.
type where struct {
	clauses []string
	args    []any
}

func (w *where) eq(col string, v int64) {
	if v != 0 {
		w.clauses = append(w.clauses, col+" = ?")
		w.args = append(w.args, v)
	}
}

func (w *where) eqText(col, v string) {
	if v != "" {
		w.clauses = append(w.clauses, col+" = ?")
		w.args = append(w.args, v)
	}
}

func (w *where) like(col, v string) {
	if v != "" {
		w.clauses = append(w.clauses, col+" LIKE ?")
		w.args = append(w.args, "%"+v+"%")
	}
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// Customers returns customers matching f, ordered by id.
func (s *DB) Customers(ctx context.Context, f CustomerFilter) ([]Customer, error) {
	var w where
	w.eq("id", f.ID)
	w.like("name", f.Name)
	w.like("email", f.Email)
	w.like("phone", f.Phone)

	rows, err := s.Query(ctx, "SELECT id, name, email, phone, created_at FROM customers"+w.String()+" ORDER BY id", w.args...)
	if err != nil {
		return nil, err
	}
	out := make([]Customer, 0, len(rows))
	for _, r := range rows {
		out = append(out, customerFromRow(r))
	}
	return out, nil
}

// CreateCustomer inserts a customer and returns it as stored.
func (s *DB) CreateCustomer(ctx context.Context, name, email, phone string) (Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Customer{}, fmt.Errorf("customer name: %w", ErrEmptyInput)
	}

	insertCtx, cancel := s.withTimeout(ctx)
	id, err := s.insert(insertCtx, s.db, "INSERT INTO customers (name, email, phone) VALUES (?, ?, ?)", name, email, phone)
	cancel()
	if err != nil {
		return Customer{}, fmt.Errorf("failed to create customer: %w", err)
	}
	logging.Store("Created customer %d (%s)", id, name)

	created, err := s.Customers(ctx, CustomerFilter{ID: id})
	if err != nil {
		return Customer{}, err
	}
	if len(created) == 0 {
		return Customer{}, fmt.Errorf("customer %d not found after insert", id)
	}
	return created[0], nil
}

// Orders returns orders matching f, ordered by id.
func (s *DB) Orders(ctx context.Context, f OrderFilter) ([]Order, error) {
	var w where
	w.eq("id", f.ID)
	w.eq("customer_id", f.CustomerID)

	rows, err := s.Query(ctx, "SELECT id, customer_id, total, status, created_at FROM orders"+w.String()+" ORDER BY id", w.args...)
	if err != nil {
		return nil, err
	}
	out := make([]Order, 0, len(rows))
	for _, r := range rows {
		out = append(out, Order{
			ID:         r.Int64("id"),
			CustomerID: r.Int64("customer_id"),
			Total:      r.Decimal("total"),
			Status:     r.String("status"),
			CreatedAt:  r.String("created_at"),
		})
	}
	return out, nil
}

// Leads returns leads matching f, ordered by id.
func (s *DB) Leads(ctx context.Context, f LeadFilter) ([]Lead, error) {
	var w where
	w.eq("id", f.ID)
	w.like("contact_email", f.Email)
	w.eqText("status", f.Status)

	rows, err := s.Query(ctx, "SELECT id, contact_email, status, score, created_at FROM leads"+w.String()+" ORDER BY id", w.args...)
	if err != nil {
		return nil, err
	}
	out := make([]Lead, 0, len(rows))
	for _, r := range rows {
		out = append(out, Lead{
			ID:           r.Int64("id"),
			ContactEmail: r.String("contact_email"),
			Status:       r.String("status"),
			Score:        r.Float64Ptr("score"),
			CreatedAt:    r.String("created_at"),
		})
	}
	return out, nil
}

func customerFromRow(r types.Row) Customer {
	return Customer{
		ID:        r.Int64("id"),
		Name:      r.String("name"),
		Email:     r.String("email"),
		Phone:     r.String("phone"),
		CreatedAt: r.String("created_at"),
	}
}
