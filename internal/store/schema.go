package store

import (
	"context"
	"database/sql"
	"fmt"

	"agenticerp/internal/logging"
)

// Tables lists the ERP tables in creation order.
var Tables = []string{"customers", "orders", "products", "order_items", "leads", "reviews"}

// EnsureSchema creates the ERP tables and indexes that are missing.
// Existing tables are never altered.
func (s *DB) EnsureSchema(ctx context.Context) error {
	timer := logging.StartTimer(logging.CategoryStore, "EnsureSchema")
	defer timer.Stop()

	for _, stmt := range s.dialect.Schema() {
		if _, err := s.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	logging.Store("Schema ready (%s)", s.dialect.Name())
	return nil
}

// SeedResult reports what Seed inserted.
type SeedResult struct {
	Skipped    bool
	Customers  int
	Orders     int
	Products   int
	OrderItems int
	Leads      int
	Reviews    int
}

type seedItem struct {
	order, product int // indexes into the seeded orders/products
	quantity       int
	unitPrice      float64
	cost           float64
}

// Seed inserts the sample dataset in one transaction.
// It does nothing when customers already exist.
func (s *DB) Seed(ctx context.Context) (SeedResult, error) {
	rows, err := s.Query(ctx, "SELECT COUNT(*) AS n FROM customers")
	if err != nil {
		return SeedResult{}, fmt.Errorf("failed to check existing data: %w", err)
	}
	if len(rows) > 0 && rows[0].Int64("n") > 0 {
		logging.StoreDebug("Seed skipped: %d customers present", rows[0].Int64("n"))
		return SeedResult{Skipped: true}, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SeedResult{}, s.wrapErr(ctx, "begin seed", err)
	}
	defer tx.Rollback()

	var res SeedResult

	customers := [][]any{
		{"Alice", "alice@example.com", "1111111111"},
		{"Bob", "bob@example.com", "2222222222"},
	}
	customerIDs := make([]int64, 0, len(customers))
	for _, c := range customers {
		id, err := s.insert(ctx, tx, "INSERT INTO customers (name, email, phone) VALUES (?, ?, ?)", c...)
		if err != nil {
			return SeedResult{}, err
		}
		customerIDs = append(customerIDs, id)
		res.Customers++
	}

	orders := []struct {
		customer int
		total    float64
		status   string
	}{
		{0, 100.0, "completed"},
		{1, 200.0, "pending"},
	}
	orderIDs := make([]int64, 0, len(orders))
	for _, o := range orders {
		id, err := s.insert(ctx, tx, "INSERT INTO orders (customer_id, total, status) VALUES (?, ?, ?)",
			customerIDs[o.customer], o.total, o.status)
		if err != nil {
			return SeedResult{}, err
		}
		orderIDs = append(orderIDs, id)
		res.Orders++
	}

	products := [][]any{
		{"Product A", 50.0, 80.0, 100},
		{"Product B", 30.0, 60.0, 200},
	}
	productIDs := make([]int64, 0, len(products))
	for _, p := range products {
		id, err := s.insert(ctx, tx, "INSERT INTO products (name, cost, price, stock_quantity) VALUES (?, ?, ?, ?)", p...)
		if err != nil {
			return SeedResult{}, err
		}
		productIDs = append(productIDs, id)
		res.Products++
	}

	// Line items add up to the order totals
	items := []seedItem{
		{order: 0, product: 0, quantity: 1, unitPrice: 100.0, cost: 50.0},
		{order: 1, product: 1, quantity: 2, unitPrice: 60.0, cost: 30.0},
		{order: 1, product: 0, quantity: 1, unitPrice: 80.0, cost: 50.0},
	}
	for _, it := range items {
		if _, err := s.insert(ctx, tx,
			"INSERT INTO order_items (order_id, product_id, quantity, unit_price, cost) VALUES (?, ?, ?, ?, ?)",
			orderIDs[it.order], productIDs[it.product], it.quantity, it.unitPrice, it.cost); err != nil {
			return SeedResult{}, err
		}
		res.OrderItems++
	}

	leads := [][]any{
		{"lead1@example.com", "new", 80.0},
		{"lead2@example.com", "contacted", 90.0},
	}
	for _, l := range leads {
		if _, err := s.insert(ctx, tx, "INSERT INTO leads (contact_email, status, score) VALUES (?, ?, ?)", l...); err != nil {
			return SeedResult{}, err
		}
		res.Leads++
	}

	reviews := []struct {
		product int
		rating  float64
	}{
		{0, 5}, {0, 4}, {1, 3},
	}
	for _, r := range reviews {
		if _, err := s.insert(ctx, tx, "INSERT INTO reviews (product_id, rating) VALUES (?, ?)",
			productIDs[r.product], r.rating); err != nil {
			return SeedResult{}, err
		}
		res.Reviews++
	}

	if err := tx.Commit(); err != nil {
		return SeedResult{}, s.wrapErr(ctx, "commit seed", err)
	}

	logging.Store("Seeded %d customers, %d orders, %d products, %d order items, %d leads, %d reviews",
		res.Customers, res.Orders, res.Products, res.OrderItems, res.Leads, res.Reviews)
	return res, nil
}

// conn is satisfied by both *sql.DB and *sql.Tx.
type conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// insert runs an INSERT and returns the new row id.
func (s *DB) insert(ctx context.Context, tx conn, query string, args ...any) (int64, error) {
	if s.dialect.SupportsReturning() {
		var id int64
		if err := tx.QueryRowContext(ctx, s.dialect.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
			return 0, s.wrapErr(ctx, "insert", err)
		}
		return id, nil
	}

	res, err := tx.ExecContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return 0, s.wrapErr(ctx, "insert", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, s.wrapErr(ctx, "insert id", err)
	}
	return id, nil
}
