package reports

import (
	"context"
	"fmt"
	"time"

	"agenticerp/internal/types"

	"github.com/shopspring/decimal"
)

// SalesReport is the structured sales analytics bundle.
type SalesReport struct {
	TopCustomers      []CustomerTotal `json:"top_customers"`
	SalesByStatus     []StatusTotal   `json:"sales_by_status"`
	MonthlySales      []MonthTotal    `json:"monthly_sales_last_6_months"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	NewCustomers      []MonthCount    `json:"new_customers_last_6_months"`
}

type CustomerTotal struct {
	CustomerID   int64           `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	OrderCount   int64           `json:"order_count"`
	TotalValue   decimal.Decimal `json:"total_value"`
}

type StatusTotal struct {
	Status     string          `json:"status"`
	OrderCount int64           `json:"order_count"`
	TotalValue decimal.Decimal `json:"total_value"`
}

type MonthTotal struct {
	Month      string          `json:"month"`
	OrderCount int64           `json:"order_count"`
	TotalValue decimal.Decimal `json:"total_value"`
}

type MonthCount struct {
	Month        string `json:"month"`
	NewCustomers int64  `json:"new_customers"`
}

// CustomerReport is the structured customer analytics bundle.
type CustomerReport struct {
	CustomerGrowth   []MonthCount       `json:"customer_growth"`
	CustomerActivity []CustomerActivity `json:"customer_activity"`
	LeadStatus       []LeadStatus       `json:"lead_status"`
}

type CustomerActivity struct {
	CustomerID   int64           `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	OrderCount   int64           `json:"order_count"`
	TotalSpent   decimal.Decimal `json:"total_spent"`
}

// LeadStatus aggregates leads per status. Unscored leads count as 0 in AverageScore.
type LeadStatus struct {
	Status       string  `json:"status"`
	Count        int64   `json:"count"`
	AverageScore float64 `json:"avg_score"`
}

// ProductReport is the structured product analytics bundle.
type ProductReport struct {
	TopProductsBySales   []ProductSales  `json:"top_products_by_sales"`
	TopProductsByReviews []ProductRating `json:"top_products_by_reviews"`
	InventorySummary     []StockLevel    `json:"inventory_summary"`
}

type ProductSales struct {
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name"`
	TotalSold    int64           `json:"total_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// ProductRating has a nil AverageRating when the product has no reviews.
type ProductRating struct {
	ProductID     int64    `json:"product_id"`
	ProductName   string   `json:"product_name"`
	ReviewCount   int64    `json:"review_count"`
	AverageRating *float64 `json:"avg_rating"`
}

type StockLevel struct {
	ProductID     int64  `json:"product_id"`
	ProductName   string `json:"product_name"`
	StockQuantity int64  `json:"stock_quantity"`
}

// FinancialSummary covers order items of completed orders only.
type FinancialSummary struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	TotalProfit  decimal.Decimal `json:"total_profit"`
}

// CompletedStatus is the order status counted by the financial summary.
const CompletedStatus = "completed"

// TrailingMonths is the window of the monthly sales sections, current month included.
const TrailingMonths = 6

// windowStart returns the first instant of the month TrailingMonths-1 months before now.
func windowStart(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month()-(TrailingMonths-1), 1, 0, 0, 0, 0, time.UTC)
}

func money(r types.Row, col string) decimal.Decimal {
	return r.Decimal(col).Round(2)
}

func (r *Reporter) query(ctx context.Context, section, q string, args ...any) ([]types.Row, error) {
	rows, err := r.exec.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", section, err)
	}
	return rows, nil
}

func (r *Reporter) buildSales(ctx context.Context) (any, error) {
	since := r.dialect.TimeArg(windowStart(r.now()))
	out := &SalesReport{
		TopCustomers:  []CustomerTotal{},
		SalesByStatus: []StatusTotal{},
		MonthlySales:  []MonthTotal{},
		NewCustomers:  []MonthCount{},
	}

	rows, err := r.query(ctx, "top customers", `
		SELECT c.id AS customer_id, c.name AS customer_name,
		       COUNT(o.id) AS order_count,
		       COALESCE(SUM(o.total), 0) AS total_value
		FROM customers c
		JOIN orders o ON c.id = o.customer_id
		GROUP BY c.id, c.name
		ORDER BY total_value DESC, c.id ASC
		LIMIT 10`)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out.TopCustomers = append(out.TopCustomers, CustomerTotal{
			CustomerID:   row.Int64("customer_id"),
			CustomerName: row.String("customer_name"),
			OrderCount:   row.Int64("order_count"),
			TotalValue:   money(row, "total_value"),
		})
	}

	rows, err = r.query(ctx, "sales by status", `
		SELECT status, COUNT(*) AS order_count, COALESCE(SUM(total), 0) AS total_value
		FROM orders
		GROUP BY status
		ORDER BY status`)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out.SalesByStatus = append(out.SalesByStatus, StatusTotal{
			Status:     row.String("status"),
			OrderCount: row.Int64("order_count"),
			TotalValue: money(row, "total_value"),
		})
	}

	rows, err = r.query(ctx, "monthly sales", fmt.Sprintf(`
		SELECT %s AS month, COUNT(*) AS order_count, COALESCE(SUM(total), 0) AS total_value
		FROM orders
		WHERE created_at >= ?
		GROUP BY month
		ORDER BY month`, r.dialect.MonthBucket("created_at")), since)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out.MonthlySales = append(out.MonthlySales, MonthTotal{
			Month:      row.String("month"),
			OrderCount: row.Int64("order_count"),
			TotalValue: money(row, "total_value"),
		})
	}

	rows, err = r.query(ctx, "average order value",
		`SELECT COALESCE(AVG(total), 0) AS avg_order_value FROM orders`)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		out.AverageOrderValue = money(rows[0], "avg_order_value")
	}

	rows, err = r.query(ctx, "new customers", fmt.Sprintf(`
		SELECT %s AS month, COUNT(*) AS new_customers
		FROM customers
		WHERE created_at >= ?
		GROUP BY month
		ORDER BY month`, r.dialect.MonthBucket("created_at")), since)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out.NewCustomers = append(out.NewCustomers, MonthCount{
			Month:        row.String("month"),
			NewCustomers: row.Int64("new_customers"),
		})
	}

	return out, nil
}

func (r *Reporter) buildCustomer(ctx context.Context) (any, error) {
	out := &CustomerReport{
		CustomerGrowth:   []MonthCount{},
		CustomerActivity: []CustomerActivity{},
		LeadStatus:       []LeadStatus{},
	}

	rows, err := r.query(ctx, "customer growth", fmt.Sprintf(`
		SELECT %s AS month, COUNT(*) AS new_customers
		FROM customers
		GROUP BY month
		ORDER BY month`, r.dialect.MonthBucket("created_at")))
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out.CustomerGrowth = append(out.CustomerGrowth, MonthCount{
			Month:        row.String("month"),
			NewCustomers: row.Int64("new_customers"),
		})
	}

	rows, err = r.query(ctx, "customer activity", `
		SELECT c.id AS customer_id, c.name AS customer_name,
		       COUNT(o.id) AS order_count,
		       COALESCE(SUM(o.total), 0) AS total_spent
		FROM customers c
		LEFT JOIN orders o ON c.id = o.customer_id
		GROUP BY c.id, c.name
		ORDER BY total_spent DESC, c.id ASC`)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out.CustomerActivity = append(out.CustomerActivity, CustomerActivity{
			CustomerID:   row.Int64("customer_id"),
			CustomerName: row.String("customer_name"),
			OrderCount:   row.Int64("order_count"),
			TotalSpent:   money(row, "total_spent"),
		})
	}

	rows, err = r.query(ctx, "lead status", `
		SELECT status, COUNT(*) AS count, AVG(COALESCE(score, 0)) AS avg_score
		FROM leads
		GROUP BY status
		ORDER BY status`)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out.LeadStatus = append(out.LeadStatus, LeadStatus{
			Status:       row.String("status"),
			Count:        row.Int64("count"),
			AverageScore: row.Float64("avg_score"),
		})
	}

	return out, nil
}

func (r *Reporter) buildProduct(ctx context.Context) (any, error) {
	out := &ProductReport{
		TopProductsBySales:   []ProductSales{},
		TopProductsByReviews: []ProductRating{},
		InventorySummary:     []StockLevel{},
	}

	rows, err := r.query(ctx, "top products by sales", `
		SELECT p.id AS product_id, p.name AS product_name,
		       COALESCE(SUM(oi.quantity), 0) AS total_sold,
		       COALESCE(SUM(oi.quantity * oi.unit_price), 0) AS total_revenue
		FROM products p
		JOIN order_items oi ON p.id = oi.product_id
		GROUP BY p.id, p.name
		ORDER BY total_sold DESC, p.id ASC
		LIMIT 10`)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out.TopProductsBySales = append(out.TopProductsBySales, ProductSales{
			ProductID:    row.Int64("product_id"),
			ProductName:  row.String("product_name"),
			TotalSold:    row.Int64("total_sold"),
			TotalRevenue: money(row, "total_revenue"),
		})
	}

	// Unreviewed products sort after every rated one
	rows, err = r.query(ctx, "top products by reviews", `
		SELECT p.id AS product_id, p.name AS product_name,
		       COUNT(r.id) AS review_count,
		       AVG(r.rating) AS avg_rating
		FROM products p
		LEFT JOIN reviews r ON p.id = r.product_id
		GROUP BY p.id, p.name
		ORDER BY CASE WHEN AVG(r.rating) IS NULL THEN 1 ELSE 0 END, avg_rating DESC, p.id ASC
		LIMIT 10`)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out.TopProductsByReviews = append(out.TopProductsByReviews, ProductRating{
			ProductID:     row.Int64("product_id"),
			ProductName:   row.String("product_name"),
			ReviewCount:   row.Int64("review_count"),
			AverageRating: row.Float64Ptr("avg_rating"),
		})
	}

	rows, err = r.query(ctx, "inventory summary", `
		SELECT id AS product_id, name AS product_name, stock_quantity
		FROM products
		ORDER BY stock_quantity ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out.InventorySummary = append(out.InventorySummary, StockLevel{
			ProductID:     row.Int64("product_id"),
			ProductName:   row.String("product_name"),
			StockQuantity: row.Int64("stock_quantity"),
		})
	}

	return out, nil
}

func (r *Reporter) buildFinancial(ctx context.Context) (any, error) {
	rows, err := r.query(ctx, "financial summary", `
		SELECT COALESCE(SUM(oi.unit_price * oi.quantity), 0) AS total_revenue,
		       COALESCE(SUM(oi.cost * oi.quantity), 0) AS total_cost
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.status = ?`, CompletedStatus)
	if err != nil {
		return nil, err
	}

	out := &FinancialSummary{TotalRevenue: decimal.Zero, TotalCost: decimal.Zero}
	if len(rows) > 0 {
		out.TotalRevenue = money(rows[0], "total_revenue")
		out.TotalCost = money(rows[0], "total_cost")
	}
	out.TotalProfit = out.TotalRevenue.Sub(out.TotalCost)
	return out, nil
}
