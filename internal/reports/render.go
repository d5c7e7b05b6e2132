package reports

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Section headers of the text reports.
const (
	HeaderSales     = "SALES ANALYTICS REPORT"
	HeaderCustomer  = "CUSTOMER ANALYTICS REPORT"
	HeaderProduct   = "PRODUCT ANALYTICS REPORT"
	HeaderFinancial = "FINANCIAL SUMMARY"
)

const noRows = "  (none)\n"

// currency formats d with two decimals and no grouping, e.g. "$1234.50".
func currency(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

func header(b *strings.Builder, title string) {
	b.WriteString(title)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("=", len(title)))
	b.WriteString("\n\n")
}

func orName(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

// RenderSales renders the sales report text.
func RenderSales(s *SalesReport) string {
	var b strings.Builder
	header(&b, HeaderSales)

	b.WriteString("Top Customers:\n")
	if len(s.TopCustomers) == 0 {
		b.WriteString(noRows)
	}
	for i, c := range s.TopCustomers {
		fmt.Fprintf(&b, "  %d. %s - %d orders - %s\n", i+1, orName(c.CustomerName, "(unnamed)"), c.OrderCount, currency(c.TotalValue))
	}

	b.WriteString("\nSales by Status:\n")
	if len(s.SalesByStatus) == 0 {
		b.WriteString(noRows)
	}
	for _, st := range s.SalesByStatus {
		fmt.Fprintf(&b, "  %s: %d orders - %s\n", orName(st.Status, "(no status)"), st.OrderCount, currency(st.TotalValue))
	}

	fmt.Fprintf(&b, "\nMonthly Sales (last %d months):\n", TrailingMonths)
	if len(s.MonthlySales) == 0 {
		b.WriteString(noRows)
	}
	for _, m := range s.MonthlySales {
		fmt.Fprintf(&b, "  %s: %d orders - %s\n", m.Month, m.OrderCount, currency(m.TotalValue))
	}

	fmt.Fprintf(&b, "\nAverage Order Value: %s\n", currency(s.AverageOrderValue))

	fmt.Fprintf(&b, "\nNew Customers (last %d months):\n", TrailingMonths)
	if len(s.NewCustomers) == 0 {
		b.WriteString(noRows)
	}
	for _, m := range s.NewCustomers {
		fmt.Fprintf(&b, "  %s: %d\n", m.Month, m.NewCustomers)
	}

	return b.String()
}

// RenderCustomer renders the customer report text.
func RenderCustomer(c *CustomerReport) string {
	var b strings.Builder
	header(&b, HeaderCustomer)

	b.WriteString("Customer Growth:\n")
	if len(c.CustomerGrowth) == 0 {
		b.WriteString(noRows)
	}
	for _, m := range c.CustomerGrowth {
		fmt.Fprintf(&b, "  %s: %d new customers\n", orName(m.Month, "(undated)"), m.NewCustomers)
	}

	b.WriteString("\nCustomer Activity:\n")
	if len(c.CustomerActivity) == 0 {
		b.WriteString(noRows)
	}
	for _, a := range c.CustomerActivity {
		fmt.Fprintf(&b, "  %s: %d orders - %s spent\n", orName(a.CustomerName, "(unnamed)"), a.OrderCount, currency(a.TotalSpent))
	}

	b.WriteString("\nLead Status:\n")
	if len(c.LeadStatus) == 0 {
		b.WriteString(noRows)
	}
	for _, l := range c.LeadStatus {
		fmt.Fprintf(&b, "  %s: %d leads - avg score %.2f\n", orName(l.Status, "(no status)"), l.Count, l.AverageScore)
	}

	return b.String()
}

// RenderProduct renders the product report text.
func RenderProduct(p *ProductReport) string {
	var b strings.Builder
	header(&b, HeaderProduct)

	b.WriteString("Top Products by Sales:\n")
	if len(p.TopProductsBySales) == 0 {
		b.WriteString(noRows)
	}
	for i, s := range p.TopProductsBySales {
		fmt.Fprintf(&b, "  %d. %s: %d sold - %s revenue\n", i+1, orName(s.ProductName, "(unnamed)"), s.TotalSold, currency(s.TotalRevenue))
	}

	b.WriteString("\nTop Products by Reviews:\n")
	if len(p.TopProductsByReviews) == 0 {
		b.WriteString(noRows)
	}
	for i, r := range p.TopProductsByReviews {
		name := orName(r.ProductName, "(unnamed)")
		if r.AverageRating == nil {
			fmt.Fprintf(&b, "  %d. %s: no reviews\n", i+1, name)
			continue
		}
		fmt.Fprintf(&b, "  %d. %s: %.2f avg rating (%d reviews)\n", i+1, name, *r.AverageRating, r.ReviewCount)
	}

	b.WriteString("\nInventory Summary:\n")
	if len(p.InventorySummary) == 0 {
		b.WriteString(noRows)
	}
	for _, s := range p.InventorySummary {
		fmt.Fprintf(&b, "  %s: %d in stock\n", orName(s.ProductName, "(unnamed)"), s.StockQuantity)
	}

	return b.String()
}

// RenderFinancial renders the financial summary text.
func RenderFinancial(f *FinancialSummary) string {
	var b strings.Builder
	header(&b, HeaderFinancial)
	fmt.Fprintf(&b, "Total Revenue: %s\n", currency(f.TotalRevenue))
	fmt.Fprintf(&b, "Total Cost: %s\n", currency(f.TotalCost))
	fmt.Fprintf(&b, "Total Profit: %s\n", currency(f.TotalProfit))
	return b.String()
}

// Render renders any report data value.
func Render(data any) string {
	switch d := data.(type) {
	case *SalesReport:
		return RenderSales(d)
	case *CustomerReport:
		return RenderCustomer(d)
	case *ProductReport:
		return RenderProduct(d)
	case *FinancialSummary:
		return RenderFinancial(d)
	default:
		return ""
	}
}
