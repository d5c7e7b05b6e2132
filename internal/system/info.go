package system

import (
	"context"
	"fmt"
	"strings"

	"agenticerp/internal/router"
	"agenticerp/internal/store"
)

var agentSummaries = map[router.Domain]string{
	router.DomainSales:     "customers, orders and leads",
	router.DomainFinance:   "invoices, payments and the financial summary",
	router.DomainInventory: "stock levels, restock priority and low-stock alerts",
	router.DomainAnalytics: "sales, customer, product and financial reports",
}

// Info describes the running system.
type Info struct {
	Name      string   `json:"name"`
	Driver    string   `json:"driver"`
	Tables    []string `json:"tables"`
	KeyTables []string `json:"key_tables"`
	Agents    []string `json:"agents"`
	Narration bool     `json:"narration"`
}

// Info collects system information. A failed table listing is returned as an error.
func (s *System) Info(ctx context.Context) (Info, error) {
	tables, err := s.Store.ListTables(ctx)
	if err != nil {
		return Info{}, fmt.Errorf("failed to list tables: %w", err)
	}

	info := Info{
		Name:      s.Config.Name,
		Driver:    s.Store.Dialect().Name(),
		Tables:    tables,
		KeyTables: append([]string(nil), store.Tables...),
		Narration: s.LLM != nil,
	}
	for _, d := range router.Domains() {
		info.Agents = append(info.Agents, fmt.Sprintf("%s Agent - %s", d.Title(), agentSummaries[d]))
	}
	return info, nil
}

// String renders the information for the terminal.
func (i Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", i.Name)
	fmt.Fprintf(&b, "- Store: %s\n", i.Driver)
	fmt.Fprintf(&b, "- Database Tables: %d total\n", len(i.Tables))
	fmt.Fprintf(&b, "- Key Tables: %s\n", strings.Join(i.KeyTables, ", "))
	if i.Narration {
		b.WriteString("- Narration: enabled\n")
	} else {
		b.WriteString("- Narration: disabled\n")
	}
	b.WriteString("\nAvailable Agents (auto-routed):\n")
	for _, a := range i.Agents {
		fmt.Fprintf(&b, "  - %s\n", a)
	}
	b.WriteString("\nRequests are routed by the keywords they contain. Ask about customers, finance, inventory or analytics.\n")
	return b.String()
}
