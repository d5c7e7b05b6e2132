package router

import (
	"fmt"
	"strings"
)

// Domain is a business area a request can be routed to.
type Domain string

const (
	DomainSales     Domain = "sales"
	DomainFinance   Domain = "finance"
	DomainInventory Domain = "inventory"
	DomainAnalytics Domain = "analytics"
	DomainUnknown   Domain = "unknown"
)

// Domains returns the routable domains in tie-break order.
func Domains() []Domain {
	return []Domain{DomainSales, DomainFinance, DomainInventory, DomainAnalytics}
}

func (d Domain) String() string { return string(d) }

// Title is the display name, e.g. "Sales".
func (d Domain) Title() string {
	if d == "" {
		return ""
	}
	return strings.ToUpper(string(d[:1])) + string(d[1:])
}

// ParseDomain parses a domain name, case-insensitively.
func ParseDomain(s string) (Domain, error) {
	d := Domain(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case DomainSales, DomainFinance, DomainInventory, DomainAnalytics, DomainUnknown:
		return d, nil
	}
	return "", fmt.Errorf("unknown domain %q", s)
}

// keywords are matched as lowercase substrings of the request.
var keywords = map[Domain][]string{
	DomainSales: {
		"customer", "lead", "prospect", "order", "purchase", "ticket",
		"crm", "client", "quote", "deal", "support", "follow-up",
	},
	DomainFinance: {
		"invoice", "billing", "payment", "refund", "transaction", "ledger",
		"account", "policy", "budget", "cashflow", "expense", "tax", "anomaly",
	},
	DomainInventory: {
		"inventory", "stock", "warehouse", "supplier", "delivery", "supply",
		"purchase order", "po", "receipt", "shipment", "logistics", "forecast", "restock",
	},
	DomainAnalytics: {
		"report", "kpi", "metric", "dashboard", "analytics", "performance",
		"trend", "statistics", "sql", "chart", "visualization", "summary", "insight",
	},
}
