// Package agents implements the domain handlers the router dispatches to.
//
// Every agent answers deterministically from the store or the reporter. When
// a model client is configured the deterministic answer is handed to it for
// narration; if that fails the plain answer is returned unchanged.
package agents

import (
	"context"
	"fmt"

	"agenticerp/internal/logging"
	"agenticerp/internal/reports"
	"agenticerp/internal/router"
	"agenticerp/internal/store"
	"agenticerp/internal/types"
)

// DefaultLowStockThreshold is the stock level at or below which a product is flagged.
const DefaultLowStockThreshold int64 = 10

// Directory is the store surface used by the sales agent.
type Directory interface {
	Customers(ctx context.Context, f store.CustomerFilter) ([]store.Customer, error)
	Orders(ctx context.Context, f store.OrderFilter) ([]store.Order, error)
	Leads(ctx context.Context, f store.LeadFilter) ([]store.Lead, error)
}

// ReportBuilder builds analytics reports.
type ReportBuilder interface {
	Build(ctx context.Context, kind reports.Kind) reports.Result
}

// Deps are the collaborators shared by the agents. LLM may be nil.
type Deps struct {
	Directory         Directory
	Reports           ReportBuilder
	LLM               types.LLMClient
	LowStockThreshold int64
}

// Handlers builds the full dispatch table for the router.
func Handlers(deps Deps) map[router.Domain]router.Handler {
	return map[router.Domain]router.Handler{
		router.DomainSales:     NewSalesAgent(deps.Directory, deps.LLM),
		router.DomainFinance:   NewFinanceAgent(deps.Reports, deps.LLM),
		router.DomainInventory: NewInventoryAgent(deps.Reports, deps.LLM, deps.LowStockThreshold),
		router.DomainAnalytics: NewAnalyticsAgent(deps.Reports, deps.LLM),
	}
}

// narrator rewrites a deterministic answer through the model client.
type narrator struct {
	llm    types.LLMClient
	system string
}

func (n narrator) narrate(ctx context.Context, question, answer string) string {
	if n.llm == nil || answer == "" {
		return answer
	}

	timer := logging.StartTimer(logging.CategoryAgents, "narrate")
	defer timer.Stop()

	prompt := fmt.Sprintf(narrationTemplate, question, answer)
	out, err := n.llm.CompleteWithSystem(ctx, n.system, prompt)
	if err != nil {
		logging.AgentsWarn("Narration failed, returning plain answer: %v", err)
		return answer
	}
	return out
}

// build runs one report and turns its error variant into a Go error.
func build(ctx context.Context, rb ReportBuilder, kind reports.Kind) (reports.Result, error) {
	res := rb.Build(ctx, kind)
	if !res.OK() {
		return res, res.Err
	}
	return res, nil
}
