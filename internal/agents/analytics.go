package agents

import (
	"context"
	"strings"

	"agenticerp/internal/reports"
	"agenticerp/internal/router"
	"agenticerp/internal/types"
)

// ReportKindFor picks the report an analytics request asks for.
func ReportKindFor(text string) reports.Kind {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "customer"):
		return reports.KindCustomer
	case strings.Contains(t, "product"):
		return reports.KindProduct
	case strings.Contains(t, "financial"), strings.Contains(t, "revenue"), strings.Contains(t, "profit"):
		return reports.KindFinancial
	default:
		return reports.KindSales
	}
}

// AnalyticsAgent answers with one of the canned reports.
type AnalyticsAgent struct {
	reports ReportBuilder
	narrator
}

func NewAnalyticsAgent(rb ReportBuilder, llm types.LLMClient) *AnalyticsAgent {
	return &AnalyticsAgent{reports: rb, narrator: narrator{llm: llm, system: AnalyticsSystemPrompt}}
}

func (a *AnalyticsAgent) Handle(ctx context.Context, req router.Request) (router.Response, error) {
	res, err := build(ctx, a.reports, ReportKindFor(req.Text))
	if err != nil {
		return router.Response{}, err
	}
	return router.Response{Text: a.narrate(ctx, req.Text, res.Report), Data: res.Data}, nil
}
