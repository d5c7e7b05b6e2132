package agents

import (
	"context"

	"agenticerp/internal/reports"
	"agenticerp/internal/router"
	"agenticerp/internal/types"
)

// FinanceAgent answers with the financial summary.
type FinanceAgent struct {
	reports ReportBuilder
	narrator
}

func NewFinanceAgent(rb ReportBuilder, llm types.LLMClient) *FinanceAgent {
	return &FinanceAgent{reports: rb, narrator: narrator{llm: llm, system: FinanceSystemPrompt}}
}

func (a *FinanceAgent) Handle(ctx context.Context, req router.Request) (router.Response, error) {
	res, err := build(ctx, a.reports, reports.KindFinancial)
	if err != nil {
		return router.Response{}, err
	}
	return router.Response{Text: a.narrate(ctx, req.Text, res.Report), Data: res.Data}, nil
}
