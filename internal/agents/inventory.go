package agents

import (
	"context"
	"fmt"
	"strings"

	"agenticerp/internal/reports"
	"agenticerp/internal/router"
	"agenticerp/internal/types"
)

// HeaderInventory heads the inventory listing.
const HeaderInventory = "INVENTORY STATUS"

// InventoryView is the structured answer of the inventory agent.
type InventoryView struct {
	Threshold int64                `json:"low_stock_threshold"`
	Items     []reports.StockLevel `json:"items"`
	LowStock  []reports.StockLevel `json:"low_stock"`
}

// InventoryAgent lists stock in restock priority and flags low stock.
type InventoryAgent struct {
	reports   ReportBuilder
	threshold int64
	narrator
}

// NewInventoryAgent creates the agent. A negative threshold uses DefaultLowStockThreshold.
func NewInventoryAgent(rb ReportBuilder, llm types.LLMClient, threshold int64) *InventoryAgent {
	if threshold < 0 {
		threshold = DefaultLowStockThreshold
	}
	return &InventoryAgent{
		reports:   rb,
		threshold: threshold,
		narrator:  narrator{llm: llm, system: InventorySystemPrompt},
	}
}

func (a *InventoryAgent) Handle(ctx context.Context, req router.Request) (router.Response, error) {
	res, err := build(ctx, a.reports, reports.KindProduct)
	if err != nil {
		return router.Response{}, err
	}
	product, ok := res.Data.(*reports.ProductReport)
	if !ok {
		return router.Response{}, fmt.Errorf("unexpected product report data %T", res.Data)
	}

	view := InventoryView{
		Threshold: a.threshold,
		Items:     product.InventorySummary,
		LowStock:  []reports.StockLevel{},
	}
	for _, s := range product.InventorySummary {
		if s.StockQuantity <= a.threshold {
			view.LowStock = append(view.LowStock, s)
		}
	}

	return router.Response{Text: a.narrate(ctx, req.Text, RenderInventory(view)), Data: view}, nil
}

// RenderInventory renders the inventory listing.
func RenderInventory(v InventoryView) string {
	var b strings.Builder
	b.WriteString(HeaderInventory + "\n")
	b.WriteString(strings.Repeat("=", len(HeaderInventory)) + "\n\n")

	b.WriteString("Restock Priority (lowest stock first):\n")
	if len(v.Items) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, s := range v.Items {
		fmt.Fprintf(&b, "  %s: %d in stock\n", s.ProductName, s.StockQuantity)
	}

	fmt.Fprintf(&b, "\nLow Stock (at or below %d):\n", v.Threshold)
	if len(v.LowStock) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, s := range v.LowStock {
		fmt.Fprintf(&b, "  %s: %d in stock\n", s.ProductName, s.StockQuantity)
	}
	return b.String()
}
