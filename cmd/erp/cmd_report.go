package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"agenticerp/internal/reports"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var reportJSON bool

// reportCmd builds analytics reports
var reportCmd = &cobra.Command{
	Use:   "report [sales|customer|product|financial|all]",
	Short: "Build an analytics report",
	Long: `Builds one of the canned analytics reports, or all of them concurrently.

Examples:
  erp report financial
  erp report all --json`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Print structured JSON instead of text")
}

func runReport(cmd *cobra.Command, args []string) error {
	var kinds []reports.Kind
	if !strings.EqualFold(args[0], "all") {
		k, err := reports.ParseKind(args[0])
		if err != nil {
			return err
		}
		kinds = append(kinds, k)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	sys, err := bootSystem(ctx)
	if err != nil {
		return err
	}
	defer sys.Close()

	results := sys.Reporter.BuildAll(ctx, kinds...)
	logger.Debug("Reports built", zap.Int("count", len(results)))

	if reportJSON {
		var v any = results
		if len(results) == 1 {
			v = results[0]
		}
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	for i, res := range results {
		if i > 0 {
			fmt.Println()
		}
		if !res.OK() {
			fmt.Printf("Error building %s report: %s\n", res.Kind, res.Err.Message)
			continue
		}
		fmt.Print(res.Report)
	}
	return nil
}
