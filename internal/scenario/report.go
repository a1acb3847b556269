package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GenerateConsoleReport formats the comparison matrix for terminal output
func GenerateConsoleReport(rows []ComparisonRow) string {
	var builder strings.Builder
	builder.WriteString("Scenario Comparison\n")
	builder.WriteString("===================\n")
	for _, row := range rows {
		marker := ""
		if row.IsBaseline {
			marker = " [baseline]"
		}
		builder.WriteString(fmt.Sprintf("%s%s\n", row.ScenarioName, marker))
		builder.WriteString(fmt.Sprintf("  Total P&L: %.2f\n", row.Values["total_pnl"]))
		builder.WriteString(fmt.Sprintf("  Win Rate: %.2f%%\n", row.Values["win_rate"]))
		builder.WriteString(fmt.Sprintf("  Sharpe Ratio: %.2f\n", row.Values["sharpe_ratio"]))
		builder.WriteString(fmt.Sprintf("  Profit Factor: %.2f\n", row.Values["profit_factor"]))
		builder.WriteString(fmt.Sprintf("  Max Drawdown: %.2f\n", row.Values["max_drawdown"]))
		builder.WriteString(fmt.Sprintf("  Quality Score: %.2f\n", row.Values["trade_quality_score"]))
		if !row.IsBaseline && row.Delta != nil {
			builder.WriteString(fmt.Sprintf("  P&L vs baseline: %+.2f (%+.2f%%)\n",
				row.Delta["total_pnl"], row.DeltaPct["total_pnl"]))
		}
	}
	return builder.String()
}

// GenerateCSVExport writes the comparison matrix for spreadsheets
func GenerateCSVExport(rows []ComparisonRow, keys []string, outputPath string) error {
	if len(keys) == 0 {
		keys = DefaultComparisonKeys
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}

	var builder strings.Builder
	builder.WriteString("scenario_name,is_baseline")
	for _, key := range keys {
		builder.WriteString("," + key)
	}
	builder.WriteString("\n")

	for _, row := range rows {
		builder.WriteString(fmt.Sprintf("%s,%t", row.ScenarioName, row.IsBaseline))
		for _, key := range keys {
			builder.WriteString(fmt.Sprintf(",%.4f", row.Values[key]))
		}
		builder.WriteString("\n")
	}
	return os.WriteFile(outputPath, []byte(builder.String()), 0o644)
}
