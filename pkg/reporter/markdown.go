package reporter

import (
	"fmt"
	"io"
)

// GenerateMarkdown creates a Markdown report
func GenerateMarkdown(report *Report, writer io.Writer) error {
	fmt.Fprintf(writer, "# Cost Optimization Report\n\n")
	fmt.Fprintf(writer, "Project: `%s`  \n", report.ProjectID)
	fmt.Fprintf(writer, "Generated: %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	fmt.Fprintf(writer, "## Summary\n\n")
	fmt.Fprintf(writer, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(writer, "| Resources analyzed | %d |\n", report.ResourceCount)
	fmt.Fprintf(writer, "| Optimization opportunities | %d |\n", report.OptimizableCount)
	fmt.Fprintf(writer, "| Total monthly savings | $%.2f |\n\n", report.TotalSavings)

	if len(report.WorkloadTypeStats) > 0 {
		fmt.Fprintf(writer, "## By Workload Type\n\n")
		fmt.Fprintf(writer, "| Type | Resources | Recommendations | Savings |\n|---|---|---|---|\n")
		for _, stat := range sortedTypeStats(report) {
			fmt.Fprintf(writer, "| %s | %d | %d | $%.2f |\n",
				stat.WorkloadType, stat.Count, stat.Recommendations, stat.TotalSavings)
		}
		fmt.Fprintln(writer)
	}

	fmt.Fprintf(writer, "## Recommendations\n\n")
	for i, rec := range report.Recommendations {
		fmt.Fprintf(writer, "### %d. %s\n\n", i+1, rec.ResourceID)
		fmt.Fprintf(writer, "- Risk: **%s**, status: **%s**\n", rec.RiskLevel, rec.ApprovalStatus)
		fmt.Fprintf(writer, "- Savings: $%.2f/mo (%.1f%%)\n",
			rec.CostImpact.SavingsUSD, rec.CostImpact.SavingsPercentage)
		fmt.Fprintf(writer, "- Current: %g vCPU / %d MB, min=%d max=%d\n",
			rec.CurrentArchitecture.VCPU, rec.CurrentArchitecture.MemoryMB,
			rec.CurrentArchitecture.MinInstances, rec.CurrentArchitecture.MaxInstances)
		fmt.Fprintf(writer, "- Recommended: %g vCPU / %d MB, min=%d max=%d\n",
			rec.RecommendedArchitecture.VCPU, rec.RecommendedArchitecture.MemoryMB,
			rec.RecommendedArchitecture.MinInstances, rec.RecommendedArchitecture.MaxInstances)

		if len(rec.Explanation) > 0 {
			fmt.Fprintln(writer)
			for _, line := range rec.Explanation {
				fmt.Fprintf(writer, "> %s\n", line)
			}
		}
		fmt.Fprintln(writer)
	}

	return nil
}
