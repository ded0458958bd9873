package reporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
)

// GenerateCSV creates a CSV report
func GenerateCSV(report *Report, writer io.Writer) error {
	w := csv.NewWriter(writer)
	defer w.Flush()

	header := []string{
		"Resource",
		"Project",
		"Current vCPU",
		"Current Memory (MB)",
		"Current Min Instances",
		"Recommended vCPU",
		"Recommended Memory (MB)",
		"Recommended Min Instances",
		"Monthly Savings ($)",
		"Savings (%)",
		"Risk",
		"Status",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, rec := range report.Recommendations {
		row := []string{
			rec.ResourceID,
			rec.ProjectID,
			fmt.Sprintf("%g", rec.CurrentArchitecture.VCPU),
			fmt.Sprintf("%d", rec.CurrentArchitecture.MemoryMB),
			fmt.Sprintf("%d", rec.CurrentArchitecture.MinInstances),
			fmt.Sprintf("%g", rec.RecommendedArchitecture.VCPU),
			fmt.Sprintf("%d", rec.RecommendedArchitecture.MemoryMB),
			fmt.Sprintf("%d", rec.RecommendedArchitecture.MinInstances),
			fmt.Sprintf("%.2f", rec.CostImpact.SavingsUSD),
			fmt.Sprintf("%.1f", rec.CostImpact.SavingsPercentage),
			string(rec.RiskLevel),
			string(rec.ApprovalStatus),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	// Summary rows
	w.Write([]string{})
	w.Write([]string{"SUMMARY"})
	w.Write([]string{"Total Resources", fmt.Sprintf("%d", report.ResourceCount)})
	w.Write([]string{"Optimization Opportunities", fmt.Sprintf("%d", report.OptimizableCount)})
	w.Write([]string{"Total Monthly Savings", fmt.Sprintf("$%.2f", report.TotalSavings)})

	// Workload type breakdown
	w.Write([]string{})
	w.Write([]string{"WORKLOAD TYPE BREAKDOWN"})
	w.Write([]string{"Type", "Resources", "Recommendations", "Savings"})
	for _, stat := range sortedTypeStats(report) {
		w.Write([]string{
			string(stat.WorkloadType),
			fmt.Sprintf("%d", stat.Count),
			fmt.Sprintf("%d", stat.Recommendations),
			fmt.Sprintf("$%.2f", stat.TotalSavings),
		})
	}

	return nil
}

// sortedTypeStats orders the per-type breakdown by savings, largest first.
func sortedTypeStats(report *Report) []*WorkloadTypeStats {
	stats := make([]*WorkloadTypeStats, 0, len(report.WorkloadTypeStats))
	for _, stat := range report.WorkloadTypeStats {
		stats = append(stats, stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].TotalSavings != stats[j].TotalSavings {
			return stats[i].TotalSavings > stats[j].TotalSavings
		}
		return stats[i].WorkloadType < stats[j].WorkloadType
	})
	return stats
}
