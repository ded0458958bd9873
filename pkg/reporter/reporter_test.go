package reporter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/runixlabs/runix/pkg/models"
)

func sampleRecommendations() ([]*models.Recommendation, map[string]models.WorkloadType) {
	recs := []*models.Recommendation{
		{
			RecommendationID:        "rec-1",
			ResourceID:              "svc-idle",
			ProjectID:               "p",
			CurrentArchitecture:     models.Architecture{VCPU: 1, MemoryMB: 512, MinInstances: 1, MaxInstances: 10},
			RecommendedArchitecture: models.Architecture{VCPU: 1, MemoryMB: 512, MinInstances: 0, MaxInstances: 10},
			CostImpact:              models.CostImpact{CurrentMonthlyUSD: 70, OptimizedMonthlyUSD: 5, SavingsUSD: 65, SavingsPercentage: 92.9},
			RiskLevel:               models.RiskLow,
			Explanation:             []string{"Service is idle most of the month."},
			ApprovalStatus:          models.ApprovalPending,
		},
		{
			RecommendationID:        "rec-2",
			ResourceID:              "svc-steady",
			ProjectID:               "p",
			CurrentArchitecture:     models.Architecture{VCPU: 1, MemoryMB: 512, MinInstances: 1, MaxInstances: 10},
			RecommendedArchitecture: models.Architecture{VCPU: 1, MemoryMB: 512, MinInstances: 1, MaxInstances: 10},
			CostImpact:              models.CostImpact{CurrentMonthlyUSD: 70, OptimizedMonthlyUSD: 70},
			RiskLevel:               models.RiskHigh,
			ApprovalStatus:          models.ApprovalPending,
		},
	}
	types := map[string]models.WorkloadType{
		"rec-1": models.WorkloadIdle,
		"rec-2": models.WorkloadUnknown,
	}
	return recs, types
}

func TestGenerate(t *testing.T) {
	recs, types := sampleRecommendations()

	report, err := New(FormatMarkdown).Generate(recs, types, "p")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if report.ResourceCount != 2 {
		t.Errorf("Expected 2 resources, got %d", report.ResourceCount)
	}
	if report.OptimizableCount != 1 {
		t.Errorf("Expected 1 optimizable resource, got %d", report.OptimizableCount)
	}
	if report.TotalSavings != 65 {
		t.Errorf("Expected total savings 65, got %.2f", report.TotalSavings)
	}

	idleStats, ok := report.WorkloadTypeStats[models.WorkloadIdle]
	if !ok {
		t.Fatal("Expected stats for idle workload type")
	}
	if idleStats.Count != 1 || idleStats.Recommendations != 1 || idleStats.TotalSavings != 65 {
		t.Errorf("Unexpected idle stats: %+v", idleStats)
	}
}

func TestGenerateUnmappedRecommendationCountsAsUnknown(t *testing.T) {
	recs, _ := sampleRecommendations()

	report, err := New(FormatCSV).Generate(recs, nil, "p")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	stats, ok := report.WorkloadTypeStats[models.WorkloadUnknown]
	if !ok {
		t.Fatal("Expected unmapped recommendations grouped under unknown")
	}
	if stats.Count != 2 {
		t.Errorf("Expected 2 unknown resources, got %d", stats.Count)
	}
}

func TestGenerateCSV(t *testing.T) {
	recs, types := sampleRecommendations()
	report, err := New(FormatCSV).Generate(recs, types, "p")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	var buf bytes.Buffer
	if err := GenerateCSV(report, &buf); err != nil {
		t.Fatalf("GenerateCSV failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Resource,Project",
		"svc-idle,p,1,512,1,1,512,0,65.00,92.9,low,pending",
		"SUMMARY",
		"Total Monthly Savings,$65.00",
		"WORKLOAD TYPE BREAKDOWN",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("CSV missing %q:\n%s", want, out)
		}
	}
}

func TestGenerateCSVTypeBreakdownSortedBySavings(t *testing.T) {
	recs, types := sampleRecommendations()
	report, _ := New(FormatCSV).Generate(recs, types, "p")

	var buf bytes.Buffer
	if err := GenerateCSV(report, &buf); err != nil {
		t.Fatalf("GenerateCSV failed: %v", err)
	}

	out := buf.String()
	idleAt := strings.Index(out, "idle,1,1,$65.00")
	unknownAt := strings.Index(out, "unknown,1,0,$0.00")
	if idleAt == -1 || unknownAt == -1 {
		t.Fatalf("Breakdown rows missing:\n%s", out)
	}
	if idleAt > unknownAt {
		t.Error("Expected idle (larger savings) before unknown in breakdown")
	}
}

func TestGenerateMarkdown(t *testing.T) {
	recs, types := sampleRecommendations()
	report, err := New(FormatMarkdown).Generate(recs, types, "p")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	var buf bytes.Buffer
	if err := GenerateMarkdown(report, &buf); err != nil {
		t.Fatalf("GenerateMarkdown failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Cost Optimization Report",
		"| Resources analyzed | 2 |",
		"| Total monthly savings | $65.00 |",
		"## By Workload Type",
		"### 1. svc-idle",
		"> Service is idle most of the month.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Markdown missing %q:\n%s", want, out)
		}
	}
}
