package reporter

import (
	"time"

	"github.com/runixlabs/runix/pkg/models"
)

// ReportFormat represents the output format
type ReportFormat string

const (
	FormatMarkdown ReportFormat = "markdown"
	FormatCSV      ReportFormat = "csv"
)

// Report contains all data for generating reports
type Report struct {
	ProjectID         string
	GeneratedAt       time.Time
	Recommendations   []*models.Recommendation
	TotalSavings      float64
	ResourceCount     int
	OptimizableCount  int
	WorkloadTypeStats map[models.WorkloadType]*WorkloadTypeStats
}

// WorkloadTypeStats holds statistics per workload type
type WorkloadTypeStats struct {
	WorkloadType    models.WorkloadType
	Count           int
	TotalSavings    float64
	Recommendations int
}

// Reporter generates cost optimization reports
type Reporter struct {
	format ReportFormat
}

// New creates a new reporter
func New(format ReportFormat) *Reporter {
	return &Reporter{
		format: format,
	}
}

// Generate builds a report from recommendations paired with their workload
// types, keyed by recommendation ID.
func (r *Reporter) Generate(recs []*models.Recommendation, types map[string]models.WorkloadType, projectID string) (*Report, error) {
	report := &Report{
		ProjectID:         projectID,
		GeneratedAt:       time.Now(),
		Recommendations:   recs,
		WorkloadTypeStats: make(map[models.WorkloadType]*WorkloadTypeStats),
	}

	for _, rec := range recs {
		report.ResourceCount++
		report.TotalSavings += rec.CostImpact.SavingsUSD
		if !rec.NoOp() {
			report.OptimizableCount++
		}

		workloadType, ok := types[rec.RecommendationID]
		if !ok {
			workloadType = models.WorkloadUnknown
		}
		stat, exists := report.WorkloadTypeStats[workloadType]
		if !exists {
			stat = &WorkloadTypeStats{WorkloadType: workloadType}
			report.WorkloadTypeStats[workloadType] = stat
		}
		stat.Count++
		stat.TotalSavings += rec.CostImpact.SavingsUSD
		if !rec.NoOp() {
			stat.Recommendations++
		}
	}

	return report, nil
}
