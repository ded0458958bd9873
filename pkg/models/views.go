package models

import (
	"encoding/json"
	"time"
)

// LatestRecommendation is one row of the "latest recommendation per resource"
// read view, keyed by MAX(recommended_at) per resource_id.
type LatestRecommendation struct {
	ResourceID       string         `json:"resource_id"`
	ProjectID        string         `json:"project_id"`
	RecommendationID string         `json:"recommendation_id"`
	WorkloadType     WorkloadType   `json:"workload_type"`
	SavingsUSD       float64        `json:"savings_usd"`
	RiskLevel        RiskLevel      `json:"risk_level"`
	ApprovalStatus   ApprovalStatus `json:"approval_status"`
	RecommendedAt    time.Time      `json:"recommended_at"`
}

// DashboardRow joins resource, classification, feature and recommendation
// records for the dashboard summary view. EfficiencyScore and IdleRatio come
// from the feature window and may be unavailable (NaN, JSON null) when the
// analyzed window was empty.
type DashboardRow struct {
	ResourceID        string         `json:"resource_id"`
	ProjectID         string         `json:"project_id"`
	WorkloadType      WorkloadType   `json:"workload_type"`
	Confidence        float64        `json:"confidence"`
	EfficiencyScore   float64        `json:"efficiency_score"`
	IdleRatio         float64        `json:"idle_ratio"`
	CurrentMonthlyUSD float64        `json:"current_monthly_usd"`
	SavingsUSD        float64        `json:"savings_usd"`
	SavingsPercentage float64        `json:"savings_percentage"`
	RiskLevel         RiskLevel      `json:"risk_level"`
	ApprovalStatus    ApprovalStatus `json:"approval_status"`
	AnalyzedAt        time.Time      `json:"analyzed_at"`
}

// dashboardRowJSON mirrors DashboardRow with pointer fields for the feature
// values so that unavailable (NaN) values serialize as null instead of
// breaking encoding/json.
type dashboardRowJSON struct {
	ResourceID        string         `json:"resource_id"`
	ProjectID         string         `json:"project_id"`
	WorkloadType      WorkloadType   `json:"workload_type"`
	Confidence        float64        `json:"confidence"`
	EfficiencyScore   *float64       `json:"efficiency_score"`
	IdleRatio         *float64       `json:"idle_ratio"`
	CurrentMonthlyUSD float64        `json:"current_monthly_usd"`
	SavingsUSD        float64        `json:"savings_usd"`
	SavingsPercentage float64        `json:"savings_percentage"`
	RiskLevel         RiskLevel      `json:"risk_level"`
	ApprovalStatus    ApprovalStatus `json:"approval_status"`
	AnalyzedAt        time.Time      `json:"analyzed_at"`
}

// MarshalJSON serializes unavailable feature values as null.
func (d DashboardRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(dashboardRowJSON{
		ResourceID:        d.ResourceID,
		ProjectID:         d.ProjectID,
		WorkloadType:      d.WorkloadType,
		Confidence:        d.Confidence,
		EfficiencyScore:   optional(d.EfficiencyScore),
		IdleRatio:         optional(d.IdleRatio),
		CurrentMonthlyUSD: d.CurrentMonthlyUSD,
		SavingsUSD:        d.SavingsUSD,
		SavingsPercentage: d.SavingsPercentage,
		RiskLevel:         d.RiskLevel,
		ApprovalStatus:    d.ApprovalStatus,
		AnalyzedAt:        d.AnalyzedAt,
	})
}

// UnmarshalJSON restores null feature values as NaN.
func (d *DashboardRow) UnmarshalJSON(data []byte) error {
	var j dashboardRowJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}

	d.ResourceID = j.ResourceID
	d.ProjectID = j.ProjectID
	d.WorkloadType = j.WorkloadType
	d.Confidence = j.Confidence
	d.EfficiencyScore = fromOptional(j.EfficiencyScore)
	d.IdleRatio = fromOptional(j.IdleRatio)
	d.CurrentMonthlyUSD = j.CurrentMonthlyUSD
	d.SavingsUSD = j.SavingsUSD
	d.SavingsPercentage = j.SavingsPercentage
	d.RiskLevel = j.RiskLevel
	d.ApprovalStatus = j.ApprovalStatus
	d.AnalyzedAt = j.AnalyzedAt
	return nil
}

// DashboardStats aggregates the dashboard view for one project.
type DashboardStats struct {
	ProjectID             string  `json:"project_id"`
	ResourceCount         int     `json:"resource_count"`
	TotalPotentialSavings float64 `json:"total_potential_savings"`
	ApprovedCount         int     `json:"approved_count"`
	PendingCount          int     `json:"pending_count"`
	AdoptionRate          float64 `json:"adoption_rate"`
}
