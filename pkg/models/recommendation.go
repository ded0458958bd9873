package models

import "time"

// RiskLevel rates a recommendation before operator approval.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ApprovalStatus is the lifecycle state of a recommendation.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Architecture is a snapshot of a service's provisioned shape.
type Architecture struct {
	VCPU             float64 `json:"vcpu"`
	MemoryMB         int64   `json:"memory_mb"`
	MinInstances     int     `json:"min_instances"`
	MaxInstances     int     `json:"max_instances"`
	ConcurrencyLimit int     `json:"concurrency_limit"`
}

// CostImpact compares the monthly cost of the current and recommended
// architectures. SavingsUSD is always CurrentMonthlyUSD - OptimizedMonthlyUSD.
type CostImpact struct {
	CurrentMonthlyUSD   float64 `json:"current_monthly_usd"`
	OptimizedMonthlyUSD float64 `json:"optimized_monthly_usd"`
	SavingsUSD          float64 `json:"savings_usd"`
	SavingsPercentage   float64 `json:"savings_percentage"`
	WithinFreeTier      bool    `json:"within_free_tier"`
}

// Recommendation is the engine's cost-optimization proposal for one resource.
// Only the approval fields change after generation, and only through the
// approval workflow.
type Recommendation struct {
	RecommendationID string `json:"recommendation_id"`
	ResourceID       string `json:"resource_id"`
	ProjectID        string `json:"project_id"`
	ClassificationID string `json:"classification_id"`

	CurrentArchitecture     Architecture `json:"current_architecture"`
	RecommendedArchitecture Architecture `json:"recommended_architecture"`

	CostImpact          CostImpact `json:"cost_impact"`
	RiskLevel           RiskLevel  `json:"risk_level"`
	Explanation         []string   `json:"explanation"`
	ImplementationSteps []string   `json:"implementation_steps"`

	ApprovalStatus ApprovalStatus `json:"approval_status"`
	ApprovedBy     string         `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time     `json:"approved_at,omitempty"`

	RecommendedAt time.Time `json:"recommended_at"`
}

// NoOp reports whether the recommendation leaves the architecture unchanged.
func (r *Recommendation) NoOp() bool {
	return r.CurrentArchitecture == r.RecommendedArchitecture
}
