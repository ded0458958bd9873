package models

// WorkloadType is the closed set of workload behavior labels.
type WorkloadType string

const (
	WorkloadBursty          WorkloadType = "bursty"
	WorkloadAlwaysOn        WorkloadType = "always_on"
	WorkloadOverProvisioned WorkloadType = "over_provisioned"
	WorkloadIdle            WorkloadType = "idle"
	WorkloadUnknown         WorkloadType = "unknown"
)

// Classification labels one FeatureWindow with a workload type, a confidence
// and the ranked factors that contributed to the decision. Immutable once
// created; references its FeatureWindow by AnalysisID.
type Classification struct {
	ClassificationID string             `json:"classification_id"`
	ResourceID       string             `json:"resource_id"`
	ProjectID        string             `json:"project_id"`
	AnalysisID       string             `json:"analysis_id"`
	WorkloadType     WorkloadType       `json:"workload_type"`
	Confidence       float64            `json:"confidence"`
	Reasoning        []string           `json:"reasoning"`
	KeyMetrics       map[string]float64 `json:"key_metrics"`
}
