// Package explainer turns computed analysis facts into prose. The engine
// decides which facts must be explained; implementations only phrase them.
package explainer

import (
	"context"
	"errors"

	"github.com/runixlabs/runix/pkg/models"
)

// ErrUnavailable indicates the explanation collaborator could not be
// reached. Callers recover with the deterministic template fallback; this
// error is never fatal to an analysis.
var ErrUnavailable = errors.New("explanation service unavailable")

// Facts is the payload sent to the explanation collaborator.
type Facts struct {
	WorkloadType            models.WorkloadType `json:"workload_type"`
	Confidence              float64             `json:"confidence"`
	KeyMetrics              map[string]float64  `json:"key_metrics"`
	RecommendedArchitecture models.Architecture `json:"recommended_architecture"`
	CostImpact              models.CostImpact   `json:"cost_impact"`
}

// Explainer generates an ordered list of prose strings for a set of facts.
type Explainer interface {
	Generate(ctx context.Context, facts Facts) ([]string, error)
	Name() string
}
