// Package recommender turns a workload classification into a cost-optimal
// architecture proposal with an auditable cost impact.
package recommender

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/runixlabs/runix/pkg/config"
	"github.com/runixlabs/runix/pkg/models"
	"github.com/runixlabs/runix/pkg/pricing"
)

const (
	minVCPU     = 0.25
	vcpuStep    = 0.25
	minMemoryMB = 128
	memoryStep  = 128
)

// Recommender maps a classification plus features to an architecture
// transform and prices both sides of it.
type Recommender struct {
	thresholds *config.Thresholds
	pricing    pricing.Provider
}

// New creates a recommender with the given thresholds and pricing provider.
func New(thresholds *config.Thresholds, provider pricing.Provider) *Recommender {
	if thresholds == nil {
		thresholds = config.DefaultThresholds()
	}
	if provider == nil {
		provider = pricing.NewServerlessProvider(thresholds)
	}
	return &Recommender{
		thresholds: thresholds,
		pricing:    provider,
	}
}

// Recommend produces a Recommendation for one classified resource. An
// unknown classification yields a no-op recommendation with zero cost
// impact; the pipeline always produces a well-formed record.
func (r *Recommender) Recommend(cls *models.Classification, fw *models.FeatureWindow, current models.Architecture) *models.Recommendation {
	rec := &models.Recommendation{
		RecommendationID:    uuid.New().String(),
		ResourceID:          cls.ResourceID,
		ProjectID:           cls.ProjectID,
		ClassificationID:    cls.ClassificationID,
		CurrentArchitecture: current,
		ApprovalStatus:      models.ApprovalPending,
		RecommendedAt:       time.Now().UTC(),
	}

	var recommended models.Architecture
	switch cls.WorkloadType {
	case models.WorkloadIdle:
		recommended = r.transformIdle(current)
	case models.WorkloadBursty:
		recommended = r.transformBursty(fw, current)
	case models.WorkloadOverProvisioned:
		recommended = r.rightSize(fw, current)
	case models.WorkloadAlwaysOn:
		recommended = r.transformAlwaysOn(fw, current)
	default:
		rec.RecommendedArchitecture = current
		rec.CostImpact = models.CostImpact{}
		rec.RiskLevel = models.RiskHigh
		rec.Explanation = []string{"insufficient data to classify workload; architecture left unchanged"}
		rec.ImplementationSteps = []string{}
		return rec
	}

	rec.RecommendedArchitecture = recommended
	rec.CostImpact = pricing.Impact(r.pricing, current, recommended, usageOf(fw))
	rec.RiskLevel = r.assessRisk(cls, fw, current, recommended)
	rec.Explanation = explainChanges(cls, fw, current, recommended)
	rec.ImplementationSteps = implementationSteps(current, recommended)
	return rec
}

// transformIdle eliminates warm-instance cost; the service scales to zero
// between requests.
func (r *Recommender) transformIdle(current models.Architecture) models.Architecture {
	out := current
	out.MinInstances = 0
	return out
}

// transformBursty scales to zero at idle, widens max instances to cover p95
// concurrency and lowers the per-instance concurrency limit so bursts fan
// out instead of queueing.
func (r *Recommender) transformBursty(fw *models.FeatureWindow, current models.Architecture) models.Architecture {
	out := current
	out.MinInstances = 0

	if models.Available(fw.ConcurrencyP95) {
		needed := int(math.Ceil(fw.ConcurrencyP95 * r.thresholds.SafetyMargin))
		if needed > out.MaxInstances {
			out.MaxInstances = needed
		}
	}
	if current.ConcurrencyLimit > 1 {
		lowered := int(float64(current.ConcurrencyLimit) * r.thresholds.ConcurrencyReduction)
		if lowered < 1 {
			lowered = 1
		}
		out.ConcurrencyLimit = lowered
	}
	return out
}

// transformAlwaysOn keeps at least one warm instance for latency and
// right-sizes compute to observed p95.
func (r *Recommender) transformAlwaysOn(fw *models.FeatureWindow, current models.Architecture) models.Architecture {
	out := r.rightSize(fw, current)
	if out.MinInstances < 1 {
		out.MinInstances = 1
	}
	return out
}

// rightSize scales vcpu and memory down toward observed p95 utilization with
// the configured safety margin. Provisioning is never scaled up here.
func (r *Recommender) rightSize(fw *models.FeatureWindow, current models.Architecture) models.Architecture {
	out := current

	if models.Available(fw.CPUP95) {
		target := current.VCPU * (fw.CPUP95 / 100) * r.thresholds.SafetyMargin
		target = roundStep(target, vcpuStep, minVCPU)
		if target < out.VCPU {
			out.VCPU = target
		}
	}
	if models.Available(fw.MemoryP95) {
		target := float64(current.MemoryMB) * (fw.MemoryP95 / 100) * r.thresholds.SafetyMargin
		targetMB := int64(roundStep(target, memoryStep, minMemoryMB))
		if targetMB < out.MemoryMB {
			out.MemoryMB = targetMB
		}
	}
	return out
}

// assessRisk rates the transform before operator approval. Scaling to zero
// without knowing the daily traffic shape is the riskiest change.
func (r *Recommender) assessRisk(cls *models.Classification, fw *models.FeatureWindow, current, recommended models.Architecture) models.RiskLevel {
	if cls.Confidence < r.thresholds.HighRiskConfidence {
		return models.RiskHigh
	}
	if recommended.MinInstances == 0 && current.MinInstances > 0 && !models.Available(fw.DiurnalPatternStrength) {
		return models.RiskHigh
	}
	if cls.Confidence < r.thresholds.MediumRiskConfidence {
		return models.RiskMedium
	}
	return models.RiskLow
}

// usageOf derives the billable-usage profile from the feature window.
func usageOf(fw *models.FeatureWindow) pricing.Usage {
	usage := pricing.Usage{ActiveRatio: 1}
	if models.Available(fw.IdleRatio) {
		usage.ActiveRatio = 1 - fw.IdleRatio
	}
	if models.Available(fw.RequestTotal) {
		windowDays := fw.WindowEnd.Sub(fw.WindowStart).Hours() / 24
		if windowDays > 0 {
			usage.MonthlyRequests = fw.RequestTotal / windowDays * 30
		}
	}
	return usage
}

// roundStep rounds v up to the nearest step, with a floor.
func roundStep(v, step, floor float64) float64 {
	rounded := math.Ceil(v/step) * step
	if rounded < floor {
		return floor
	}
	return rounded
}

func fmtVCPU(v float64) string {
	return fmt.Sprintf("%g", v)
}
