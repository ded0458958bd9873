package explainer

import (
	"context"
	"fmt"

	"github.com/runixlabs/runix/pkg/models"
)

// TemplateExplainer phrases the facts with fixed templates. It is fully
// deterministic and never fails, which makes it both the fallback for the
// remote collaborator and the implementation used in tests.
type TemplateExplainer struct{}

// NewTemplateExplainer creates the deterministic fallback explainer.
func NewTemplateExplainer() *TemplateExplainer {
	return &TemplateExplainer{}
}

func (t *TemplateExplainer) Name() string {
	return "template"
}

// Generate renders one paragraph per fact group.
func (t *TemplateExplainer) Generate(_ context.Context, facts Facts) ([]string, error) {
	out := []string{headline(facts)}

	if idle, ok := facts.KeyMetrics["idle_ratio"]; ok {
		out = append(out, fmt.Sprintf("The service was idle %.0f%% of the analysis window.", idle*100))
	}
	if b, ok := facts.KeyMetrics["burstiness_score"]; ok && b > 1 {
		out = append(out, fmt.Sprintf("Peak traffic runs %.1fx above the average, so capacity is sized for bursts.", b))
	}
	if eff, ok := facts.KeyMetrics["efficiency_score"]; ok {
		out = append(out, fmt.Sprintf("Overall efficiency score: %.0f/100.", eff))
	}

	ci := facts.CostImpact
	if ci.SavingsUSD > 0 {
		out = append(out, fmt.Sprintf(
			"Applying the recommended architecture reduces the monthly bill from $%.2f to $%.2f, saving $%.2f (%.0f%%).",
			ci.CurrentMonthlyUSD, ci.OptimizedMonthlyUSD, ci.SavingsUSD, ci.SavingsPercentage))
	} else {
		out = append(out, "No cost reduction is available for the current usage profile.")
	}
	return out, nil
}

func headline(facts Facts) string {
	switch facts.WorkloadType {
	case models.WorkloadIdle:
		return "This service is almost entirely idle; it can scale to zero between requests."
	case models.WorkloadBursty:
		return "This service handles bursty traffic with long quiet periods; scale-to-zero with burst headroom fits it best."
	case models.WorkloadOverProvisioned:
		return "This service is provisioned well above its observed peak usage."
	case models.WorkloadAlwaysOn:
		return "This service serves steady traffic around the clock; right-sizing with a warm instance fits it best."
	default:
		return fmt.Sprintf("Not enough data to characterize this workload (confidence %.2f).", facts.Confidence)
	}
}
