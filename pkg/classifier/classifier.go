// Package classifier labels a feature vector with a workload type using a
// deterministic, rule-ranked decision procedure.
package classifier

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/runixlabs/runix/pkg/config"
	"github.com/runixlabs/runix/pkg/models"
)

// Match is the result of one rule firing against a feature vector.
type Match struct {
	Type       models.WorkloadType
	Confidence float64
	Reason     string
	priority   int
}

// Rule is one candidate workload type: a predicate plus a scoring function.
// Evaluate returns nil when the rule does not fire.
type Rule struct {
	Type models.WorkloadType
	// Priority breaks confidence ties; higher wins. The fixed order is
	// over_provisioned > idle > bursty > always_on > unknown.
	Priority int
	Evaluate func(fw *models.FeatureWindow, t *config.Thresholds) *Match
}

// Classifier scores each candidate workload type against a FeatureWindow and
// picks the highest-scoring one.
type Classifier struct {
	thresholds *config.Thresholds
	rules      []Rule
}

// New creates a classifier using the given rule thresholds.
func New(thresholds *config.Thresholds) *Classifier {
	if thresholds == nil {
		thresholds = config.DefaultThresholds()
	}
	return &Classifier{
		thresholds: thresholds,
		rules:      defaultRules(),
	}
}

// Classify produces a Classification for one FeatureWindow. Identical input
// always yields identical workload type, confidence and reasoning. A window
// with no usable features classifies unknown with confidence 0.
func (c *Classifier) Classify(fw *models.FeatureWindow) *models.Classification {
	var matches []Match
	for _, rule := range c.rules {
		if m := rule.Evaluate(fw, c.thresholds); m != nil {
			m.priority = rule.Priority
			matches = append(matches, *m)
		}
	}

	// order by contribution to the final score, priority breaking ties
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Confidence != matches[j].Confidence {
			return matches[i].Confidence > matches[j].Confidence
		}
		return matches[i].priority > matches[j].priority
	})

	cls := &models.Classification{
		ClassificationID: uuid.New().String(),
		ResourceID:       fw.ResourceID,
		ProjectID:        fw.ProjectID,
		AnalysisID:       fw.AnalysisID,
		WorkloadType:     models.WorkloadUnknown,
		Confidence:       0,
		Reasoning:        []string{},
		KeyMetrics:       keyMetrics(fw),
	}

	if len(matches) == 0 {
		return cls
	}

	cls.WorkloadType = matches[0].Type
	cls.Confidence = matches[0].Confidence
	for _, m := range matches {
		cls.Reasoning = append(cls.Reasoning, m.Reason)
	}
	return cls
}

// keyMetrics extracts the headline features that drove the decision,
// skipping unavailable values.
func keyMetrics(fw *models.FeatureWindow) map[string]float64 {
	km := make(map[string]float64)
	put := func(name string, v float64) {
		if models.Available(v) {
			km[name] = v
		}
	}

	put("cpu_mean", fw.CPUMean)
	put("cpu_p95", fw.CPUP95)
	put("idle_ratio", fw.IdleRatio)
	put("burstiness_score", fw.BurstinessScore)
	put("over_provision_penalty", fw.OverProvisionPenalty)
	put("diurnal_pattern_strength", fw.DiurnalPatternStrength)
	put("efficiency_score", fw.EfficiencyScore)
	put("active_hours_per_day", fw.ActiveHoursPerDay)
	return km
}

func exceeds(metric string, value, threshold float64) string {
	return fmt.Sprintf("%s = %.2f exceeds %.2f", metric, value, threshold)
}

func fallsBelow(metric string, value, threshold float64) string {
	return fmt.Sprintf("%s = %.2f falls below %.2f", metric, value, threshold)
}
