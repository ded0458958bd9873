package classifier

import (
	"math"

	"github.com/runixlabs/runix/pkg/config"
	"github.com/runixlabs/runix/pkg/models"
)

// defaultRules returns the candidate workload types in tie-break priority
// order: over_provisioned > idle > bursty > always_on. unknown is the
// implicit default when nothing fires.
func defaultRules() []Rule {
	return []Rule{
		{Type: models.WorkloadOverProvisioned, Priority: 4, Evaluate: evalOverProvisioned},
		{Type: models.WorkloadIdle, Priority: 3, Evaluate: evalIdle},
		{Type: models.WorkloadBursty, Priority: 2, Evaluate: evalBursty},
		{Type: models.WorkloadAlwaysOn, Priority: 1, Evaluate: evalAlwaysOn},
	}
}

func evalIdle(fw *models.FeatureWindow, t *config.Thresholds) *Match {
	if !models.Available(fw.IdleRatio) || fw.IdleRatio < t.IdleRatioCutoff {
		return nil
	}
	return &Match{
		Type:       models.WorkloadIdle,
		Confidence: math.Min(t.ConfidenceCap, fw.IdleRatio),
		Reason:     exceeds("idle_ratio", fw.IdleRatio, t.IdleRatioCutoff),
	}
}

func evalOverProvisioned(fw *models.FeatureWindow, t *config.Thresholds) *Match {
	if !models.Available(fw.OverProvisionPenalty) || fw.OverProvisionPenalty < t.OverProvisionMin {
		return nil
	}
	if models.Available(fw.IdleRatio) && fw.IdleRatio >= t.IdleRatioCutoff {
		return nil
	}
	return &Match{
		Type:       models.WorkloadOverProvisioned,
		Confidence: math.Min(t.ConfidenceCap, fw.OverProvisionPenalty),
		Reason:     exceeds("over_provision_penalty", fw.OverProvisionPenalty, t.OverProvisionMin),
	}
}

func evalBursty(fw *models.FeatureWindow, t *config.Thresholds) *Match {
	if !models.Available(fw.BurstinessScore) || fw.BurstinessScore < t.BurstinessCutoff {
		return nil
	}
	// an idle-dominant window is classified idle, not bursty
	if models.Available(fw.IdleRatio) && fw.IdleRatio >= t.IdleRatioCutoff {
		return nil
	}
	return &Match{
		Type:       models.WorkloadBursty,
		Confidence: math.Min(t.ConfidenceCap, fw.BurstinessScore/t.BurstinessConfDiv),
		Reason:     exceeds("burstiness_score", fw.BurstinessScore, t.BurstinessCutoff),
	}
}

// evalAlwaysOn fires only when none of the higher-priority rules fire and
// the utilization profile is flat across the day.
func evalAlwaysOn(fw *models.FeatureWindow, t *config.Thresholds) *Match {
	if evalOverProvisioned(fw, t) != nil || evalIdle(fw, t) != nil || evalBursty(fw, t) != nil {
		return nil
	}
	if !models.Available(fw.DiurnalPatternStrength) || fw.DiurnalPatternStrength >= t.FlatDiurnalCutoff {
		return nil
	}
	return &Match{
		Type:       models.WorkloadAlwaysOn,
		Confidence: t.AlwaysOnConfidence,
		Reason:     fallsBelow("diurnal_pattern_strength", fw.DiurnalPatternStrength, t.FlatDiurnalCutoff),
	}
}
