package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Thresholds is the versioned rule/threshold configuration shared by the
// feature extractor, the classifier and the recommender. The zero value is
// not usable; start from DefaultThresholds.
type Thresholds struct {
	Version string `yaml:"version"`

	// Feature extraction
	CPUIdleThreshold float64 `yaml:"cpu_idle_threshold"` // CPU % below this counts as idle
	MinDiurnalSpan   float64 `yaml:"min_diurnal_span_hours"`
	OverProvisionHi  float64 `yaml:"over_provision_high"` // p95 % at or above which penalty is 0
	OverProvisionLo  float64 `yaml:"over_provision_low"`  // p95 % at or below which penalty is 1

	// Classification
	IdleRatioCutoff    float64 `yaml:"idle_ratio_cutoff"`
	OverProvisionMin   float64 `yaml:"over_provision_min"`
	BurstinessCutoff   float64 `yaml:"burstiness_cutoff"`
	BurstinessConfDiv  float64 `yaml:"burstiness_confidence_divisor"`
	FlatDiurnalCutoff  float64 `yaml:"flat_diurnal_cutoff"`
	AlwaysOnConfidence float64 `yaml:"always_on_confidence"`
	ConfidenceCap      float64 `yaml:"confidence_cap"`

	// Recommendation
	SafetyMargin         float64 `yaml:"safety_margin"` // applied to p95 when right-sizing
	ConcurrencyReduction float64 `yaml:"concurrency_reduction"`
	HighRiskConfidence   float64 `yaml:"high_risk_confidence"`
	MediumRiskConfidence float64 `yaml:"medium_risk_confidence"`

	// Pricing (Cloud Run style, per second / per request)
	CPUCostPerVCPUSecond   float64 `yaml:"cpu_cost_per_vcpu_second"`
	MemoryCostPerGiBSecond float64 `yaml:"memory_cost_per_gib_second"`
	RequestCost            float64 `yaml:"request_cost"`
	FreeTierCPUSeconds     float64 `yaml:"free_tier_cpu_seconds"`
	FreeTierGiBSeconds     float64 `yaml:"free_tier_gib_seconds"`
	FreeTierRequests       float64 `yaml:"free_tier_requests"`
}

// DefaultThresholds returns the built-in rule constants.
func DefaultThresholds() *Thresholds {
	return &Thresholds{
		Version: "v1",

		CPUIdleThreshold: 5.0,
		MinDiurnalSpan:   48.0,
		OverProvisionHi:  70.0,
		OverProvisionLo:  10.0,

		IdleRatioCutoff:    0.85,
		OverProvisionMin:   0.5,
		BurstinessCutoff:   2.0,
		BurstinessConfDiv:  4.0,
		FlatDiurnalCutoff:  0.3,
		AlwaysOnConfidence: 0.7,
		ConfidenceCap:      0.95,

		SafetyMargin:         1.2,
		ConcurrencyReduction: 0.8,
		HighRiskConfidence:   0.5,
		MediumRiskConfidence: 0.8,

		CPUCostPerVCPUSecond:   0.000024,
		MemoryCostPerGiBSecond: 0.0000025,
		RequestCost:            0.0000004,
		FreeTierCPUSeconds:     180000,
		FreeTierGiBSeconds:     360000,
		FreeTierRequests:       2000000,
	}
}

// LoadThresholds reads a threshold file, overlaying the defaults. Fields the
// file does not set keep their default values.
func LoadThresholds(path string) (*Thresholds, error) {
	t := DefaultThresholds()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read thresholds file: %w", err)
	}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to parse thresholds file: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks threshold sanity.
func (t *Thresholds) Validate() error {
	if t.Version == "" {
		return fmt.Errorf("thresholds version must be set")
	}
	if t.CPUIdleThreshold <= 0 || t.CPUIdleThreshold >= 100 {
		return fmt.Errorf("cpu_idle_threshold must be in (0, 100)")
	}
	if t.IdleRatioCutoff <= 0 || t.IdleRatioCutoff > 1 {
		return fmt.Errorf("idle_ratio_cutoff must be in (0, 1]")
	}
	if t.OverProvisionHi <= t.OverProvisionLo {
		return fmt.Errorf("over_provision_high must exceed over_provision_low")
	}
	if t.BurstinessCutoff < 1 {
		return fmt.Errorf("burstiness_cutoff must be >= 1")
	}
	if t.SafetyMargin < 1 {
		return fmt.Errorf("safety_margin must be >= 1")
	}
	if t.ConfidenceCap <= 0 || t.ConfidenceCap > 1 {
		return fmt.Errorf("confidence_cap must be in (0, 1]")
	}
	return nil
}
