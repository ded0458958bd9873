package models

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"
)

func TestFeatureWindowMarshalsUnavailableAsNull(t *testing.T) {
	fw := FeatureWindow{
		AnalysisID:  "an-1",
		ResourceID:  "svc-a",
		WindowStart: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		WindowEnd:   time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC),
		CPUMean:     45.5,
		// everything else unavailable
		CPUStdDev: math.NaN(), CPUP50: math.NaN(), CPUP95: math.NaN(),
		CPUP99: math.NaN(), CPUMin: math.NaN(), CPUMax: math.NaN(),
		MemoryMean: math.NaN(), MemoryStdDev: math.NaN(), MemoryP95: math.NaN(),
		RequestRateMean: math.NaN(), RequestRateStdDev: math.NaN(),
		RequestRateP95: math.NaN(), RequestTotal: math.NaN(),
		ConcurrencyMean: math.NaN(), ConcurrencyP95: math.NaN(),
		BurstinessScore: math.NaN(), IdleRatio: math.NaN(),
		ActiveHoursPerDay: math.NaN(), DiurnalPatternStrength: math.NaN(),
		CostIdleRatio: math.NaN(), EfficiencyScore: math.NaN(),
		OverProvisionPenalty: math.NaN(),
		SampleCount:          168,
	}

	data, err := json.Marshal(fw)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	s := string(data)
	if !strings.Contains(s, `"cpu_mean":45.5`) {
		t.Errorf("Expected available value serialized as number: %s", s)
	}
	if !strings.Contains(s, `"burstiness_score":null`) {
		t.Errorf("Expected unavailable value serialized as null: %s", s)
	}
	if strings.Contains(s, "NaN") {
		t.Errorf("NaN leaked into JSON: %s", s)
	}
}

func TestFeatureWindowUnmarshalRestoresUnavailable(t *testing.T) {
	payload := `{
		"analysis_id": "an-1",
		"resource_id": "svc-a",
		"cpu_mean": 45.5,
		"idle_ratio": null,
		"burstiness_score": 2.5,
		"sample_count": 168
	}`

	var fw FeatureWindow
	if err := json.Unmarshal([]byte(payload), &fw); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if fw.CPUMean != 45.5 {
		t.Errorf("Expected cpu_mean 45.5, got %.2f", fw.CPUMean)
	}
	if Available(fw.IdleRatio) {
		t.Errorf("Expected null to restore as unavailable, got %.2f", fw.IdleRatio)
	}
	if fw.BurstinessScore != 2.5 {
		t.Errorf("Expected burstiness 2.5, got %.2f", fw.BurstinessScore)
	}
	// absent fields are unavailable too
	if Available(fw.EfficiencyScore) {
		t.Errorf("Expected absent field unavailable, got %.2f", fw.EfficiencyScore)
	}
}

func TestAvailable(t *testing.T) {
	if Available(Unavailable()) {
		t.Error("Unavailable() should not be Available")
	}
	if !Available(0) {
		t.Error("Zero is a real value and must be Available")
	}
}

func TestDashboardRowMarshalsUnavailableAsNull(t *testing.T) {
	row := DashboardRow{
		ResourceID:      "svc-a",
		WorkloadType:    WorkloadUnknown,
		EfficiencyScore: math.NaN(),
		IdleRatio:       math.NaN(),
		RiskLevel:       RiskHigh,
		ApprovalStatus:  ApprovalPending,
	}

	data, err := json.Marshal(&row)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	s := string(data)
	if !strings.Contains(s, `"efficiency_score":null`) {
		t.Errorf("Expected unavailable efficiency serialized as null: %s", s)
	}
	if !strings.Contains(s, `"idle_ratio":null`) {
		t.Errorf("Expected unavailable idle ratio serialized as null: %s", s)
	}

	var decoded DashboardRow
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if Available(decoded.EfficiencyScore) || Available(decoded.IdleRatio) {
		t.Errorf("Expected null feature values to restore as unavailable, got %+v", decoded)
	}
}

func TestRecommendationNoOp(t *testing.T) {
	arch := Architecture{VCPU: 1, MemoryMB: 512, MinInstances: 1}
	rec := Recommendation{CurrentArchitecture: arch, RecommendedArchitecture: arch}
	if !rec.NoOp() {
		t.Error("Identical architectures should be a no-op")
	}

	rec.RecommendedArchitecture.MinInstances = 0
	if rec.NoOp() {
		t.Error("Changed min_instances should not be a no-op")
	}
}
