package features

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/runixlabs/runix/pkg/models"
)

var windowStart = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func makeSamples(resourceID string, mt models.MetricType, count int, interval time.Duration, value func(i int) float64) []models.MetricSample {
	samples := make([]models.MetricSample, count)
	for i := 0; i < count; i++ {
		samples[i] = models.MetricSample{
			Timestamp:  windowStart.Add(time.Duration(i) * interval),
			ResourceID: resourceID,
			ProjectID:  "test-project",
			MetricType: mt,
			Value:      value(i),
		}
	}
	return samples
}

func TestExtractConstantSeries(t *testing.T) {
	// 7 days of hourly CPU samples at a constant 45%
	windowEnd := windowStart.Add(7 * 24 * time.Hour)
	samples := makeSamples("svc-a", models.MetricCPUUtilization, 7*24, time.Hour, func(int) float64 { return 45.0 })

	fw, err := NewExtractor(nil).Extract(samples, windowStart, windowEnd, "svc-a", "test-project")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if fw.CPUMean != 45.0 {
		t.Errorf("Expected cpu_mean 45.0, got %.2f", fw.CPUMean)
	}
	if fw.CPUStdDev != 0 {
		t.Errorf("Expected cpu_stddev 0, got %.4f", fw.CPUStdDev)
	}
	if fw.IdleRatio != 0 {
		t.Errorf("Expected idle_ratio 0, got %.2f", fw.IdleRatio)
	}
	if fw.ActiveHoursPerDay != 24.0 {
		t.Errorf("Expected active_hours_per_day 24.0, got %.1f", fw.ActiveHoursPerDay)
	}
	// no request series, so burstiness falls back to cpu p95/mean = 1
	if math.Abs(fw.BurstinessScore-1.0) > 1e-9 {
		t.Errorf("Expected burstiness 1.0 for constant series, got %.4f", fw.BurstinessScore)
	}
	// constant series has no daily cycle
	if fw.DiurnalPatternStrength != 0 {
		t.Errorf("Expected diurnal strength 0 for constant series, got %.4f", fw.DiurnalPatternStrength)
	}
	// penalty = (70 - 45) / (70 - 10)
	if math.Abs(fw.OverProvisionPenalty-25.0/60.0) > 1e-9 {
		t.Errorf("Expected over_provision_penalty %.4f, got %.4f", 25.0/60.0, fw.OverProvisionPenalty)
	}
	wantEfficiency := 100 * (1 - 25.0/60.0)
	if math.Abs(fw.EfficiencyScore-wantEfficiency) > 1e-9 {
		t.Errorf("Expected efficiency %.2f, got %.2f", wantEfficiency, fw.EfficiencyScore)
	}
}

func TestExtractEmptyWindow(t *testing.T) {
	windowEnd := windowStart.Add(24 * time.Hour)

	fw, err := NewExtractor(nil).Extract(nil, windowStart, windowEnd, "svc-a", "test-project")
	if err != nil {
		t.Fatalf("Extract failed on empty input: %v", err)
	}

	if !fw.Empty() {
		t.Errorf("Expected empty window, got sample_count %d", fw.SampleCount)
	}
	for name, v := range map[string]float64{
		"cpu_mean":         fw.CPUMean,
		"burstiness_score": fw.BurstinessScore,
		"idle_ratio":       fw.IdleRatio,
		"diurnal":          fw.DiurnalPatternStrength,
		"efficiency_score": fw.EfficiencyScore,
		"cost_idle_ratio":  fw.CostIdleRatio,
	} {
		if models.Available(v) {
			t.Errorf("Expected %s unavailable for empty window, got %.2f", name, v)
		}
	}
	if fw.AnalysisID == "" {
		t.Error("Expected analysis_id to be assigned even for empty windows")
	}
}

func TestExtractIdleService(t *testing.T) {
	// 1000 minutes at 2% CPU, all below the 5% idle threshold
	windowEnd := windowStart.Add(7 * 24 * time.Hour)
	samples := makeSamples("svc-idle", models.MetricCPUUtilization, 1000, time.Minute, func(int) float64 { return 2.0 })

	fw, err := NewExtractor(nil).ExtractWithOptions(samples, windowStart, windowEnd, "svc-idle", "test-project", Options{MinInstances: 1})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if fw.IdleRatio < 0.85 {
		t.Errorf("Expected idle_ratio >= 0.85, got %.2f", fw.IdleRatio)
	}
	// cost_idle_ratio = idle_ratio / (1 + min_instances)
	if math.Abs(fw.CostIdleRatio-fw.IdleRatio/2) > 1e-9 {
		t.Errorf("Expected cost_idle_ratio %.4f, got %.4f", fw.IdleRatio/2, fw.CostIdleRatio)
	}
}

func TestExtractRejectsSampleOutsideWindow(t *testing.T) {
	windowEnd := windowStart.Add(time.Hour)
	samples := []models.MetricSample{{
		Timestamp:  windowEnd, // window_end itself is excluded
		ResourceID: "svc-a",
		MetricType: models.MetricCPUUtilization,
		Value:      10,
	}}

	_, err := NewExtractor(nil).Extract(samples, windowStart, windowEnd, "svc-a", "p")
	var malformed *MalformedWindowInputError
	if !errors.As(err, &malformed) {
		t.Fatalf("Expected MalformedWindowInputError, got %v", err)
	}
	if malformed.ResourceID != "svc-a" {
		t.Errorf("Expected error to name svc-a, got %s", malformed.ResourceID)
	}
}

func TestExtractRejectsForeignResource(t *testing.T) {
	windowEnd := windowStart.Add(time.Hour)
	samples := []models.MetricSample{{
		Timestamp:  windowStart,
		ResourceID: "svc-other",
		MetricType: models.MetricCPUUtilization,
		Value:      10,
	}}

	_, err := NewExtractor(nil).Extract(samples, windowStart, windowEnd, "svc-a", "p")
	var malformed *MalformedWindowInputError
	if !errors.As(err, &malformed) {
		t.Fatalf("Expected MalformedWindowInputError, got %v", err)
	}
}

func TestExtractRejectsInvertedWindow(t *testing.T) {
	_, err := NewExtractor(nil).Extract(nil, windowStart, windowStart, "svc-a", "p")
	var malformed *MalformedWindowInputError
	if !errors.As(err, &malformed) {
		t.Fatalf("Expected MalformedWindowInputError for zero-length window, got %v", err)
	}
}

func TestExtractDuplicateTimestampLastWriteWins(t *testing.T) {
	windowEnd := windowStart.Add(time.Hour)
	at := windowStart.Add(time.Minute)
	samples := []models.MetricSample{
		{Timestamp: at, ResourceID: "svc-a", MetricType: models.MetricCPUUtilization, Value: 10},
		{Timestamp: at, ResourceID: "svc-a", MetricType: models.MetricCPUUtilization, Value: 80},
	}

	fw, err := NewExtractor(nil).Extract(samples, windowStart, windowEnd, "svc-a", "p")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if fw.CPUMean != 80 {
		t.Errorf("Expected later sample to win (cpu_mean 80), got %.2f", fw.CPUMean)
	}
	if fw.SampleCount != 1 {
		t.Errorf("Expected duplicates collapsed to 1 sample, got %d", fw.SampleCount)
	}
}

func TestExtractIgnoresUnknownMetricTypes(t *testing.T) {
	windowEnd := windowStart.Add(time.Hour)
	samples := []models.MetricSample{
		{Timestamp: windowStart, ResourceID: "svc-a", MetricType: "disk_iops", Value: 900},
		{Timestamp: windowStart, ResourceID: "svc-a", MetricType: models.MetricCPUUtilization, Value: 30},
	}

	fw, err := NewExtractor(nil).Extract(samples, windowStart, windowEnd, "svc-a", "p")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if fw.SampleCount != 1 {
		t.Errorf("Expected unknown metric type dropped, sample_count 1, got %d", fw.SampleCount)
	}
}

func TestBurstinessFromRequestRate(t *testing.T) {
	windowEnd := windowStart.Add(7 * 24 * time.Hour)
	// 90 quiet minutes at 10 req/min, 10 spikes at 910 req/min: mean 100, p95 910
	samples := makeSamples("svc-b", models.MetricRequestRate, 100, time.Minute, func(i int) float64 {
		if i%10 == 9 {
			return 910
		}
		return 10
	})

	fw, err := NewExtractor(nil).Extract(samples, windowStart, windowEnd, "svc-b", "p")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if fw.RequestRateMean != 100 {
		t.Errorf("Expected request_rate_mean 100, got %.2f", fw.RequestRateMean)
	}
	if fw.BurstinessScore < 2.0 {
		t.Errorf("Expected burstiness >= 2.0 for spiky traffic, got %.2f", fw.BurstinessScore)
	}
	if math.Abs(fw.RequestTotal-10000) > 1e-6 {
		t.Errorf("Expected request_total 10000, got %.2f", fw.RequestTotal)
	}
}

func TestBurstinessUnavailableForZeroMean(t *testing.T) {
	windowEnd := windowStart.Add(time.Hour)
	samples := makeSamples("svc-c", models.MetricRequestRate, 10, time.Minute, func(int) float64 { return 0 })

	fw, err := NewExtractor(nil).Extract(samples, windowStart, windowEnd, "svc-c", "p")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if models.Available(fw.BurstinessScore) {
		t.Errorf("Expected burstiness unavailable for zero-mean rate, got %.2f", fw.BurstinessScore)
	}
}
