package datasource

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/runixlabs/runix/pkg/models"
)

func TestMockSourceDeterministic(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	a, err := NewMockSource("p", 7).FetchWindow(context.Background(), MockBursty, start, end)
	if err != nil {
		t.Fatalf("FetchWindow failed: %v", err)
	}
	b, err := NewMockSource("p", 7).FetchWindow(context.Background(), MockBursty, start, end)
	if err != nil {
		t.Fatalf("FetchWindow failed: %v", err)
	}

	if len(a) != len(b) {
		t.Fatalf("Same seed produced different sample counts: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !reflect.DeepEqual(a[i], b[i]) {
			t.Fatalf("Same seed produced different sample at %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestMockSourceSamplesStayInWindow(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Hour)

	samples, err := NewMockSource("p", 1).FetchWindow(context.Background(), MockIdle, start, end)
	if err != nil {
		t.Fatalf("FetchWindow failed: %v", err)
	}
	if len(samples) == 0 {
		t.Fatal("Expected samples")
	}
	for _, s := range samples {
		if s.Timestamp.Before(start) || !s.Timestamp.Before(end) {
			t.Fatalf("Sample at %s outside window [%s, %s)", s.Timestamp, start, end)
		}
		if s.ResourceID != MockIdle {
			t.Fatalf("Unexpected resource %s", s.ResourceID)
		}
	}
}

func TestMockSourceIdlePatternIsIdle(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	samples, err := NewMockSource("p", 3).FetchWindow(context.Background(), MockIdle, start, end)
	if err != nil {
		t.Fatalf("FetchWindow failed: %v", err)
	}

	var cpuCount, lowCount int
	for _, s := range samples {
		if s.MetricType != models.MetricCPUUtilization {
			continue
		}
		cpuCount++
		if s.Value < 5.0 {
			lowCount++
		}
	}
	if cpuCount == 0 {
		t.Fatal("Expected CPU samples")
	}
	if ratio := float64(lowCount) / float64(cpuCount); ratio < 0.85 {
		t.Errorf("Expected idle pattern to stay below 5%% CPU at least 85%% of the time, got %.2f", ratio)
	}
}

func TestMockSourceUnknownResource(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if _, err := NewMockSource("p", 1).FetchWindow(context.Background(), "no-such-service", start, start.Add(time.Hour)); err == nil {
		t.Error("Expected error for unknown mock resource")
	}
}

func TestMockSourceListResources(t *testing.T) {
	resources, err := NewMockSource("p", 1).ListResources(context.Background())
	if err != nil {
		t.Fatalf("ListResources failed: %v", err)
	}
	if len(resources) != 4 {
		t.Errorf("Expected 4 mock resources, got %d", len(resources))
	}
}
