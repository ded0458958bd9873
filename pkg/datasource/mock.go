package datasource

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/runixlabs/runix/pkg/models"
)

// MockSource generates distinct synthetic workload patterns so the pipeline
// can be exercised without a live monitoring backend. Generation is seeded
// and deterministic.
type MockSource struct {
	projectID string
	seed      int64
}

// Mock resource names, one per pattern.
const (
	MockBursty          = "mock-bursty-service"
	MockAlwaysOn        = "mock-always-on-api"
	MockOverProvisioned = "mock-over-provisioned"
	MockIdle            = "mock-idle-service"
)

// NewMockSource creates a deterministic synthetic source.
func NewMockSource(projectID string, seed int64) *MockSource {
	return &MockSource{projectID: projectID, seed: seed}
}

func (m *MockSource) Name() string {
	return "mock"
}

func (m *MockSource) IsAvailable(context.Context) bool {
	return true
}

func (m *MockSource) ListResources(context.Context) ([]string, error) {
	return []string{MockBursty, MockAlwaysOn, MockOverProvisioned, MockIdle}, nil
}

// FetchWindow generates minute-resolution samples for one of the mock
// resources over the requested window.
func (m *MockSource) FetchWindow(_ context.Context, resourceID string, windowStart, windowEnd time.Time) ([]models.MetricSample, error) {
	switch resourceID {
	case MockBursty, MockAlwaysOn, MockOverProvisioned, MockIdle:
	default:
		return nil, fmt.Errorf("unknown mock resource %q", resourceID)
	}

	rng := rand.New(rand.NewSource(m.seed))
	var samples []models.MetricSample

	for at := windowStart; at.Before(windowEnd); at = at.Add(time.Minute) {
		cpu, mem, req, conc := m.point(resourceID, at, rng)
		samples = append(samples,
			m.sample(resourceID, at, models.MetricCPUUtilization, cpu),
			m.sample(resourceID, at, models.MetricMemoryUtilization, mem),
			m.sample(resourceID, at, models.MetricRequestRate, req),
			m.sample(resourceID, at, models.MetricConcurrency, conc),
		)
	}
	return samples, nil
}

func (m *MockSource) sample(resourceID string, at time.Time, mt models.MetricType, v float64) models.MetricSample {
	return models.MetricSample{
		Timestamp:  at,
		ResourceID: resourceID,
		ProjectID:  m.projectID,
		MetricType: mt,
		Value:      v,
	}
}

// point produces (cpu %, memory %, requests/min, instances) for one minute.
func (m *MockSource) point(resourceID string, at time.Time, rng *rand.Rand) (cpu, mem, req, conc float64) {
	hour := float64(at.Hour())

	switch resourceID {
	case MockBursty:
		// business-hours peak with random bursts, near-silent nights
		diurnal := 0.05
		if hour >= 9 && hour <= 18 {
			diurnal = math.Sin((hour-9)*math.Pi/9)*0.8 + 0.2
		}
		burst := 0.0
		if diurnal > 0.1 && rng.Float64() > 0.85 {
			burst = 0.4 + rng.Float64()*0.4
		}
		cpu = clampPct((diurnal*30+burst*50)+rng.NormFloat64()*5, 2, 90)
		mem = clampPct(diurnal*20+25+rng.NormFloat64()*5, 15, 60)
		req = math.Max(0, diurnal*200+burst*300+rng.Float64()*20)
		conc = 0
		if req > 30 {
			conc = 1
		}
		if req > 100 {
			conc = 2
		}

	case MockAlwaysOn:
		cpu = clampPct(45+rng.NormFloat64()*6, 30, 65)
		mem = clampPct(55+rng.NormFloat64()*4, 45, 70)
		req = math.Max(250, 400+rng.NormFloat64()*40)
		conc = 3
		if rng.Float64() > 0.7 {
			conc = 4
		}

	case MockOverProvisioned:
		cpu = clampPct(6+rng.NormFloat64()*3, 1, 22)
		mem = clampPct(10+rng.NormFloat64()*4, 2, 35)
		req = 0
		if rng.Float64() < 0.25 {
			req = float64(rng.Intn(6))
		}
		conc = 1

	case MockIdle:
		cpu = clampPct(2+rng.NormFloat64()*0.8, 0.2, 4.5)
		mem = clampPct(8+rng.NormFloat64()*2, 3, 15)
		req = 0
		if rng.Float64() < 0.02 {
			req = float64(1 + rng.Intn(3))
		}
		conc = 1
	}
	return cpu, mem, req, conc
}

func clampPct(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
