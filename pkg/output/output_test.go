package output

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/runixlabs/runix/pkg/engine"
	"github.com/runixlabs/runix/pkg/models"
)

func sampleResults() []*engine.Result {
	return []*engine.Result{
		{
			Classification: &models.Classification{
				ResourceID:   "svc-idle",
				WorkloadType: models.WorkloadIdle,
				Confidence:   0.92,
				Reasoning:    []string{"idle_ratio = 0.92 exceeds 0.85"},
			},
			Recommendation: &models.Recommendation{
				ResourceID:              "svc-idle",
				CurrentArchitecture:     models.Architecture{VCPU: 1, MemoryMB: 512, MinInstances: 1, MaxInstances: 10, ConcurrencyLimit: 80},
				RecommendedArchitecture: models.Architecture{VCPU: 1, MemoryMB: 512, MinInstances: 0, MaxInstances: 10, ConcurrencyLimit: 80},
				CostImpact:              models.CostImpact{SavingsUSD: 64.4, SavingsPercentage: 92.0},
				RiskLevel:               models.RiskLow,
			},
			Explanation: []string{"Scale to zero during idle periods."},
		},
		{
			Classification: &models.Classification{
				ResourceID:   "svc-steady",
				WorkloadType: models.WorkloadUnknown,
			},
			Recommendation: &models.Recommendation{
				ResourceID:              "svc-steady",
				CurrentArchitecture:     models.Architecture{VCPU: 1, MemoryMB: 512, MinInstances: 1},
				RecommendedArchitecture: models.Architecture{VCPU: 1, MemoryMB: 512, MinInstances: 1},
				RiskLevel:               models.RiskHigh,
			},
		},
	}
}

func TestTextHandlerDisplayResults(t *testing.T) {
	var buf bytes.Buffer
	h := NewTextHandler(&buf)

	if err := h.DisplayResults(context.Background(), sampleResults()); err != nil {
		t.Fatalf("DisplayResults failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"1. svc-idle [IDLE]",
		"Confidence: 0.92",
		"- idle_ratio = 0.92 exceeds 0.85",
		"Savings: $64.40/mo (92.0%), risk: low",
		"Scale to zero during idle periods.",
		"2. svc-steady [UNKNOWN]",
		"No change recommended",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Text output missing %q:\n%s", want, out)
		}
	}
}

func TestTextHandlerDisplaySummary(t *testing.T) {
	var buf bytes.Buffer
	h := NewTextHandler(&buf)

	if err := h.DisplaySummary(context.Background(), 64.4, 2); err != nil {
		t.Fatalf("DisplaySummary failed: %v", err)
	}
	want := "Analyzed 2 resource(s), total potential savings: $64.40/mo\n"
	if buf.String() != want {
		t.Errorf("Expected %q, got %q", want, buf.String())
	}
}

func TestJSONHandlerDisplayResults(t *testing.T) {
	var buf bytes.Buffer
	h := NewJSONHandler(&buf)

	if err := h.DisplayResults(context.Background(), sampleResults()); err != nil {
		t.Fatalf("DisplayResults failed: %v", err)
	}

	var decoded []engine.Result
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(decoded))
	}
	if decoded[0].Classification.WorkloadType != models.WorkloadIdle {
		t.Errorf("Expected idle classification, got %s", decoded[0].Classification.WorkloadType)
	}
}

func TestHandlerFormats(t *testing.T) {
	if got := NewTextHandler(&bytes.Buffer{}).Format(); got != "text" {
		t.Errorf("Expected text, got %s", got)
	}
	if got := NewJSONHandler(&bytes.Buffer{}).Format(); got != "json" {
		t.Errorf("Expected json, got %s", got)
	}
}
