package output

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/runixlabs/runix/pkg/engine"
	"github.com/runixlabs/runix/pkg/models"
)

// TextHandler renders analysis results as a human-readable console listing.
type TextHandler struct {
	w io.Writer
}

// NewTextHandler creates a text handler writing to w.
func NewTextHandler(w io.Writer) *TextHandler {
	return &TextHandler{w: w}
}

func (h *TextHandler) Format() string {
	return "text"
}

// DisplayResults prints one block per analyzed resource.
func (h *TextHandler) DisplayResults(_ context.Context, results []*engine.Result) error {
	for i, res := range results {
		cls := res.Classification
		rec := res.Recommendation

		fmt.Fprintf(h.w, "%d. %s [%s]\n", i+1, cls.ResourceID, strings.ToUpper(string(cls.WorkloadType)))
		fmt.Fprintf(h.w, "   Confidence: %.2f\n", cls.Confidence)
		for _, reason := range cls.Reasoning {
			fmt.Fprintf(h.w, "   - %s\n", reason)
		}

		if rec.NoOp() {
			fmt.Fprintf(h.w, "   No change recommended\n")
		} else {
			fmt.Fprintf(h.w, "   Current:     %s\n", formatArchitecture(rec.CurrentArchitecture))
			fmt.Fprintf(h.w, "   Recommended: %s\n", formatArchitecture(rec.RecommendedArchitecture))
			fmt.Fprintf(h.w, "   Savings: $%.2f/mo (%.1f%%), risk: %s\n",
				rec.CostImpact.SavingsUSD, rec.CostImpact.SavingsPercentage, rec.RiskLevel)
		}

		for _, line := range res.Explanation {
			fmt.Fprintf(h.w, "   %s\n", line)
		}
		fmt.Fprintln(h.w)
	}
	return nil
}

// DisplaySummary prints the closing totals line.
func (h *TextHandler) DisplaySummary(_ context.Context, totalSavings float64, count int) error {
	fmt.Fprintf(h.w, "Analyzed %d resource(s), total potential savings: $%.2f/mo\n", count, totalSavings)
	return nil
}

func formatArchitecture(a models.Architecture) string {
	return fmt.Sprintf("%g vCPU, %d MB, min=%d max=%d concurrency=%d",
		a.VCPU, a.MemoryMB, a.MinInstances, a.MaxInstances, a.ConcurrencyLimit)
}
