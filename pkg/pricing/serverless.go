package pricing

import (
	"math"

	"github.com/runixlabs/runix/pkg/config"
	"github.com/runixlabs/runix/pkg/models"
)

const secondsPerMonth = 30 * 24 * 3600

// ServerlessProvider prices a request-serving container platform the way
// Cloud Run does: vCPU-seconds and GiB-seconds of provisioned instance time
// plus a per-request surcharge, with monthly free-tier deductions. With
// min-instances set, instances are billed for the whole month; with
// scale-to-zero, only for active time.
type ServerlessProvider struct {
	thresholds *config.Thresholds
}

// NewServerlessProvider creates a provider using the configured unit prices.
func NewServerlessProvider(thresholds *config.Thresholds) *ServerlessProvider {
	if thresholds == nil {
		thresholds = config.DefaultThresholds()
	}
	return &ServerlessProvider{thresholds: thresholds}
}

func (p *ServerlessProvider) Name() string {
	return "serverless"
}

// MonthlyCost computes the monthly USD cost of an architecture. Monotonic in
// vcpu, memory_mb and min_instances.
func (p *ServerlessProvider) MonthlyCost(arch models.Architecture, usage Usage) float64 {
	activeRatio := clampRatio(usage.ActiveRatio)

	billedInstanceSeconds := float64(secondsPerMonth) * activeRatio
	if arch.MinInstances > 0 {
		// warm instances are billed for the whole month
		billedInstanceSeconds = float64(secondsPerMonth) * float64(arch.MinInstances)
	}

	cpuSeconds := arch.VCPU * billedInstanceSeconds
	cpuCost := math.Max(0, cpuSeconds-p.thresholds.FreeTierCPUSeconds) * p.thresholds.CPUCostPerVCPUSecond

	memoryGiB := float64(arch.MemoryMB) / 1024.0
	gibSeconds := memoryGiB * billedInstanceSeconds
	memoryCost := math.Max(0, gibSeconds-p.thresholds.FreeTierGiBSeconds) * p.thresholds.MemoryCostPerGiBSecond

	requestCost := math.Max(0, usage.MonthlyRequests-p.thresholds.FreeTierRequests) * p.thresholds.RequestCost

	return cpuCost + memoryCost + requestCost
}

func clampRatio(v float64) float64 {
	if math.IsNaN(v) {
		return 1
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
