// Package pricing estimates the monthly cost of a service architecture.
package pricing

import "github.com/runixlabs/runix/pkg/models"

// Usage summarizes the observed load that drives billable time.
type Usage struct {
	// ActiveRatio is the fraction of the month the service is serving
	// traffic (1 - idle_ratio). Scale-to-zero services are billed only for
	// active time.
	ActiveRatio float64
	// MonthlyRequests is the request volume extrapolated to a billing month.
	MonthlyRequests float64
}

// Provider computes the monthly cost of running an architecture under a given
// usage profile. Implementations must be monotonic in vcpu, memory_mb and
// min_instances.
type Provider interface {
	MonthlyCost(arch models.Architecture, usage Usage) float64
	Name() string
}

// Impact compares current and recommended architectures under the same usage
// profile and pricing function.
func Impact(p Provider, current, recommended models.Architecture, usage Usage) models.CostImpact {
	currentCost := p.MonthlyCost(current, usage)
	optimizedCost := p.MonthlyCost(recommended, usage)

	impact := models.CostImpact{
		CurrentMonthlyUSD:   currentCost,
		OptimizedMonthlyUSD: optimizedCost,
		SavingsUSD:          currentCost - optimizedCost,
		WithinFreeTier:      optimizedCost < 0.5,
	}
	if currentCost > 0 {
		impact.SavingsPercentage = impact.SavingsUSD / currentCost * 100
	}
	return impact
}
