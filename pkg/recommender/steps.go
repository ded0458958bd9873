package recommender

import (
	"fmt"

	"github.com/runixlabs/runix/pkg/models"
)

// explainChanges builds the ordered fact list for a recommendation. The
// facts and their order are decided here; the explanation collaborator may
// rephrase them but never replaces them.
func explainChanges(cls *models.Classification, fw *models.FeatureWindow, current, recommended models.Architecture) []string {
	facts := []string{
		fmt.Sprintf("workload classified as %s (confidence %.2f)", cls.WorkloadType, cls.Confidence),
	}

	if recommended.MinInstances != current.MinInstances {
		if recommended.MinInstances == 0 && models.Available(fw.IdleRatio) {
			facts = append(facts, fmt.Sprintf("set min-instances to 0 to eliminate cost during the %.0f%% idle time", fw.IdleRatio*100))
		} else {
			facts = append(facts, fmt.Sprintf("set min-instances to %d (was %d)", recommended.MinInstances, current.MinInstances))
		}
	}
	if recommended.VCPU != current.VCPU {
		facts = append(facts, fmt.Sprintf("reduce vCPU from %s to %s (p95 utilization %.0f%%)", fmtVCPU(current.VCPU), fmtVCPU(recommended.VCPU), fw.CPUP95))
	}
	if recommended.MemoryMB != current.MemoryMB {
		facts = append(facts, fmt.Sprintf("reduce memory from %dMi to %dMi (p95 utilization %.0f%%)", current.MemoryMB, recommended.MemoryMB, fw.MemoryP95))
	}
	if recommended.MaxInstances != current.MaxInstances {
		facts = append(facts, fmt.Sprintf("raise max-instances from %d to %d to cover p95 concurrency", current.MaxInstances, recommended.MaxInstances))
	}
	if recommended.ConcurrencyLimit != current.ConcurrencyLimit {
		facts = append(facts, fmt.Sprintf("lower concurrency limit from %d to %d", current.ConcurrencyLimit, recommended.ConcurrencyLimit))
	}

	if len(facts) == 1 {
		facts = append(facts, "current architecture already fits the observed workload")
	}
	return facts
}

// implementationSteps renders the architecture diff as deploy commands with
// monitoring and rollback guidance.
func implementationSteps(current, recommended models.Architecture) []string {
	var flags []string
	if recommended.VCPU != current.VCPU {
		flags = append(flags, fmt.Sprintf("--cpu=%s", fmtVCPU(recommended.VCPU)))
	}
	if recommended.MemoryMB != current.MemoryMB {
		flags = append(flags, fmt.Sprintf("--memory=%dMi", recommended.MemoryMB))
	}
	if recommended.MinInstances != current.MinInstances {
		flags = append(flags, fmt.Sprintf("--min-instances=%d", recommended.MinInstances))
	}
	if recommended.MaxInstances != current.MaxInstances {
		flags = append(flags, fmt.Sprintf("--max-instances=%d", recommended.MaxInstances))
	}
	if recommended.ConcurrencyLimit != current.ConcurrencyLimit {
		flags = append(flags, fmt.Sprintf("--concurrency=%d", recommended.ConcurrencyLimit))
	}

	if len(flags) == 0 {
		return []string{}
	}

	cmd := "gcloud run services update SERVICE_NAME"
	for _, f := range flags {
		cmd += " " + f
	}
	cmd += " --region=REGION"

	return []string{
		cmd,
		"replace SERVICE_NAME and REGION with your values",
		"monitor latency and error rate for 24-48 hours",
		fmt.Sprintf("rollback: gcloud run services update SERVICE_NAME --cpu=%s --memory=%dMi --min-instances=%d", fmtVCPU(current.VCPU), current.MemoryMB, current.MinInstances),
	}
}
